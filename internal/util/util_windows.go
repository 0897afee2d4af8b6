//go:build windows

package util

import (
	"log/slog"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procGetConsoleProcessList = kernel32.NewProc("GetConsoleProcessList")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procShowWindow            = user32.NewProc("ShowWindow")
)

// IsRunFromGUI reports whether sio2pad was started from Explorer rather
// than a shell.
func IsRunFromGUI() bool {
	procs := consoleProcessCount()
	parent := parentImageName()
	slog.Debug("launch info", "consoleProcesses", procs, "parent", parent)
	return startedWithoutShell(procs, parent)
}

// HideConsoleWindow hides and detaches the console created for us.
func HideConsoleWindow() {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return
	}
	_, _, _ = procShowWindow.Call(hwnd, windows.SW_HIDE)
	_, _, _ = procFreeConsole.Call()
}

func consoleProcessCount() int {
	if hwnd, _, _ := procGetConsoleWindow.Call(); hwnd == 0 {
		return 0
	}
	var pids [8]uint32
	n, _, _ := procGetConsoleProcessList.Call(uintptr(unsafe.Pointer(&pids[0])), uintptr(len(pids)))
	return int(n)
}

// parentImageName walks one process snapshot and returns the executable
// name of our parent, or "" when it has exited.
func parentImageName() string {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snap)

	self := uint32(os.Getpid())
	parents := make(map[uint32]uint32)
	names := make(map[uint32]string)

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))
	for err = windows.Process32First(snap, &pe); err == nil; err = windows.Process32Next(snap, &pe) {
		parents[pe.ProcessID] = pe.ParentProcessID
		names[pe.ProcessID] = windows.UTF16ToString(pe.ExeFile[:])
	}
	return names[parents[self]]
}
