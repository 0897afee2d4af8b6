package util

import (
	"path/filepath"
	"strings"
)

// shells are parents that keep their own console open after we exit.
var shells = map[string]bool{
	"cmd.exe":             true,
	"powershell.exe":      true,
	"pwsh.exe":            true,
	"wt.exe":              true,
	"windowsterminal.exe": true,
	"conhost.exe":         true,
	"bash.exe":            true,
	"nu.exe":              true,
}

// startedWithoutShell decides whether a process was started by double
// click. consoleProcs is the number of processes attached to our console, 0
// when there is none; parent is the image name of the parent process.
func startedWithoutShell(consoleProcs int, parent string) bool {
	if consoleProcs == 0 {
		return true
	}
	if shells[strings.ToLower(filepath.Base(parent))] {
		return false
	}
	// A console we share with nobody was created for us.
	return consoleProcs == 1
}
