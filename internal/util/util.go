//go:build !windows

package util

// IsRunFromGUI is always false outside Windows; there sio2pad is started
// from a shell or a service manager.
func IsRunFromGUI() bool { return false }

func HideConsoleWindow() {}
