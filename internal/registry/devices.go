// Package registry links in every host input backend.
package registry

import (
	_ "github.com/Alia5/sio2pad/device/gamepad" // Register the SDL gamepad backend
	_ "github.com/Alia5/sio2pad/device/joydev"  // Register the Linux joystick backend
)
