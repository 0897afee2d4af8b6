package gamepad

import (
	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/input"
)

type controlKind uint8

const (
	kindButton controlKind = iota
	kindStick
	kindTrigger
)

type control struct {
	kind   controlKind
	button sdl.GamepadButton
	axis   sdl.GamepadAxis
}

// controls maps every virtual button to an SDL gamepad control. SDL names
// face buttons by position, so south is cross.
var controls = [input.MaxKeys]control{
	input.KeyL2:       {kind: kindTrigger, axis: sdl.GAMEPAD_AXIS_LEFT_TRIGGER},
	input.KeyR2:       {kind: kindTrigger, axis: sdl.GAMEPAD_AXIS_RIGHT_TRIGGER},
	input.KeyL1:       {button: sdl.GAMEPAD_BUTTON_LEFT_SHOULDER},
	input.KeyR1:       {button: sdl.GAMEPAD_BUTTON_RIGHT_SHOULDER},
	input.KeyTriangle: {button: sdl.GAMEPAD_BUTTON_NORTH},
	input.KeyCircle:   {button: sdl.GAMEPAD_BUTTON_EAST},
	input.KeyCross:    {button: sdl.GAMEPAD_BUTTON_SOUTH},
	input.KeySquare:   {button: sdl.GAMEPAD_BUTTON_WEST},
	input.KeySelect:   {button: sdl.GAMEPAD_BUTTON_BACK},
	input.KeyL3:       {button: sdl.GAMEPAD_BUTTON_LEFT_STICK},
	input.KeyR3:       {button: sdl.GAMEPAD_BUTTON_RIGHT_STICK},
	input.KeyStart:    {button: sdl.GAMEPAD_BUTTON_START},
	input.KeyUp:       {button: sdl.GAMEPAD_BUTTON_DPAD_UP},
	input.KeyRight:    {button: sdl.GAMEPAD_BUTTON_DPAD_RIGHT},
	input.KeyDown:     {button: sdl.GAMEPAD_BUTTON_DPAD_DOWN},
	input.KeyLeft:     {button: sdl.GAMEPAD_BUTTON_DPAD_LEFT},
	input.KeyLUp:      {kind: kindStick, axis: sdl.GAMEPAD_AXIS_LEFTY},
	input.KeyLRight:   {kind: kindStick, axis: sdl.GAMEPAD_AXIS_LEFTX},
	input.KeyLDown:    {kind: kindStick, axis: sdl.GAMEPAD_AXIS_LEFTY},
	input.KeyLLeft:    {kind: kindStick, axis: sdl.GAMEPAD_AXIS_LEFTX},
	input.KeyRUp:      {kind: kindStick, axis: sdl.GAMEPAD_AXIS_RIGHTY},
	input.KeyRRight:   {kind: kindStick, axis: sdl.GAMEPAD_AXIS_RIGHTX},
	input.KeyRDown:    {kind: kindStick, axis: sdl.GAMEPAD_AXIS_RIGHTY},
	input.KeyRLeft:    {kind: kindStick, axis: sdl.GAMEPAD_AXIS_RIGHTX},
}

// reader is the part of *sdl.Gamepad the mapping reads.
type reader interface {
	Button(button sdl.GamepadButton) bool
	Axis(axis sdl.GamepadAxis) int16
}

func readInput(r reader, k input.Key, sensitivity, deadZone int32) int32 {
	if !k.Valid() {
		return 0
	}
	c := controls[k]
	switch c.kind {
	case kindStick:
		return device.ScaleStick(int32(r.Axis(c.axis)), sensitivity, deadZone)
	case kindTrigger:
		return device.ScaleTrigger(int32(r.Axis(c.axis)), deadZone)
	}
	if r.Button(c.button) {
		return int32(input.PressureMax)
	}
	return 0
}
