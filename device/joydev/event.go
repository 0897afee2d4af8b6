// Package joydev reads Linux joystick devices (/dev/input/js*).
package joydev

import (
	"encoding/binary"
	"fmt"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/input"
)

// EventSize is the size of struct js_event.
const EventSize = 8

// Event types. TypeInit is or'ed into the synthetic events the kernel emits
// on open to report the initial state.
const (
	TypeButton uint8 = 0x01
	TypeAxis   uint8 = 0x02
	TypeInit   uint8 = 0x80
)

const (
	maxAxes    = 16
	maxButtons = 32
)

// Event is one js_event.
type Event struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// ParseEvent decodes a js_event in host (little endian) byte order.
func ParseEvent(b []byte) (Event, error) {
	if len(b) < EventSize {
		return Event{}, fmt.Errorf("short js_event: %d bytes", len(b))
	}
	return Event{
		Time:   binary.LittleEndian.Uint32(b[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(b[4:6])),
		Type:   b[6],
		Number: b[7],
	}, nil
}

// State is the last reported value of every axis and button.
type State struct {
	Axes    [maxAxes]int16
	Buttons [maxButtons]bool
}

// Apply folds an event into the state. Out of range controls are ignored.
func (s *State) Apply(e Event) {
	switch e.Type &^ TypeInit {
	case TypeButton:
		if int(e.Number) < maxButtons {
			s.Buttons[e.Number] = e.Value != 0
		}
	case TypeAxis:
		if int(e.Number) < maxAxes {
			s.Axes[e.Number] = e.Value
		}
	}
}

type sourceKind uint8

const (
	srcButton sourceKind = iota
	srcAxis
	srcTrigger
	srcHatNeg
	srcHatPos
)

type source struct {
	kind  sourceKind
	index uint8
}

// Layout maps virtual buttons to js axis and button numbers.
type Layout [input.MaxKeys]source

// XpadLayout is the layout the xpad driver reports for Xbox style pads.
var XpadLayout = Layout{
	input.KeyL2:       {srcTrigger, 2},
	input.KeyR2:       {srcTrigger, 5},
	input.KeyL1:       {srcButton, 4},
	input.KeyR1:       {srcButton, 5},
	input.KeyTriangle: {srcButton, 3},
	input.KeyCircle:   {srcButton, 1},
	input.KeyCross:    {srcButton, 0},
	input.KeySquare:   {srcButton, 2},
	input.KeySelect:   {srcButton, 6},
	input.KeyL3:       {srcButton, 9},
	input.KeyR3:       {srcButton, 10},
	input.KeyStart:    {srcButton, 7},
	input.KeyUp:       {srcHatNeg, 7},
	input.KeyRight:    {srcHatPos, 6},
	input.KeyDown:     {srcHatPos, 7},
	input.KeyLeft:     {srcHatNeg, 6},
	input.KeyLUp:      {srcAxis, 1},
	input.KeyLRight:   {srcAxis, 0},
	input.KeyLDown:    {srcAxis, 1},
	input.KeyLLeft:    {srcAxis, 0},
	input.KeyRUp:      {srcAxis, 4},
	input.KeyRRight:   {srcAxis, 3},
	input.KeyRDown:    {srcAxis, 4},
	input.KeyRLeft:    {srcAxis, 3},
}

// Read returns the value of a virtual button. Triggers rest at -32767 and
// are shifted to 0..32767 before scaling.
func (l *Layout) Read(s *State, k input.Key, sensitivity, deadZone int32) int32 {
	if !k.Valid() {
		return 0
	}
	src := l[k]
	switch src.kind {
	case srcButton:
		if s.Buttons[src.index] {
			return input.PressureMax
		}
	case srcAxis:
		return device.ScaleStick(int32(s.Axes[src.index]), sensitivity, deadZone)
	case srcTrigger:
		return device.ScaleTrigger((int32(s.Axes[src.index])+32767)/2, deadZone)
	case srcHatNeg:
		if s.Axes[src.index] < 0 {
			return input.PressureMax
		}
	case srcHatPos:
		if s.Axes[src.index] > 0 {
			return input.PressureMax
		}
	}
	return 0
}
