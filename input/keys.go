package input

import (
	"fmt"
	"strings"
)

// Key is a virtual button index. Values below KeyLUp address a bit in the
// 16-bit button mask, the rest are analog stick directions.
type Key int

// Virtual button indices in DualShock 2 mask order.
const (
	KeyL2 Key = iota
	KeyR2
	KeyL1
	KeyR1
	KeyTriangle
	KeyCircle
	KeyCross
	KeySquare
	KeySelect
	KeyL3
	KeyR3
	KeyStart
	KeyUp
	KeyRight
	KeyDown
	KeyLeft
	KeyLUp
	KeyLRight
	KeyLDown
	KeyLLeft
	KeyRUp
	KeyRRight
	KeyRDown
	KeyRLeft
)

const (
	// MaxKeys is the number of virtual buttons a port exposes.
	MaxKeys = 24
	// NumButtons is the number of keys backed by a mask bit.
	NumButtons = 16
	// NumPorts is the number of physical controller connectors.
	NumPorts = 2

	// AxisCenter is the neutral value of an analog channel.
	AxisCenter uint8 = 0x7F
	// MaxAnalog is the largest deflection Press accepts for an analog key.
	MaxAnalog int32 = 32766
	// PressureMax is the pressure reported for a fully pressed button.
	PressureMax int32 = 0xFF
)

var keyNames = [MaxKeys]string{
	"l2", "r2", "l1", "r1", "triangle", "circle", "cross", "square",
	"select", "l3", "r3", "start", "up", "right", "down", "left",
	"l_up", "l_right", "l_down", "l_left", "r_up", "r_right", "r_down", "r_left",
}

// IsAnalog reports whether k is one of the stick direction keys.
func (k Key) IsAnalog() bool { return k >= KeyLUp && k <= KeyRLeft }

// Valid reports whether k is a known virtual button.
func (k Key) Valid() bool { return k >= 0 && k < MaxKeys }

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("key(%d)", int(k))
	}
	return keyNames[k]
}

// ParseKey resolves a button name as written in config files.
func ParseKey(name string) (Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, kn := range keyNames {
		if kn == n {
			return Key(i), nil
		}
	}
	return -1, fmt.Errorf("unknown button %q", name)
}
