package keyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// X11 keysyms. Printable Latin-1 keys use their character code.
const (
	KeySpace     uint32 = 0x0020
	KeyComma     uint32 = 0x002C
	KeyMinus     uint32 = 0x002D
	KeyPeriod    uint32 = 0x002E
	KeySlash     uint32 = 0x002F
	KeySemicolon uint32 = 0x003B
	KeyEqual     uint32 = 0x003D

	Key0 uint32 = 0x0030
	Key9 uint32 = 0x0039
	KeyA uint32 = 0x0061
	KeyZ uint32 = 0x007A

	KeyBackSpace uint32 = 0xFF08
	KeyTab       uint32 = 0xFF09
	KeyReturn    uint32 = 0xFF0D
	KeyEscape    uint32 = 0xFF1B
	KeyHome      uint32 = 0xFF50
	KeyLeft      uint32 = 0xFF51
	KeyUp        uint32 = 0xFF52
	KeyRight     uint32 = 0xFF53
	KeyDown      uint32 = 0xFF54
	KeyPageUp    uint32 = 0xFF55
	KeyPageDown  uint32 = 0xFF56
	KeyEnd       uint32 = 0xFF57
	KeyInsert    uint32 = 0xFF63
	KeyKP0       uint32 = 0xFFB0
	KeyKP9       uint32 = 0xFFB9
	KeyF1        uint32 = 0xFFBE
	KeyF12       uint32 = 0xFFC9
	KeyShiftL    uint32 = 0xFFE1
	KeyShiftR    uint32 = 0xFFE2
	KeyControlL  uint32 = 0xFFE3
	KeyControlR  uint32 = 0xFFE4
	KeyAltL      uint32 = 0xFFE9
	KeyAltR      uint32 = 0xFFEA
	KeyDelete    uint32 = 0xFFFF
)

// Mouse buttons share the keysym space and use their X11 button number.
const (
	MouseLeft   uint32 = 1
	MouseMiddle uint32 = 2
	MouseRight  uint32 = 3
)

// KeyName maps keysyms to the names used in config files.
var KeyName = map[uint32]string{
	MouseLeft:   "mouse_left",
	MouseMiddle: "mouse_middle",
	MouseRight:  "mouse_right",

	KeySpace:     "space",
	KeyComma:     "comma",
	KeyMinus:     "minus",
	KeyPeriod:    "period",
	KeySlash:     "slash",
	KeySemicolon: "semicolon",
	KeyEqual:     "equal",

	KeyBackSpace: "BackSpace",
	KeyTab:       "Tab",
	KeyReturn:    "Return",
	KeyEscape:    "Escape",
	KeyHome:      "Home",
	KeyLeft:      "Left",
	KeyUp:        "Up",
	KeyRight:     "Right",
	KeyDown:      "Down",
	KeyPageUp:    "Page_Up",
	KeyPageDown:  "Page_Down",
	KeyEnd:       "End",
	KeyInsert:    "Insert",
	KeyShiftL:    "Shift_L",
	KeyShiftR:    "Shift_R",
	KeyControlL:  "Control_L",
	KeyControlR:  "Control_R",
	KeyAltL:      "Alt_L",
	KeyAltR:      "Alt_R",
	KeyDelete:    "Delete",
}

var nameToKey map[string]uint32

func init() {
	for k := KeyA; k <= KeyZ; k++ {
		KeyName[k] = string(rune(k))
	}
	for k := Key0; k <= Key9; k++ {
		KeyName[k] = string(rune(k))
	}
	for k := KeyKP0; k <= KeyKP9; k++ {
		KeyName[k] = "KP_" + strconv.Itoa(int(k-KeyKP0))
	}
	for k := KeyF1; k <= KeyF12; k++ {
		KeyName[k] = "F" + strconv.Itoa(int(k-KeyF1)+1)
	}

	nameToKey = make(map[string]uint32, len(KeyName))
	for k, n := range KeyName {
		nameToKey[strings.ToLower(n)] = k
	}
}

// Name returns the config name of a keysym, or its hex value when it has
// none.
func Name(sym uint32) string {
	if n, ok := KeyName[sym]; ok {
		return n
	}
	return fmt.Sprintf("0x%04x", sym)
}

// ParseKeysym resolves a key name or a numeric keysym ("0xff51", "65361").
func ParseKeysym(name string) (uint32, error) {
	n := strings.TrimSpace(name)
	if sym, ok := nameToKey[strings.ToLower(n)]; ok {
		return sym, nil
	}
	if v, err := strconv.ParseUint(n, 0, 32); err == nil && v != 0 {
		return uint32(v), nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// CharToKey maps a byte read from a terminal to the keysym of the key that
// produced it. Shifted letters map to the unshifted keysym.
func CharToKey(c byte) (uint32, bool) {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return uint32(c), true
	case c >= 'A' && c <= 'Z':
		return uint32(c - 'A' + 'a'), true
	case c == '\r' || c == '\n':
		return KeyReturn, true
	case c == '\t':
		return KeyTab, true
	case c == 0x1B:
		return KeyEscape, true
	case c == 0x7F || c == 0x08:
		return KeyBackSpace, true
	case c == ':':
		return KeySemicolon, true
	case c >= 0x20 && c < 0x7F:
		return uint32(c), true
	}
	return 0, false
}
