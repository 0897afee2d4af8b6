// Package tty turns a raw terminal into a keyboard event source.
package tty

import "github.com/Alia5/sio2pad/device/keyboard"

// Interrupt is emitted for Ctrl-C. It is not a keysym.
const Interrupt uint32 = 0xFFFFFF03

type decodeState uint8

const (
	stateGround decodeState = iota
	stateEscape
	stateCSI
	stateSS3
)

// Decoder converts terminal input bytes to keysyms. It understands the
// VT100 cursor and editing sequences. Partial sequences carry over between
// calls to Feed.
type Decoder struct {
	state decodeState
	param int
}

var csiFinal = map[byte]uint32{
	'A': keyboard.KeyUp,
	'B': keyboard.KeyDown,
	'C': keyboard.KeyRight,
	'D': keyboard.KeyLeft,
	'H': keyboard.KeyHome,
	'F': keyboard.KeyEnd,
	'P': keyboard.KeyF1,
	'Q': keyboard.KeyF1 + 1,
	'R': keyboard.KeyF1 + 2,
	'S': keyboard.KeyF1 + 3,
}

var csiTilde = map[int]uint32{
	1:  keyboard.KeyHome,
	2:  keyboard.KeyInsert,
	3:  keyboard.KeyDelete,
	4:  keyboard.KeyEnd,
	5:  keyboard.KeyPageUp,
	6:  keyboard.KeyPageDown,
	15: keyboard.KeyF1 + 4,
	17: keyboard.KeyF1 + 5,
	18: keyboard.KeyF1 + 6,
	19: keyboard.KeyF1 + 7,
	20: keyboard.KeyF1 + 8,
	21: keyboard.KeyF1 + 9,
	23: keyboard.KeyF1 + 10,
	24: keyboard.KeyF1 + 11,
}

// Feed decodes b and calls emit for every complete key.
func (d *Decoder) Feed(b []byte, emit func(sym uint32)) {
	for _, c := range b {
		d.step(c, emit)
	}
}

// Flush resolves a dangling escape byte as the Escape key. Call it when a
// read returns without completing the sequence.
func (d *Decoder) Flush(emit func(sym uint32)) {
	if d.state == stateEscape {
		emit(keyboard.KeyEscape)
	}
	d.state = stateGround
}

func (d *Decoder) step(c byte, emit func(uint32)) {
	switch d.state {
	case stateEscape:
		switch c {
		case '[':
			d.state, d.param = stateCSI, 0
			return
		case 'O':
			d.state = stateSS3
			return
		}
		emit(keyboard.KeyEscape)
		d.state = stateGround
	case stateCSI:
		switch {
		case c >= '0' && c <= '9':
			d.param = d.param*10 + int(c-'0')
		case c == ';':
			d.param = 0
		case c == '~':
			if sym, ok := csiTilde[d.param]; ok {
				emit(sym)
			}
			d.state = stateGround
		case c >= 0x40 && c <= 0x7E:
			if sym, ok := csiFinal[c]; ok {
				emit(sym)
			}
			d.state = stateGround
		default:
			d.state = stateGround
		}
		return
	case stateSS3:
		if sym, ok := csiFinal[c]; ok {
			emit(sym)
		}
		d.state = stateGround
		return
	}

	switch c {
	case 0x1B:
		d.state = stateEscape
	case 0x03:
		emit(Interrupt)
	default:
		if sym, ok := keyboard.CharToKey(c); ok {
			emit(sym)
		}
	}
}
