package pad

import "github.com/Alia5/sio2pad/input"

// Source is the committed input of the port being polled.
type Source interface {
	Buttons() uint16
	Get(k input.Key) uint8
	Pressure(k input.Key) uint8
}

// State is everything a single polled byte can read or change: the open
// transaction and the addressed pad.
type State struct {
	Query Query
	Pad   Pad
	// DualShock1 makes the pad identify as a first generation controller.
	DualShock1 bool
}

// Order of the pressure bytes in a DS2 native READ_DATA reply.
var pressureOrder = [12]input.Key{
	input.KeyRight, input.KeyLeft, input.KeyUp, input.KeyDown,
	input.KeyTriangle, input.KeyCircle, input.KeyCross, input.KeySquare,
	input.KeyL1, input.KeyR1, input.KeyL2, input.KeyR2,
}

// Step clocks one byte through the pad. in is the byte written by the console
// and out the byte the pad answers with. st is taken by value; the returned
// State carries every change.
func Step(st State, src Source, in uint8) (out uint8, next State) {
	q := &st.Query

	if int(q.LastByte)+1 >= min(int(q.NumBytes), ResponseSize) {
		return 0, st
	}

	if q.LastByte != 0 && q.Done() {
		q.LastByte++
		return q.Response[q.LastByte], st
	}

	if q.LastByte == 0 {
		q.LastByte = 1
		q.CurrentCommand = in
		return st.command(src, in), st
	}

	q.LastByte++
	if !st.argument(in) {
		return 0, st
	}
	return q.Response[q.LastByte], st
}

// command handles the command byte. It returns the byte clocked out in its
// place.
func (st *State) command(src Source, cmd uint8) uint8 {
	q, p := &st.Query, &st.Pad

	switch cmd {
	case CmdConfigMode:
		if p.Config != 0 {
			q.setResult(replyConfigExit)
			return ackByte
		}
		return st.readData(src)

	case CmdReadDataAndVibrate:
		return st.readData(src)

	case CmdSetVrefParam:
		q.setFinalResult(replyNoClue)

	case CmdQueryDS2AnalogMode:
		q.setFinalResult(queryMaskMode(p))

	case CmdSetModeAndLock:
		q.setResult(replySetMode)
		p.ResetVibrate()

	case CmdQueryModelAndMode:
		if st.DualShock1 {
			q.setFinalResult(replyQueryModelDS1)
		} else {
			q.setFinalResult(replyQueryModelDS2)
		}
		q.Response[5] = 0
		if p.Mode&0xF != 1 {
			q.Response[5] = 1
		}

	case CmdQueryAct:
		q.setResult(replyQueryAct[0])

	case CmdQueryComb:
		q.setFinalResult(replyQueryComb)

	case CmdQueryMode:
		q.setResult(replyQueryMode)

	case CmdVibrationToggle:
		copy(q.Response[2:9], p.Vibrate[:7])
		q.NumBytes = 9
		p.ResetVibrate()

	case CmdSetDS2NativeMode:
		if st.DualShock1 {
			q.setFinalResult(replySetNativeMode)
		} else {
			q.setResult(replySetNativeMode)
		}

	default:
		q.NumBytes = 0
		q.QueryDone = 1
	}

	return ackByte
}

func (st *State) readData(src Source) uint8 {
	q, p := &st.Query, &st.Pad

	buttons := uint16(0xFFFF)
	if src != nil {
		buttons = src.Buttons()
	}

	q.Response[2] = 0x5A
	q.Response[3] = uint8(buttons >> 8)
	q.Response[4] = uint8(buttons)
	q.NumBytes = 5

	if p.Mode != ModeDigital {
		q.NumBytes = 9
		q.Response[5] = axis(src, input.KeyRRight)
		q.Response[6] = axis(src, input.KeyRUp)
		q.Response[7] = axis(src, input.KeyLRight)
		q.Response[8] = axis(src, input.KeyLUp)

		if p.Mode != ModeAnalog {
			q.NumBytes = 21
			for i, k := range pressureOrder {
				q.Response[9+i] = pressure(src, k)
			}
		}
	}

	q.LastByte = 1
	return p.Mode
}

// argument consumes a byte after the command byte. It returns false for
// commands that take no arguments, in which case the pad answers 0.
func (st *State) argument(v uint8) bool {
	q, p := &st.Query, &st.Pad
	pos := q.LastByte

	switch q.CurrentCommand {
	case CmdReadDataAndVibrate:
		if pos == p.VibrateI[1] {
			p.SetVibrate(MotorSmall, 255*(v&1))
		} else if pos == p.VibrateI[0] {
			p.SetVibrate(MotorLarge, v)
		}

	case CmdConfigMode:
		if pos == 3 {
			q.QueryDone = 1
			p.Config = v
		}

	case CmdSetModeAndLock:
		if pos == 3 && v < 2 {
			if !p.Locked() {
				if v != 0 {
					p.SetMode(ModeAnalog)
				} else {
					p.SetMode(ModeDigital)
				}
			}
		} else if pos == 4 {
			if v == lockAnalog {
				p.ModeLock = lockAnalog
			} else {
				p.ModeLock = 0
			}
			q.QueryDone = 1
		}

	case CmdQueryAct:
		if pos == 3 {
			if v < 2 {
				q.setResult(replyQueryAct[v])
			}
			q.QueryDone = 1
		}

	case CmdQueryMode:
		if pos == 3 && v < 2 {
			q.Response[6] = 4 + v*3
			q.QueryDone = 1
		}

	case CmdVibrationToggle:
		if pos >= 3 {
			switch v {
			case 0:
				p.VibrateI[1] = pos
			case 1:
				p.VibrateI[0] = pos
			}
			if int(pos)-2 < len(p.Vibrate) {
				p.Vibrate[pos-2] = v
			}
		}

	case CmdSetDS2NativeMode:
		if pos == 3 || pos == 4 {
			p.Umask[pos-3] = v
		} else if pos == 5 {
			switch {
			case v&1 == 0:
				p.SetMode(ModeDigital)
			case v&2 == 0:
				p.SetMode(ModeAnalog)
			default:
				p.SetMode(ModeDS2Native)
			}
		}

	default:
		return false
	}
	return true
}

func axis(src Source, k input.Key) uint8 {
	if src == nil {
		return input.AxisCenter
	}
	return src.Get(k)
}

func pressure(src Source, k input.Key) uint8 {
	if src == nil {
		return 0
	}
	return src.Pressure(k)
}
