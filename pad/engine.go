// Package pad emulates the controller side of the SIO2 pad protocol: the
// per byte command state machine, the multitap slots and the save state codec.
package pad

import (
	"log/slog"

	"github.com/Alia5/sio2pad/internal/log"
)

// EnabledFunc reports whether a pad is plugged into a 0-based port and slot.
type EnabledFunc func(port, slot int) bool

// Options configures an Engine.
type Options struct {
	// Enabled decides which slots answer StartPoll. Nil enables slot 0 of
	// every port.
	Enabled EnabledFunc
	// DualShock1 reports a first generation controller identity.
	DualShock1 bool
	Logger     *slog.Logger
	Raw        log.RawLogger
}

// Engine owns every pad and the shared transaction cursor. It is not safe
// for concurrent use.
type Engine struct {
	pads    [NumPorts][NumSlots]Pad
	slots   [NumPorts]uint8
	query   Query
	sources [NumPorts]Source

	enabled    EnabledFunc
	dualShock1 bool
	logger     *slog.Logger
	raw        log.RawLogger

	tx, rx []byte
}

// NewEngine returns a reset engine reading input from sources, indexed by
// 0-based port.
func NewEngine(sources [NumPorts]Source, opts Options) *Engine {
	e := &Engine{
		sources:    sources,
		enabled:    opts.Enabled,
		dualShock1: opts.DualShock1,
		logger:     opts.Logger,
		raw:        opts.Raw,
		tx:         make([]byte, 0, ResponseSize),
		rx:         make([]byte, 0, ResponseSize),
	}
	if e.enabled == nil {
		e.enabled = func(_, slot int) bool { return slot == 0 }
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.raw == nil {
		e.raw = log.NewRaw(nil)
	}
	e.ResetAll()
	return e
}

// ResetAll resets every pad, the active slots and the transaction cursor.
func (e *Engine) ResetAll() {
	for port := range e.pads {
		for slot := range e.pads[port] {
			e.pads[port][slot].Reset()
		}
	}
	e.slots = [NumPorts]uint8{}
	e.query.Reset()
	e.tx, e.rx = e.tx[:0], e.rx[:0]
}

// StartPoll begins a transaction on a 1-based port. It returns 0xFF when a
// pad answers on the port's active slot and 0 otherwise.
func (e *Engine) StartPoll(port int) uint8 {
	e.flushRaw()

	p := port - 1
	if p < 0 || p >= NumPorts {
		e.query.Reset()
		return 0
	}

	slot := e.slots[p]
	if !e.enabled(p, int(slot)) {
		e.query.Port = uint8(p)
		e.query.Slot = slot
		e.query.close()
		return 0
	}

	e.query.open(uint8(p), slot)
	e.record(0x01, pollAck)
	return pollAck
}

// Poll clocks one byte of the open transaction.
func (e *Engine) Poll(value uint8) uint8 {
	q := &e.query
	if int(q.Port) >= NumPorts || int(q.Slot) >= NumSlots {
		return 0
	}

	pad := &e.pads[q.Port][q.Slot]
	st := State{Query: *q, Pad: *pad, DualShock1: e.dualShock1}
	out, next := Step(st, e.sources[q.Port], value)

	if next.Pad.Mode != pad.Mode {
		e.logger.Debug("pad mode changed",
			"port", int(q.Port)+1, "slot", int(q.Slot)+1,
			"from", ModeName(pad.Mode), "to", ModeName(next.Pad.Mode))
	}
	*q = next.Query
	*pad = next.Pad

	// Bytes clocked after the dump was flushed belong to no transaction.
	if len(e.tx) > 0 {
		e.record(value, out)
		if int(q.LastByte)+1 >= int(q.NumBytes) {
			e.flushRaw()
		}
	}
	return out
}

// SetSlot selects the active multitap slot. Port and slot are 1-based. It
// returns false when either is out of range. The slot is recorded even when
// no pad is plugged into it.
func (e *Engine) SetSlot(port, slot int) bool {
	port--
	slot--
	if port < 0 || port >= NumPorts || slot < 0 || slot >= NumSlots {
		return false
	}
	e.slots[port] = uint8(slot)
	return true
}

// Slot returns the active 0-based slot of a 0-based port.
func (e *Engine) Slot(port int) int {
	if port < 0 || port >= NumPorts {
		return 0
	}
	return int(e.slots[port])
}

// SetDualShock1 switches the identity reported by every pad.
func (e *Engine) SetDualShock1(v bool) { e.dualShock1 = v }

// Enabled reports whether a pad is plugged into a 0-based port and slot.
func (e *Engine) Enabled(port, slot int) bool {
	if port < 0 || port >= NumPorts || slot < 0 || slot >= NumSlots {
		return false
	}
	return e.enabled(port, slot)
}

// Pad returns a copy of the pad at a 0-based port and slot.
func (e *Engine) Pad(port, slot int) (Pad, bool) {
	if port < 0 || port >= NumPorts || slot < 0 || slot >= NumSlots {
		return Pad{}, false
	}
	return e.pads[port][slot], true
}

// Query returns a copy of the transaction cursor.
func (e *Engine) Query() Query { return e.query }

// QueryPadState returns the mode of the pad at a 1-based port and slot, or 0
// when no pad is plugged in there.
func (e *Engine) QueryPadState(port, slot int) uint8 {
	if !e.Enabled(port-1, slot-1) {
		return 0
	}
	return e.pads[port-1][slot-1].Mode
}

// StopVibrateAll silences every motor.
func (e *Engine) StopVibrateAll() {
	for port := range e.pads {
		for slot := range e.pads[port] {
			e.pads[port][slot].ResetVibrate()
		}
	}
}

// Rumble applies queued motor changes of the pad in slot 0 of a 0-based
// port. fn receives each motor whose value changed or is still running.
func (e *Engine) Rumble(port int, fn func(motor int, value uint8)) {
	if port < 0 || port >= NumPorts {
		return
	}
	e.pads[port][0].Rumble(fn)
}

// RumbleAll calls Rumble for every port.
func (e *Engine) RumbleAll(fn func(port, motor int, value uint8)) {
	for port := range e.pads {
		e.Rumble(port, func(motor int, value uint8) {
			if fn != nil {
				fn(port, motor, value)
			}
		})
	}
}

func (e *Engine) record(tx, rx uint8) {
	if len(e.tx) < cap(e.tx) {
		e.tx = append(e.tx, tx)
		e.rx = append(e.rx, rx)
	}
}

func (e *Engine) flushRaw() {
	if len(e.tx) == 0 {
		return
	}
	e.raw.Log(int(e.query.Port)+1, e.tx, e.rx)
	e.tx, e.rx = e.tx[:0], e.rx[:0]
}
