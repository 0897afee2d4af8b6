// Package keyboard turns host key, mouse button and pointer events into pad
// input through per-port key maps.
package keyboard

import (
	"log/slog"
	"sync"

	"github.com/Alia5/sio2pad/input"
)

// MouseDeadZone is the pointer movement, in pixels, that still counts as
// standing still.
const MouseDeadZone int32 = 2

// Sink receives the presses and releases derived from events. *input.Ports
// satisfies it.
type Sink interface {
	PressButton(port int, k input.Key)
	Press(port int, k input.Key, value int32)
	Release(port int, k input.Key)
}

// Mouse selects which stick the pointer drives on a port. Right wins when
// both are set.
type Mouse struct {
	Left  bool
	Right bool
}

// Config is the keyboard part of the pad configuration.
type Config struct {
	Keymaps     [input.NumPorts]map[uint32]input.Key
	Mouse       [input.NumPorts]Mouse
	Sensitivity int32
	DeadZone    int32
}

// DefaultKeymap is the binding of a fresh install for the first port.
func DefaultKeymap() map[uint32]input.Key {
	return map[uint32]input.Key{
		'a':          input.KeyL2,
		KeySemicolon: input.KeyR2,
		'w':          input.KeyL1,
		'p':          input.KeyR1,
		'i':          input.KeyTriangle,
		'l':          input.KeyCircle,
		'k':          input.KeyCross,
		'j':          input.KeySquare,
		'v':          input.KeySelect,
		'n':          input.KeyStart,
		'e':          input.KeyUp,
		'f':          input.KeyRight,
		'd':          input.KeyDown,
		's':          input.KeyLeft,
	}
}

// Keyboard is the always present keyboard and mouse source. Events reach it
// through its queue from any goroutine; Update applies them on the polling
// goroutine.
type Keyboard struct {
	queue  EventQueue
	logger *slog.Logger

	mu    sync.Mutex
	cfg   Config
	prevX int32
	prevY int32

	last Event
}

// New returns a keyboard using cfg. A nil logger discards.
func New(cfg Config, logger *slog.Logger) *Keyboard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	k := &Keyboard{logger: logger}
	k.SetConfig(cfg)
	return k
}

// SetConfig swaps the key maps and mouse settings.
func (k *Keyboard) SetConfig(cfg Config) {
	if cfg.Sensitivity < 1 {
		cfg.Sensitivity = 1
	}
	if cfg.DeadZone < 0 {
		cfg.DeadZone = MouseDeadZone
	}
	k.mu.Lock()
	k.cfg = cfg
	k.mu.Unlock()
}

// Push queues an event. Safe for concurrent use.
func (k *Keyboard) Push(ev Event) { k.queue.Push(ev) }

// Queue exposes the event FIFO to producers.
func (k *Keyboard) Queue() *EventQueue { return &k.queue }

// Update drains every queued event into sink. The caller selects the
// keyboard source on the ports beforehand.
func (k *Keyboard) Update(sink Sink) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.queue.DrainAll(func(ev Event) { k.analyze(sink, ev) })
}

// LastEvent returns and clears the most recent key press or release.
func (k *Keyboard) LastEvent() Event {
	k.mu.Lock()
	defer k.mu.Unlock()
	ev := k.last
	k.last = Event{}
	return ev
}

// lookup finds the binding of sym. When several ports bind the same key the
// highest port wins.
func (k *Keyboard) lookup(sym uint32) (port int, key input.Key, ok bool) {
	for p, km := range k.cfg.Keymaps {
		if v, found := km[sym]; found {
			port, key, ok = p, v, true
		}
	}
	return port, key, ok
}

func (k *Keyboard) analyze(sink Sink, ev Event) {
	switch ev.Kind {
	case KeyPress, ButtonPress:
		if port, key, ok := k.lookup(ev.Key); ok {
			sink.PressButton(port, key)
		}
		if ev.Kind == KeyPress {
			k.last = ev
		}
	case KeyRelease, ButtonRelease:
		if port, key, ok := k.lookup(ev.Key); ok {
			sink.Release(port, key)
		}
		if ev.Kind == KeyRelease {
			k.last = ev
		}
	case MotionNotify:
		k.motion(sink, ev.X, ev.Y)
	default:
		k.logger.Debug("ignoring event", "kind", ev.Kind, "key", ev.Key)
	}
}

func (k *Keyboard) motion(sink Sink, x, y int32) {
	x = min(max(x, 0), 0xFFFF)
	y = min(max(y, 0), 0xFFFF)

	for port, m := range k.cfg.Mouse {
		if !m.Left && !m.Right {
			continue
		}
		keyX, keyY := input.KeyLRight, input.KeyLUp
		if m.Right {
			keyX, keyY = input.KeyRRight, input.KeyRUp
		}
		k.moveAxis(sink, port, keyX, x, k.prevX)
		k.moveAxis(sink, port, keyY, y, k.prevY)
	}
	k.prevX, k.prevY = x, y
}

func (k *Keyboard) moveAxis(sink Sink, port int, key input.Key, pos, prev int32) {
	delta := pos - prev
	value := int32(min(int64(max(delta, -delta))*int64(k.cfg.Sensitivity), int64(input.MaxAnalog)))

	switch {
	case pos == 0:
		sink.Press(port, key, -input.MaxAnalog)
	case pos == 0xFFFF:
		sink.Press(port, key, input.MaxAnalog)
	case delta < -k.cfg.DeadZone:
		sink.Press(port, key, -value)
	case delta > k.cfg.DeadZone:
		sink.Press(port, key, value)
	default:
		sink.Release(port, key)
	}
}
