package keyboard_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sio2pad/device/keyboard"
	"github.com/Alia5/sio2pad/input"
)

func TestQueueOrder(t *testing.T) {
	var q keyboard.EventQueue
	assert.Zero(t, q.DrainAll(func(keyboard.Event) { t.Fatal("queue should be empty") }))

	for i := range uint32(5) {
		q.Push(keyboard.Event{Kind: keyboard.KeyPress, Key: i})
	}
	assert.Equal(t, 5, q.Len())

	var got []uint32
	n := q.DrainAll(func(ev keyboard.Event) { got = append(got, ev.Key) })

	assert.Equal(t, 5, n)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, got)
	assert.Zero(t, q.Len())
}

func TestQueuePushDuringDrain(t *testing.T) {
	var q keyboard.EventQueue
	q.Push(keyboard.Event{Key: 1})
	q.Push(keyboard.Event{Key: 2})

	var first []uint32
	n := q.DrainAll(func(ev keyboard.Event) {
		first = append(first, ev.Key)
		q.Push(keyboard.Event{Key: ev.Key + 10})
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint32{1, 2}, first)

	var second []uint32
	q.DrainAll(func(ev keyboard.Event) { second = append(second, ev.Key) })
	assert.Equal(t, []uint32{11, 12}, second)
	assert.Zero(t, q.Len())
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 2000

	var q keyboard.EventQueue
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				q.Push(keyboard.Event{Key: uint32(p), X: int32(i)})
			}
		}()
	}

	last := make([]int32, producers)
	for i := range last {
		last[i] = -1
	}
	total := 0
	consume := func(ev keyboard.Event) {
		// Each producer's events arrive in push order.
		require.Greater(t, ev.X, last[ev.Key])
		last[ev.Key] = ev.X
		total++
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			q.DrainAll(consume)
			assert.Equal(t, producers*perProducer, total)
			return
		default:
			q.DrainAll(consume)
		}
	}
}

type sinkCall struct {
	op    string
	port  int
	key   input.Key
	value int32
}

type recordSink struct{ calls []sinkCall }

func (r *recordSink) PressButton(port int, k input.Key) {
	r.calls = append(r.calls, sinkCall{"press", port, k, 0})
}

func (r *recordSink) Press(port int, k input.Key, value int32) {
	r.calls = append(r.calls, sinkCall{"press", port, k, value})
}

func (r *recordSink) Release(port int, k input.Key) {
	r.calls = append(r.calls, sinkCall{"release", port, k, 0})
}

func TestKeyEvents(t *testing.T) {
	cfg := keyboard.Config{Sensitivity: 1, DeadZone: keyboard.MouseDeadZone}
	cfg.Keymaps[0] = keyboard.DefaultKeymap()
	cfg.Keymaps[1] = map[uint32]input.Key{
		keyboard.KeyReturn: input.KeyStart,
		'k':                input.KeyCircle,
		keyboard.MouseLeft: input.KeyR1,
	}
	kb := keyboard.New(cfg, nil)

	tests := []struct {
		name     string
		ev       keyboard.Event
		expected []sinkCall
	}{
		{
			name:     "bound key",
			ev:       keyboard.Event{Kind: keyboard.KeyPress, Key: 'a'},
			expected: []sinkCall{{"press", 0, input.KeyL2, 0}},
		},
		{
			name:     "release",
			ev:       keyboard.Event{Kind: keyboard.KeyRelease, Key: keyboard.KeySemicolon},
			expected: []sinkCall{{"release", 0, input.KeyR2, 0}},
		},
		{
			name:     "second port",
			ev:       keyboard.Event{Kind: keyboard.KeyPress, Key: keyboard.KeyReturn},
			expected: []sinkCall{{"press", 1, input.KeyStart, 0}},
		},
		{
			name:     "highest port wins",
			ev:       keyboard.Event{Kind: keyboard.KeyPress, Key: 'k'},
			expected: []sinkCall{{"press", 1, input.KeyCircle, 0}},
		},
		{
			name:     "mouse button",
			ev:       keyboard.Event{Kind: keyboard.ButtonPress, Key: keyboard.MouseLeft},
			expected: []sinkCall{{"press", 1, input.KeyR1, 0}},
		},
		{
			name: "unbound key",
			ev:   keyboard.Event{Kind: keyboard.KeyPress, Key: 'z'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordSink{}
			kb.Push(tt.ev)
			assert.Equal(t, 1, kb.Update(sink))
			assert.Equal(t, tt.expected, sink.calls)
		})
	}
}

func TestLastEvent(t *testing.T) {
	kb := keyboard.New(keyboard.Config{}, nil)
	kb.Push(keyboard.Event{Kind: keyboard.KeyPress, Key: keyboard.KeyF1})
	kb.Push(keyboard.Event{Kind: keyboard.ButtonPress, Key: keyboard.MouseRight})
	kb.Update(&recordSink{})

	assert.Equal(t, keyboard.Event{Kind: keyboard.KeyPress, Key: keyboard.KeyF1}, kb.LastEvent())
	assert.Equal(t, keyboard.Event{}, kb.LastEvent())
}

func TestMouseAsStick(t *testing.T) {
	cfg := keyboard.Config{Sensitivity: 100, DeadZone: keyboard.MouseDeadZone}
	cfg.Mouse[0] = keyboard.Mouse{Left: true}
	cfg.Mouse[1] = keyboard.Mouse{Left: true, Right: true}
	kb := keyboard.New(cfg, nil)

	move := func(x, y int32) []sinkCall {
		sink := &recordSink{}
		kb.Push(keyboard.Event{Kind: keyboard.MotionNotify, X: x, Y: y})
		kb.Update(sink)
		return sink.calls
	}

	move(100, 100)

	assert.Equal(t, []sinkCall{
		{"press", 0, input.KeyLRight, 1000},
		{"press", 0, input.KeyLUp, -300},
		{"press", 1, input.KeyRRight, 1000},
		{"press", 1, input.KeyRUp, -300},
	}, move(110, 97))

	// Within the dead zone both axes recentre.
	assert.Equal(t, []sinkCall{
		{"release", 0, input.KeyLRight, 0},
		{"release", 0, input.KeyLUp, 0},
		{"release", 1, input.KeyRRight, 0},
		{"release", 1, input.KeyRUp, 0},
	}, move(112, 95))

	// Screen edges pin the stick.
	assert.Equal(t, []sinkCall{
		{"press", 0, input.KeyLRight, -input.MaxAnalog},
		{"press", 0, input.KeyLUp, input.MaxAnalog},
		{"press", 1, input.KeyRRight, -input.MaxAnalog},
		{"press", 1, input.KeyRUp, input.MaxAnalog},
	}, move(0, 0xFFFF))

	// Large jumps saturate.
	calls := move(2000, 2000)
	assert.Equal(t, input.MaxAnalog, calls[0].value)
}

func TestMouseDisabled(t *testing.T) {
	kb := keyboard.New(keyboard.Config{}, nil)
	sink := &recordSink{}
	kb.Push(keyboard.Event{Kind: keyboard.MotionNotify, X: 500, Y: 500})
	kb.Update(sink)
	assert.Empty(t, sink.calls)
}

func TestParseKeysym(t *testing.T) {
	tests := []struct {
		in       string
		expected uint32
		wantErr  bool
	}{
		{in: "a", expected: 'a'},
		{in: "semicolon", expected: keyboard.KeySemicolon},
		{in: "Return", expected: keyboard.KeyReturn},
		{in: "return", expected: keyboard.KeyReturn},
		{in: "F12", expected: keyboard.KeyF12},
		{in: "KP_5", expected: keyboard.KeyKP0 + 5},
		{in: "7", expected: '7'},
		{in: "mouse_left", expected: keyboard.MouseLeft},
		{in: "0xff51", expected: keyboard.KeyLeft},
		{in: "nonsense", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := keyboard.ParseKeysym(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			if n, ok := keyboard.KeyName[got]; ok {
				back, err := keyboard.ParseKeysym(n)
				require.NoError(t, err)
				assert.Equal(t, got, back)
			}
		})
	}
}

func TestCharToKey(t *testing.T) {
	tests := []struct {
		in       byte
		expected uint32
		ok       bool
	}{
		{'k', 'k', true},
		{'K', 'k', true},
		{';', keyboard.KeySemicolon, true},
		{':', keyboard.KeySemicolon, true},
		{'\r', keyboard.KeyReturn, true},
		{0x7F, keyboard.KeyBackSpace, true},
		{0x01, 0, false},
	}
	for _, tt := range tests {
		got, ok := keyboard.CharToKey(tt.in)
		assert.Equal(t, tt.ok, ok, "%q", tt.in)
		assert.Equal(t, tt.expected, got, "%q", tt.in)
	}
}
