package joydev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sio2pad/input"
)

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent([]byte{0x10, 0x27, 0, 0, 0x00, 0x80, 0x82, 0x03})
	require.NoError(t, err)
	assert.Equal(t, Event{Time: 10000, Value: -32768, Type: TypeAxis | TypeInit, Number: 3}, e)

	_, err = ParseEvent([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestStateApply(t *testing.T) {
	var s State
	s.Apply(Event{Type: TypeButton | TypeInit, Number: 0, Value: 1})
	s.Apply(Event{Type: TypeAxis, Number: 1, Value: -20000})
	s.Apply(Event{Type: TypeButton, Number: 200, Value: 1})
	s.Apply(Event{Type: TypeAxis, Number: 200, Value: 5})
	s.Apply(Event{Type: 0x04, Number: 2, Value: 1})

	assert.True(t, s.Buttons[0])
	assert.False(t, s.Buttons[2])
	assert.Equal(t, int16(-20000), s.Axes[1])

	s.Apply(Event{Type: TypeButton, Number: 0, Value: 0})
	assert.False(t, s.Buttons[0])
}

func TestXpadLayout(t *testing.T) {
	var s State
	s.Buttons[0] = true
	s.Buttons[7] = true
	s.Axes[0] = 30000
	s.Axes[1] = -500
	s.Axes[2] = -32767
	s.Axes[5] = 32767
	s.Axes[6] = -32767
	s.Axes[7] = 32767

	tests := []struct {
		key      input.Key
		expected int32
	}{
		{key: input.KeyCross, expected: 0xFF},
		{key: input.KeyStart, expected: 0xFF},
		{key: input.KeyCircle, expected: 0},
		{key: input.KeyLRight, expected: 30000},
		{key: input.KeyLLeft, expected: 30000},
		{key: input.KeyLUp, expected: 0},
		{key: input.KeyL2, expected: 0},
		{key: input.KeyR2, expected: 255},
		{key: input.KeyLeft, expected: 0xFF},
		{key: input.KeyRight, expected: 0},
		{key: input.KeyDown, expected: 0xFF},
		{key: input.KeyUp, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, XpadLayout.Read(&s, tt.key, 100, 1000))
		})
	}
}
