package pad_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sio2pad/input"
	"github.com/Alia5/sio2pad/pad"
)

type fixture struct {
	ports *input.Ports
	eng   *pad.Engine
}

func newFixture(t *testing.T, opts pad.Options) *fixture {
	t.Helper()
	ports := input.NewPorts()
	eng := pad.NewEngine([pad.NumPorts]pad.Source{ports.Port(0), ports.Port(1)}, opts)
	return &fixture{ports: ports, eng: eng}
}

// transact runs one full exchange on a 1-based port and returns every byte
// the pad clocked out, the StartPoll answer first.
func (f *fixture) transact(port int, in ...uint8) []uint8 {
	out := []uint8{f.eng.StartPoll(port)}
	for _, b := range in {
		out = append(out, f.eng.Poll(b))
	}
	return out
}

func (f *fixture) enterConfig(port int) {
	f.transact(port, pad.CmdConfigMode, 0x00, 0x01, 0x00)
}

func (f *fixture) exitConfig(port int) {
	f.transact(port, pad.CmdConfigMode, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
}

func (f *fixture) setAnalog(port int) {
	f.enterConfig(port)
	f.transact(port, pad.CmdSetModeAndLock, 0x00, 0x01, 0x00)
	f.exitConfig(port)
}

func (f *fixture) setNative(port int) {
	f.enterConfig(port)
	f.transact(port, pad.CmdSetDS2NativeMode, 0x00, 0xFF, 0xFF, 0x03)
	f.exitConfig(port)
}

func (f *fixture) pad(t *testing.T, port, slot int) pad.Pad {
	t.Helper()
	p, ok := f.eng.Pad(port, slot)
	require.True(t, ok)
	return p
}

func TestDigitalPoll(t *testing.T) {
	f := newFixture(t, pad.Options{})
	ps := f.ports.Port(0)
	ps.SetAccess(input.SourceJoystick)
	ps.PressButton(input.KeyCross)
	ps.PressButton(input.KeyStart)
	ps.Commit()

	out := f.transact(1, pad.CmdReadDataAndVibrate, 0x00, 0x00, 0x00, 0x00)

	assert.Equal(t, []uint8{0xFF, pad.ModeDigital, 0x5A, 0xF7, 0xBF, 0x00}, out)
	assert.Equal(t, uint8(5), f.eng.Query().NumBytes)
}

func TestReadDataFraming(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture)
		expected uint8
	}{
		{name: "digital", setup: func(*fixture) {}, expected: 5},
		{name: "analog", setup: func(f *fixture) { f.setAnalog(1) }, expected: 9},
		{name: "ds2 native", setup: func(f *fixture) { f.setNative(1) }, expected: 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, pad.Options{})
			tt.setup(f)
			f.ports.Commit()

			in := make([]uint8, 24)
			in[0] = pad.CmdReadDataAndVibrate
			out := f.transact(1, in...)

			assert.Equal(t, tt.expected, f.eng.Query().NumBytes)
			// Everything clocked past the reply length reads as zero.
			for i := int(tt.expected); i < len(out); i++ {
				assert.Zero(t, out[i], "byte %d", i)
			}
		})
	}
}

func TestCommandFraming(t *testing.T) {
	tests := []struct {
		name     string
		cmd      uint8
		expected uint8
		done     bool
	}{
		{name: "set vref param", cmd: pad.CmdSetVrefParam, expected: 9, done: true},
		{name: "query ds2 analog mode", cmd: pad.CmdQueryDS2AnalogMode, expected: 9, done: true},
		{name: "config mode exit", cmd: pad.CmdConfigMode, expected: 9},
		{name: "set mode and lock", cmd: pad.CmdSetModeAndLock, expected: 9},
		{name: "query model and mode", cmd: pad.CmdQueryModelAndMode, expected: 9, done: true},
		{name: "query act", cmd: pad.CmdQueryAct, expected: 9},
		{name: "query comb", cmd: pad.CmdQueryComb, expected: 9, done: true},
		{name: "query mode", cmd: pad.CmdQueryMode, expected: 9},
		{name: "vibration toggle", cmd: pad.CmdVibrationToggle, expected: 9},
		{name: "set ds2 native mode", cmd: pad.CmdSetDS2NativeMode, expected: 9},
		{name: "unknown", cmd: 0x99, expected: 0, done: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, pad.Options{})
			f.enterConfig(1)

			out := f.transact(1, tt.cmd)

			q := f.eng.Query()
			assert.Equal(t, tt.expected, q.NumBytes)
			assert.Equal(t, tt.done, q.Done())
			assert.Equal(t, uint8(0xF3), out[1])
		})
	}
}

func TestUnknownCommandClosesTransaction(t *testing.T) {
	f := newFixture(t, pad.Options{})

	out := f.transact(1, 0x99, 0x42, 0x00)

	assert.Equal(t, []uint8{0xFF, 0xF3, 0x00, 0x00}, out)
	assert.Equal(t, pad.ModeDigital, f.pad(t, 0, 0).Mode)
}

func TestQueryModelAndMode(t *testing.T) {
	tests := []struct {
		name     string
		ds1      bool
		analog   bool
		expected []uint8
	}{
		{name: "ds2 digital", expected: []uint8{0x5A, 0x03, 0x02, 0x00, 0x02, 0x01, 0x00}},
		{name: "ds2 analog", analog: true, expected: []uint8{0x5A, 0x03, 0x02, 0x01, 0x02, 0x01, 0x00}},
		{name: "ds1 digital", ds1: true, expected: []uint8{0x5A, 0x01, 0x02, 0x00, 0x02, 0x01, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, pad.Options{DualShock1: tt.ds1})
			if tt.analog {
				f.setAnalog(1)
			}
			f.enterConfig(1)

			out := f.transact(1, pad.CmdQueryModelAndMode, 0, 0, 0, 0, 0, 0, 0)

			assert.Equal(t, tt.expected, out[2:9])
		})
	}
}

func TestQueryMaskModeTrailerIsPinned(t *testing.T) {
	assert.Equal(t, uint8(0x5A), pad.MaskModeTrailer)

	f := newFixture(t, pad.Options{})
	f.enterConfig(1)
	out := f.transact(1, pad.CmdQueryDS2AnalogMode, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, []uint8{0x5A, 0, 0, 0, 0, 0, 0}, out[2:9])

	f.exitConfig(1)
	f.setAnalog(1)
	f.enterConfig(1)
	out = f.transact(1, pad.CmdQueryDS2AnalogMode, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, []uint8{0x5A, 0xFF, 0xFF, 0x03, 0x00, 0x00, pad.MaskModeTrailer}, out[2:9])
}

func TestQueryActAndMode(t *testing.T) {
	tests := []struct {
		name     string
		in       []uint8
		expected []uint8
	}{
		{
			name:     "query act 0",
			in:       []uint8{pad.CmdQueryAct, 0x00, 0x00, 0, 0, 0, 0, 0},
			expected: []uint8{0x5A, 0x00, 0x00, 0x01, 0x02, 0x00, 0x0A},
		},
		{
			name:     "query act 1",
			in:       []uint8{pad.CmdQueryAct, 0x00, 0x01, 0, 0, 0, 0, 0},
			expected: []uint8{0x5A, 0x00, 0x00, 0x01, 0x01, 0x01, 0x14},
		},
		{
			name:     "query mode 0",
			in:       []uint8{pad.CmdQueryMode, 0x00, 0x00, 0, 0, 0, 0, 0},
			expected: []uint8{0x5A, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00},
		},
		{
			name:     "query mode 1",
			in:       []uint8{pad.CmdQueryMode, 0x00, 0x01, 0, 0, 0, 0, 0},
			expected: []uint8{0x5A, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00},
		},
		{
			name:     "query comb",
			in:       []uint8{pad.CmdQueryComb, 0, 0, 0, 0, 0, 0, 0},
			expected: []uint8{0x5A, 0x00, 0x00, 0x02, 0x00, 0x01, 0x00},
		},
		{
			name:     "set vref param",
			in:       []uint8{pad.CmdSetVrefParam, 0, 0, 0, 0, 0, 0, 0},
			expected: []uint8{0x5A, 0x00, 0x00, 0x02, 0x00, 0x00, 0x5A},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, pad.Options{})
			f.enterConfig(1)
			out := f.transact(1, tt.in...)
			assert.Equal(t, tt.expected, out[2:9])
		})
	}
}

func TestSetModeAndLock(t *testing.T) {
	f := newFixture(t, pad.Options{})
	f.enterConfig(1)

	f.transact(1, pad.CmdSetModeAndLock, 0x00, 0x01, 0x03)
	p := f.pad(t, 0, 0)
	assert.Equal(t, pad.ModeAnalog, p.Mode)
	assert.True(t, p.Locked())

	// Locked: the mode byte is ignored, the lock byte clears the lock.
	f.transact(1, pad.CmdSetModeAndLock, 0x00, 0x00, 0x00)
	p = f.pad(t, 0, 0)
	assert.Equal(t, pad.ModeAnalog, p.Mode)
	assert.False(t, p.Locked())

	f.transact(1, pad.CmdSetModeAndLock, 0x00, 0x00, 0x00)
	assert.Equal(t, pad.ModeDigital, f.pad(t, 0, 0).Mode)

	// Out of range mode bytes leave the mode alone.
	f.transact(1, pad.CmdSetModeAndLock, 0x00, 0x02, 0x00)
	assert.Equal(t, pad.ModeDigital, f.pad(t, 0, 0).Mode)
}

func TestConfigModeToggle(t *testing.T) {
	f := newFixture(t, pad.Options{})

	out := f.transact(1, pad.CmdConfigMode, 0x00, 0x01, 0x00)
	// Entering answers like a poll.
	assert.Equal(t, pad.ModeDigital, out[1])
	assert.Equal(t, uint8(1), f.pad(t, 0, 0).Config)

	out = f.transact(1, pad.CmdConfigMode, 0x00, 0x00, 0x00)
	assert.Equal(t, uint8(0xF3), out[1])
	assert.Equal(t, uint8(0), f.pad(t, 0, 0).Config)
}

func TestSetDS2NativeMode(t *testing.T) {
	tests := []struct {
		name     string
		modeByte uint8
		ds1      bool
		expected uint8
		umask    [2]uint8
	}{
		{name: "digital", modeByte: 0x00, expected: pad.ModeDigital, umask: [2]uint8{0x3F, 0x00}},
		{name: "analog", modeByte: 0x01, expected: pad.ModeAnalog, umask: [2]uint8{0x3F, 0x00}},
		{name: "native", modeByte: 0x03, expected: pad.ModeDS2Native, umask: [2]uint8{0x3F, 0x00}},
		{name: "ds1 ignores arguments", modeByte: 0x03, ds1: true, expected: pad.ModeDigital, umask: [2]uint8{0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, pad.Options{DualShock1: tt.ds1})
			f.enterConfig(1)

			f.transact(1, pad.CmdSetDS2NativeMode, 0x00, 0x3F, 0x00, tt.modeByte, 0, 0, 0)

			p := f.pad(t, 0, 0)
			assert.Equal(t, tt.expected, p.Mode)
			assert.Equal(t, tt.umask, p.Umask)
		})
	}
}

func TestNativeReadData(t *testing.T) {
	f := newFixture(t, pad.Options{})
	f.setNative(1)

	ps := f.ports.Port(0)
	ps.SetAccess(input.SourceJoystick)
	ps.Press(input.KeyCross, 0x80)
	ps.Press(input.KeyLRight, 0x4000)
	ps.SetAccess(input.SourceKeyboard)
	ps.PressButton(input.KeyR2)
	ps.PressButton(input.KeyRUp)
	ps.Commit()

	in := make([]uint8, 21)
	in[0] = pad.CmdReadDataAndVibrate
	out := f.transact(1, in...)

	require.Len(t, out, 22)
	assert.Equal(t, pad.ModeDS2Native, out[1])
	assert.Equal(t, uint8(0x5A), out[2])
	assert.Equal(t, uint8(0xFF), out[3])
	assert.Equal(t, uint8(0xBD), out[4])
	// rx, ry, lx, ly
	assert.Equal(t, []uint8{0x7F, 0x7F - 127, 0x7F + 0x40, 0x7F}, out[5:9])
	// Right, Left, Up, Down, Triangle, Circle, Cross, Square, L1, R1, L2, R2
	assert.Equal(t, []uint8{0, 0, 0, 0, 0, 0, 0x80, 0, 0, 0, 0, 0xFF}, out[9:21])
}

func TestVibrationHandshake(t *testing.T) {
	f := newFixture(t, pad.Options{})
	f.setAnalog(1)
	f.enterConfig(1)

	out := f.transact(1, pad.CmdVibrationToggle, 0x00, 0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF)
	assert.Equal(t, []uint8{0x5A, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, out[2:9])

	p := f.pad(t, 0, 0)
	assert.Equal(t, uint8(3), p.VibrateI[1])
	assert.Equal(t, uint8(4), p.VibrateI[0])
	f.exitConfig(1)

	f.transact(1, pad.CmdReadDataAndVibrate, 0x00, 0x01, 0xC0, 0, 0, 0, 0)
	p = f.pad(t, 0, 0)
	assert.Equal(t, [2]uint8{0xC0, 0xFF}, p.NextVibrate)

	type call struct{ motor, value int }
	var got []call
	f.eng.Rumble(0, func(motor int, value uint8) { got = append(got, call{motor, int(value)}) })
	assert.Equal(t, []call{{pad.MotorLarge, 0xC0}, {pad.MotorSmall, 0xFF}}, got)

	// The small motor only looks at the low bit.
	f.transact(1, pad.CmdReadDataAndVibrate, 0x00, 0xFE, 0x00, 0, 0, 0, 0)
	assert.Equal(t, [2]uint8{0x00, 0x00}, f.pad(t, 0, 0).NextVibrate)
}

func TestStepIsPure(t *testing.T) {
	ps := input.NewPortState()
	ps.Commit()
	st := pad.State{
		Query: pad.Query{NumBytes: 2},
		Pad:   pad.Pad{Mode: pad.ModeDigital, Umask: [2]uint8{0xFF, 0xFF}},
	}

	out1, next1 := pad.Step(st, ps, pad.CmdReadDataAndVibrate)
	out2, next2 := pad.Step(st, ps, pad.CmdReadDataAndVibrate)

	assert.Equal(t, out1, out2)
	assert.Equal(t, next1, next2)
	assert.Equal(t, uint8(0), st.Query.LastByte)
	assert.Equal(t, uint8(1), next1.Query.LastByte)
	assert.Equal(t, uint8(5), next1.Query.NumBytes)
}

func TestStepWithoutSource(t *testing.T) {
	st := pad.State{
		Query: pad.Query{NumBytes: 2},
		Pad:   pad.Pad{Mode: pad.ModeAnalog},
	}

	_, st = pad.Step(st, nil, pad.CmdReadDataAndVibrate)

	assert.Equal(t, uint8(0xFF), st.Query.Response[3])
	assert.Equal(t, uint8(0xFF), st.Query.Response[4])
	assert.Equal(t, input.AxisCenter, st.Query.Response[5])
}
