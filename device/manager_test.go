package device_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/device/keyboard"
	"github.com/Alia5/sio2pad/input"
)

type fakeDevice struct {
	name, uid string
	inputs    map[input.Key]int32
	updates   int
	effects   [2]uint16
	closed    bool
}

func (d *fakeDevice) Name() string { return d.name }
func (d *fakeDevice) UID() string  { return d.uid }
func (d *fakeDevice) UpdateState() { d.updates++ }
func (d *fakeDevice) GetInput(i int) int32 {
	return d.inputs[input.Key(i)]
}
func (d *fakeDevice) SetEffect(motor int, intensity uint16) { d.effects[motor] = intensity }
func (d *fakeDevice) Close() error                          { d.closed = true; return nil }

type fakeBackend struct {
	devs []device.Device
	err  error
}

func (b *fakeBackend) Name() string                        { return "fake" }
func (b *fakeBackend) Enumerate() ([]device.Device, error) { return b.devs, b.err }
func (b *fakeBackend) Close() error                        { return nil }

type pumpingBackend struct {
	fakeBackend
	pumps int
}

func (b *pumpingBackend) Pump() { b.pumps++ }

func TestUpdatePumpsBackendOncePerFrame(t *testing.T) {
	a := &fakeDevice{name: "a", uid: "a"}
	b := &fakeDevice{name: "b", uid: "b"}
	c := &fakeDevice{name: "c", uid: "c"}
	pb := &pumpingBackend{fakeBackend: fakeBackend{devs: []device.Device{a, b, c}}}

	m := device.NewManager(input.NewPorts(), nil, nil)
	m.SetBackends(pb, &fakeBackend{})
	m.EnumerateDevices()

	m.Update()
	m.Update()
	assert.Equal(t, 2, pb.pumps)
	assert.Equal(t, 2, c.updates)
}

func TestBindByUID(t *testing.T) {
	a := &fakeDevice{name: "a", uid: "uid-a"}
	b := &fakeDevice{name: "b", uid: "uid-b"}
	c := &fakeDevice{name: "c", uid: "uid-c"}

	tests := []struct {
		name     string
		uids     [input.NumPorts]string
		expected [input.NumPorts]device.Device
	}{
		{name: "enumeration order", expected: [2]device.Device{a, b}},
		{name: "uid on both ports", uids: [2]string{"uid-c", "uid-a"}, expected: [2]device.Device{c, a}},
		{name: "uid on second port", uids: [2]string{"", "uid-a"}, expected: [2]device.Device{b, a}},
		{name: "unknown uid falls back", uids: [2]string{"missing", ""}, expected: [2]device.Device{a, b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := device.NewManager(input.NewPorts(), nil, nil)
			m.SetBackends(&fakeBackend{err: errors.New("no such api")}, &fakeBackend{devs: []device.Device{a, b, c}})
			m.SetUIDs(tt.uids)
			m.EnumerateDevices()

			assert.Equal(t, tt.expected[0], m.Device(0))
			assert.Equal(t, tt.expected[1], m.Device(1))
			assert.Len(t, m.Devices(), 3)
		})
	}
}

func TestUpdateMergesSources(t *testing.T) {
	ports := input.NewPorts()
	cfg := keyboard.Config{Sensitivity: 1}
	cfg.Keymaps[0] = keyboard.DefaultKeymap()
	kb := keyboard.New(cfg, nil)

	pad := &fakeDevice{name: "pad", uid: "1", inputs: map[input.Key]int32{
		input.KeyCircle: 0x80,
		input.KeyLUp:    -0x4000,
		input.KeyLDown:  -0x4000,
	}}
	m := device.NewManager(ports, kb, nil)
	m.SetBackends(&fakeBackend{devs: []device.Device{pad}})
	m.EnumerateDevices()

	kb.Push(keyboard.Event{Kind: keyboard.KeyPress, Key: 'k'})
	m.Update()

	p := ports.Port(0)
	assert.Equal(t, uint16(0xFFFF)&^(1<<input.KeyCross)&^(1<<input.KeyCircle), p.Buttons())
	assert.Equal(t, uint8(0x80), p.Pressure(input.KeyCircle))
	assert.Equal(t, uint8(0xFF), p.Pressure(input.KeyCross))
	assert.Equal(t, uint8(0x7F-0x40), p.Get(input.KeyLUp))
	assert.Equal(t, 1, pad.updates)

	// The device lets go, the key stays held.
	pad.inputs = nil
	m.Update()
	assert.Equal(t, uint16(0xFFFF)&^(1<<input.KeyCross), p.Buttons())
	assert.Equal(t, input.AxisCenter, p.Get(input.KeyLUp))

	// Port 2 has no device and stays released.
	assert.Equal(t, uint16(0xFFFF), ports.Port(1).Buttons())
}

func TestAttachOverridesBinding(t *testing.T) {
	ports := input.NewPorts()
	enumerated := &fakeDevice{name: "joy", inputs: map[input.Key]int32{input.KeyStart: 0xFF}}
	remote := &fakeDevice{name: "remote", inputs: map[input.Key]int32{input.KeySelect: 0xFF}}

	m := device.NewManager(ports, nil, nil)
	m.SetBackends(&fakeBackend{devs: []device.Device{enumerated}})
	m.EnumerateDevices()

	require.NoError(t, m.Attach(0, remote))
	assert.ErrorIs(t, m.Attach(0, remote), device.ErrPortBusy)
	assert.Error(t, m.Attach(2, remote))

	m.Update()
	assert.Equal(t, uint16(0xFFFF)&^(1<<input.KeySelect), ports.Port(0).Buttons())
	assert.Equal(t, 1, remote.updates)

	m.SetEffect(0, 1, 0x7FFF)
	assert.Equal(t, [2]uint16{0, 0x7FFF}, remote.effects)

	m.Detach(remote)
	m.Update()
	assert.Equal(t, uint16(0xFFFF)&^(1<<input.KeyStart), ports.Port(0).Buttons())
	assert.Equal(t, enumerated, m.Device(0))
}

func TestCloseClosesDevices(t *testing.T) {
	d := &fakeDevice{name: "d"}
	m := device.NewManager(input.NewPorts(), nil, nil)
	m.SetBackends(&fakeBackend{devs: []device.Device{d}})
	m.EnumerateDevices()

	require.NoError(t, m.Close())
	assert.True(t, d.closed)
	assert.Nil(t, m.Device(0))
}

func TestScaleStick(t *testing.T) {
	tests := []struct {
		name                   string
		raw, sens, dead, value int32
	}{
		{name: "unit", raw: 1000, sens: 100, dead: 0, value: 1000},
		{name: "half", raw: -1000, sens: 50, dead: 0, value: -500},
		{name: "in dead zone", raw: 1000, sens: 100, dead: 1000, value: 0},
		{name: "past dead zone", raw: -1001, sens: 100, dead: 1000, value: -1001},
		{name: "boost", raw: 32767, sens: 200, dead: 0, value: 65534},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, device.ScaleStick(tt.raw, tt.sens, tt.dead))
		})
	}

	assert.Equal(t, int32(0), device.ScaleTrigger(100, 100))
	assert.Equal(t, int32(255), device.ScaleTrigger(32767, 100))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := device.OpenBackend("does-not-exist", device.Options{})
	assert.Error(t, err)
	assert.Empty(t, device.OpenBackends([]string{"does-not-exist"}, device.Options{}))
}
