package device

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/sio2pad/device/keyboard"
	"github.com/Alia5/sio2pad/input"
)

// Manager polls the keyboard and every bound device once per frame and
// commits the result into the ports. It is driven from a single goroutine.
type Manager struct {
	logger   *slog.Logger
	ports    *input.Ports
	keyboard *keyboard.Keyboard

	backends []Backend
	devices  []Device
	uids     [input.NumPorts]string
	bound    [input.NumPorts]Device
	attached [input.NumPorts]Device
}

// NewManager returns a manager feeding ports. kb may be nil.
func NewManager(ports *input.Ports, kb *keyboard.Keyboard, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{logger: logger, ports: ports, keyboard: kb}
}

// SetBackends replaces the backends used by EnumerateDevices. The manager
// closes them on Close.
func (m *Manager) SetBackends(b ...Backend) { m.backends = b }

// SetUIDs sets the preferred device UID per port. Empty entries take the
// next free device in enumeration order.
func (m *Manager) SetUIDs(uids [input.NumPorts]string) {
	m.uids = uids
	m.bind()
}

// EnumerateDevices closes the current devices, asks every backend for its
// devices and binds them to ports.
func (m *Manager) EnumerateDevices() {
	m.closeDevices()
	for _, b := range m.backends {
		devs, err := b.Enumerate()
		if err != nil {
			m.logger.Warn("enumerate devices", "backend", b.Name(), "error", err)
			continue
		}
		m.devices = append(m.devices, devs...)
	}
	m.bind()
	for port, d := range m.bound {
		if d != nil {
			m.logger.Info("device bound", "port", port+1, "name", d.Name(), "uid", d.UID())
		}
	}
}

func (m *Manager) bind() {
	m.bound = [input.NumPorts]Device{}
	used := make(map[Device]bool, len(m.devices))

	for port, uid := range m.uids {
		if uid == "" {
			continue
		}
		for _, d := range m.devices {
			if !used[d] && d.UID() == uid {
				m.bound[port] = d
				used[d] = true
				break
			}
		}
	}

	next := 0
	for port := range m.bound {
		if m.bound[port] != nil {
			continue
		}
		for next < len(m.devices) && used[m.devices[next]] {
			next++
		}
		if next == len(m.devices) {
			break
		}
		m.bound[port] = m.devices[next]
		used[m.devices[next]] = true
	}
}

// Devices returns every enumerated device.
func (m *Manager) Devices() []Device { return m.devices }

// Device returns the device feeding a 0-based port, or nil.
func (m *Manager) Device(port int) Device {
	if port < 0 || port >= input.NumPorts {
		return nil
	}
	if d := m.attached[port]; d != nil {
		return d
	}
	return m.bound[port]
}

var ErrPortBusy = errors.New("port already has an attached device")

// Attach binds d to a 0-based port ahead of any enumerated device until
// Detach.
func (m *Manager) Attach(port int, d Device) error {
	if port < 0 || port >= input.NumPorts {
		return fmt.Errorf("port %d out of range", port+1)
	}
	if m.attached[port] != nil {
		return ErrPortBusy
	}
	m.attached[port] = d
	m.logger.Info("device attached", "port", port+1, "name", d.Name())
	return nil
}

// Detach removes an attached device. It does not close it.
func (m *Manager) Detach(d Device) {
	for port, a := range m.attached {
		if a == d {
			m.attached[port] = nil
			m.logger.Info("device detached", "port", port+1, "name", d.Name())
		}
	}
}

// Update runs one input frame: keyboard events first, then joysticks, then
// commit.
func (m *Manager) Update() {
	m.ports.SetAccess(input.SourceKeyboard)
	if m.keyboard != nil {
		m.keyboard.Update(m.ports)
	}

	m.ports.SetAccess(input.SourceJoystick)
	for _, b := range m.backends {
		if p, ok := b.(Pumper); ok {
			p.Pump()
		}
	}
	for _, d := range m.devices {
		d.UpdateState()
	}
	for port := range input.NumPorts {
		d := m.Device(port)
		if d != nil && d == m.attached[port] {
			d.UpdateState()
		}
		for i := range input.MaxKeys {
			var v int32
			if d != nil {
				v = d.GetInput(i)
			}
			m.ports.Set(port, input.Key(i), v)
		}
	}

	m.ports.Commit()
}

// SetEffect forwards a rumble command to the device on a 0-based port.
func (m *Manager) SetEffect(port, motor int, intensity uint16) {
	if d := m.Device(port); d != nil {
		d.SetEffect(motor, intensity)
	}
}

func (m *Manager) closeDevices() {
	for _, d := range m.devices {
		if err := d.Close(); err != nil {
			m.logger.Warn("close device", "name", d.Name(), "error", err)
		}
	}
	m.devices = nil
	m.bound = [input.NumPorts]Device{}
}

// Close closes every device and backend.
func (m *Manager) Close() error {
	m.closeDevices()
	var errs []error
	for _, b := range m.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", b.Name(), err))
		}
	}
	m.backends = nil
	return errors.Join(errs...)
}
