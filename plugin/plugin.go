// Package plugin ties the pad protocol engine, the port states and the host
// input devices together behind the entry points an emulator calls.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/device/keyboard"
	"github.com/Alia5/sio2pad/input"
	"github.com/Alia5/sio2pad/internal/config"
	"github.com/Alia5/sio2pad/internal/log"
	"github.com/Alia5/sio2pad/pad"
)

// ErrNotOpen is returned by operations that need Open first.
var ErrNotOpen = errors.New("plugin is not open")

// Options configures a Plugin.
type Options struct {
	Logger *slog.Logger
	// Raw receives the byte dump of every transaction. Nil drops it, unless
	// the config enables the pad log.
	Raw log.RawLogger
	// Backends overrides the backends named in the config.
	Backends []device.Backend
}

// Plugin owns one emulated pad subsystem. Every entry point takes the frame
// lock, so a Plugin can be shared between the emulator thread and the API
// server.
type Plugin struct {
	mu sync.Mutex

	cfg      *config.Config
	logger   *slog.Logger
	ports    *input.Ports
	engine   *pad.Engine
	keyboard *keyboard.Keyboard
	manager  *device.Manager

	backends []device.Backend
	open     bool
}

// New builds a plugin for cfg. The config is validated and owned by the
// plugin afterwards.
func New(cfg *config.Config, opts Options) (*Plugin, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	raw := opts.Raw
	if raw == nil && cfg.Log {
		raw = log.NewRaw(os.Stderr)
	}

	p := &Plugin{
		cfg:      cfg,
		logger:   logger,
		ports:    input.NewPorts(),
		backends: opts.Backends,
	}
	kc, err := cfg.Keyboard()
	if err != nil {
		return nil, err
	}
	p.keyboard = keyboard.New(kc, logger.With("component", "keyboard"))
	p.manager = device.NewManager(p.ports, p.keyboard, logger.With("component", "devices"))
	p.engine = pad.NewEngine(
		[pad.NumPorts]pad.Source{p.ports.Port(0), p.ports.Port(1)},
		pad.Options{
			Enabled:    p.enabled,
			DualShock1: !cfg.DualShock2,
			Logger:     logger.With("component", "pad"),
			Raw:        raw,
		},
	)
	p.applyConfig(kc)
	return p, nil
}

func (p *Plugin) enabled(port, slot int) bool { return p.cfg.Enabled(port, slot) }

func (p *Plugin) applyConfig(kc keyboard.Config) {
	p.engine.SetDualShock1(!p.cfg.DualShock2)
	p.keyboard.SetConfig(kc)
	for port := range input.NumPorts {
		p.ports.Port(port).SetReversal(p.cfg.Reversal(port))
	}
	p.manager.SetUIDs(p.cfg.UIDs())
}

// Init resets every pad and port to power-on state.
func (p *Plugin) Init() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.ResetAll()
	p.ports.Reset()
	p.logger.Debug("pads reset")
}

// Open starts the host input backends and binds their devices to ports.
// Backends that fail to start are skipped.
func (p *Plugin) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		return
	}
	backends := p.backends
	if backends == nil {
		backends = device.OpenBackends(p.cfg.Backends, device.Options{
			Logger:      p.logger.With("component", "backend"),
			Sensitivity: p.cfg.Sensibility,
			DeadZone:    device.DefaultDeadZone,
		})
	}
	p.manager.SetBackends(backends...)
	p.manager.EnumerateDevices()
	p.open = true
	p.logger.Info("plugin opened", "backends", len(backends), "devices", len(p.manager.Devices()))
}

// Close stops the motors and releases every device and backend.
func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return nil
	}
	p.engine.StopVibrateAll()
	p.rumble()
	p.open = false
	p.backends = nil
	if err := p.manager.Close(); err != nil {
		return fmt.Errorf("close devices: %w", err)
	}
	return nil
}

// StartPoll begins a transaction on a 1-based port.
func (p *Plugin) StartPoll(port int) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.StartPoll(port)
}

// Poll clocks one byte of the open transaction.
func (p *Plugin) Poll(value uint8) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Poll(value)
}

// SetSlot selects a multitap slot. Port and slot are 1-based.
func (p *Plugin) SetSlot(port, slot int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.SetSlot(port, slot)
}

// QueryPadState returns the mode of the pad at a 1-based port and slot, or 0.
func (p *Plugin) QueryPadState(port, slot int) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.QueryPadState(port, slot)
}

// FreezeSize returns the size of a save state in format f.
func (p *Plugin) FreezeSize(f pad.Format) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.FreezeSize(f)
}

// Freeze serialises the protocol state.
func (p *Plugin) Freeze(f pad.Format) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Freeze(f)
}

// Thaw restores a save state in either format. A rejected state leaves the
// plugin untouched.
func (p *Plugin) Thaw(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.engine.Thaw(data); err != nil {
		return err
	}
	for port := range input.NumPorts {
		p.manager.SetEffect(port, pad.MotorLarge, 0)
		p.manager.SetEffect(port, pad.MotorSmall, 0)
	}
	p.rumble()
	return nil
}

// Update polls every input source, commits the port states and drives the
// rumble motors. Call it once per frame.
func (p *Plugin) Update() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.manager.Update()
	p.rumble()
}

func (p *Plugin) rumble() {
	p.engine.RumbleAll(func(port, motor int, value uint8) {
		if !p.cfg.Pads[port].Options.ForceFeedback {
			return
		}
		p.manager.SetEffect(port, motor, uint16(uint32(value)*p.cfg.FFIntensity/0xFF))
	})
}

// PushEvent queues a host keyboard or mouse event. It never blocks and is
// safe from any goroutine.
func (p *Plugin) PushEvent(ev keyboard.Event) { p.keyboard.Push(ev) }

// KeyEvent returns and clears the last key event seen by Update, for the
// emulator's own hotkeys.
func (p *Plugin) KeyEvent() keyboard.Event { return p.keyboard.LastEvent() }

// Do runs fn under the frame lock. fn may use the accessors below.
func (p *Plugin) Do(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

// Config returns the live config. Only use it inside Do.
func (p *Plugin) Config() *config.Config { return p.cfg }

// SetConfig validates and applies cfg. Only use it inside Do. Device
// backends keep running; UIDs are rebound at once.
func (p *Plugin) SetConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	kc, err := cfg.Keyboard()
	if err != nil {
		return err
	}
	p.cfg = cfg
	p.applyConfig(kc)
	return nil
}

// Engine returns the protocol engine. Only use it inside Do.
func (p *Plugin) Engine() *pad.Engine { return p.engine }

// Ports returns the port states. Only use it inside Do.
func (p *Plugin) Ports() *input.Ports { return p.ports }

// Manager returns the device manager. Only use it inside Do.
func (p *Plugin) Manager() *device.Manager { return p.manager }

// Attach plugs an externally fed device into a 0-based port ahead of any
// enumerated device.
func (p *Plugin) Attach(port int, d device.Device) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return ErrNotOpen
	}
	return p.manager.Attach(port, d)
}

// Detach unplugs a device added with Attach.
func (p *Plugin) Detach(d device.Device) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.manager.Detach(d)
}
