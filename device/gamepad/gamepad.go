// Package gamepad reads controllers through SDL3 and drives their rumble
// motors.
package gamepad

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/input"
)

// rumbleMillis keeps a motor running between two frames. It is refreshed
// every frame while the console drives the motor.
const rumbleMillis = 250

func init() {
	device.RegisterBackend("sdl", Open)
}

// Backend owns the SDL library for the lifetime of its devices.
type Backend struct {
	lib    interface{ Unload() }
	opts   device.Options
	logger *slog.Logger

	once sync.Once
}

// Open loads SDL and initialises its gamepad subsystem.
func Open(o device.Options) (device.Backend, error) {
	lib := binsdl.Load()
	if err := sdl.Init(sdl.INIT_GAMEPAD); err != nil {
		lib.Unload()
		return nil, fmt.Errorf("init sdl gamepad: %w", err)
	}
	return &Backend{
		lib:    lib,
		opts:   o,
		logger: o.Logger.With("backend", "sdl"),
	}, nil
}

func (b *Backend) Name() string { return "sdl" }

// Pump refreshes the state of every open gamepad in one go.
func (b *Backend) Pump() { sdl.UpdateGamepads() }

// Enumerate opens every gamepad SDL knows about.
func (b *Backend) Enumerate() ([]device.Device, error) {
	sdl.UpdateGamepads()
	ids, err := sdl.GetGamepads()
	if err != nil {
		return nil, fmt.Errorf("list gamepads: %w", err)
	}

	devs := make([]device.Device, 0, len(ids))
	for _, id := range ids {
		pad, err := id.OpenGamepad()
		if err != nil {
			b.logger.Warn("open gamepad", "id", id, "error", err)
			continue
		}
		devs = append(devs, newGamepad(uint32(id), pad, b.opts, b.logger))
	}
	return devs, nil
}

func (b *Backend) Close() error {
	b.once.Do(func() {
		sdl.Quit()
		b.lib.Unload()
	})
	return nil
}

// sdlPad is the part of *sdl.Gamepad a Gamepad uses.
type sdlPad interface {
	reader
	Rumble(low, high uint16, durationMS uint32) error
	Close()
}

// Gamepad is one SDL gamepad.
type Gamepad struct {
	id          uint32
	pad         sdlPad
	sensitivity int32
	deadZone    int32
	logger      *slog.Logger

	motors [2]uint16
}

func newGamepad(id uint32, pad sdlPad, o device.Options, logger *slog.Logger) *Gamepad {
	return &Gamepad{
		id:          id,
		pad:         pad,
		sensitivity: o.Sensitivity,
		deadZone:    o.DeadZone,
		logger:      logger,
	}
}

func (g *Gamepad) Name() string { return fmt.Sprintf("SDL gamepad %d", g.id) }

// UID is the SDL instance id. It is stable while the controller stays
// plugged in.
func (g *Gamepad) UID() string { return fmt.Sprintf("sdl:%d", g.id) }

// UpdateState does nothing; Backend.Pump refreshes all pads at once.
func (g *Gamepad) UpdateState() {}

func (g *Gamepad) GetInput(i int) int32 {
	return readInput(g.pad, input.Key(i), g.sensitivity, g.deadZone)
}

// SetEffect maps motor 0 to the low frequency and motor 1 to the high
// frequency rumble.
func (g *Gamepad) SetEffect(motor int, intensity uint16) {
	if motor < 0 || motor >= len(g.motors) {
		return
	}
	g.motors[motor] = intensity
	if err := g.pad.Rumble(g.motors[0], g.motors[1], rumbleMillis); err != nil {
		g.logger.Debug("rumble", "id", g.id, "error", err)
	}
}

func (g *Gamepad) Close() error {
	g.pad.Close()
	return nil
}
