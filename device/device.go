// Package device defines the host input sources that feed the pad ports and
// the manager that polls them every frame.
package device

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Device is one host controller.
type Device interface {
	// Name is a human readable description.
	Name() string
	// UID identifies the physical controller across runs. It is matched
	// against the joy_uid config values.
	UID() string
	// UpdateState drains pending host events without blocking.
	UpdateState()
	// GetInput returns the state of a virtual button index. Buttons report a
	// pressure up to 0xFF, stick directions a signed deflection in
	// ±32766 shared by both directions of an axis. 0 means released.
	GetInput(i int) int32
	// SetEffect drives a rumble motor. Intensity 0 stops it.
	SetEffect(motor int, intensity uint16)
	Close() error
}

// Backend enumerates the devices of one host API.
type Backend interface {
	Name() string
	Enumerate() ([]Device, error)
	Close() error
}

// Pumper is implemented by backends whose devices share one host event
// queue. The manager pumps it once per frame before reading any device.
type Pumper interface {
	Pump()
}

// Options is handed to every backend factory.
type Options struct {
	Logger *slog.Logger
	// Sensitivity scales stick deflection, in percent.
	Sensitivity int32
	// DeadZone is the stick deflection below which a stick reads 0.
	DeadZone int32
}

// DefaultDeadZone is the stick dead zone of gamepad backends.
const DefaultDeadZone int32 = 1500

// BackendFactory opens a backend. It fails when the host API is unavailable.
type BackendFactory func(o Options) (Backend, error)

var (
	backendRegistry   = make(map[string]BackendFactory)
	backendRegistryMu sync.RWMutex
)

// RegisterBackend makes a backend available by name. Backends call this from
// their init functions.
func RegisterBackend(name string, f BackendFactory) {
	backendRegistryMu.Lock()
	defer backendRegistryMu.Unlock()
	backendRegistry[name] = f
}

// ListBackends returns the registered backend names in sorted order.
func ListBackends() []string {
	backendRegistryMu.RLock()
	defer backendRegistryMu.RUnlock()
	names := make([]string, 0, len(backendRegistry))
	for name := range backendRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenBackend opens a registered backend.
func OpenBackend(name string, o Options) (Backend, error) {
	backendRegistryMu.RLock()
	f := backendRegistry[name]
	backendRegistryMu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return f(o)
}

// OpenBackends opens every name that opens successfully. Failures are logged
// and skipped so the keyboard keeps working on hosts without joysticks.
func OpenBackends(names []string, o Options) []Backend {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	var out []Backend
	for _, name := range names {
		b, err := OpenBackend(name, o)
		if err != nil {
			o.Logger.Warn("input backend unavailable", "backend", name, "error", err)
			continue
		}
		out = append(out, b)
	}
	return out
}

// ScaleStick applies sensitivity (percent) and dead zone to a raw signed
// stick reading.
func ScaleStick(raw, sensitivity, deadZone int32) int32 {
	v := int32(int64(raw) * int64(sensitivity) / 100)
	if max(v, -v) <= deadZone {
		return 0
	}
	return v
}

// ScaleTrigger converts a 0..32767 trigger reading to a button pressure.
func ScaleTrigger(raw, deadZone int32) int32 {
	if raw <= deadZone {
		return 0
	}
	return raw / 128
}
