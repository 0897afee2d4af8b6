// Package config holds the pad configuration and its on-disk formats.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/sio2pad/device/keyboard"
	"github.com/Alia5/sio2pad/input"
)

const (
	// MaxFFIntensity is the largest accepted ff_intensity.
	MaxFFIntensity uint32 = 0x7FFF
	// DefaultSensibility is the stick and mouse sensitivity in percent.
	DefaultSensibility int32 = 100
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid pad config")

// Options are the per pad switches.
type Options struct {
	ForceFeedback bool `json:"forcefeedback" yaml:"forcefeedback" toml:"forcefeedback"`
	ReverseLX     bool `json:"reverse_lx" yaml:"reverse_lx" toml:"reverse_lx"`
	ReverseLY     bool `json:"reverse_ly" yaml:"reverse_ly" toml:"reverse_ly"`
	ReverseRX     bool `json:"reverse_rx" yaml:"reverse_rx" toml:"reverse_rx"`
	ReverseRY     bool `json:"reverse_ry" yaml:"reverse_ry" toml:"reverse_ry"`
	MouseL        bool `json:"mouse_l" yaml:"mouse_l" toml:"mouse_l"`
	MouseR        bool `json:"mouse_r" yaml:"mouse_r" toml:"mouse_r"`
}

// Pad configures one port.
type Pad struct {
	Enabled bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Options Options `json:"options" yaml:"options" toml:"options"`
	// Keys maps a key name (see keyboard.ParseKeysym) to a button name.
	Keys   map[string]string `json:"keys" yaml:"keys" toml:"keys"`
	JoyUID string            `json:"joy_uid" yaml:"joy_uid" toml:"joy_uid"`
}

// Config is PADconf.
type Config struct {
	FFIntensity   uint32 `json:"ff_intensity" yaml:"ff_intensity" toml:"ff_intensity"`
	Sensibility   int32  `json:"sensibility" yaml:"sensibility" toml:"sensibility"`
	MouseDeadZone int32  `json:"mouse_deadzone" yaml:"mouse_deadzone" toml:"mouse_deadzone"`
	DualShock2    bool   `json:"dualshock2" yaml:"dualshock2" toml:"dualshock2"`
	Pads          []Pad  `json:"pads" yaml:"pads" toml:"pads"`
	Multitap      []bool `json:"multitap" yaml:"multitap" toml:"multitap"`
	// Log dumps every pad transaction to stderr when no raw log file is set.
	Log bool `json:"log" yaml:"log" toml:"log"`
	// Backends lists the host input APIs tried in order.
	Backends []string `json:"backends" yaml:"backends" toml:"backends"`
}

// Default returns the configuration of a fresh install: pad 1 on the
// keyboard, pad 2 enabled but unbound.
func Default() *Config {
	keys := make(map[string]string)
	for sym, k := range keyboard.DefaultKeymap() {
		keys[keyboard.Name(sym)] = k.String()
	}
	return &Config{
		FFIntensity:   MaxFFIntensity,
		Sensibility:   DefaultSensibility,
		MouseDeadZone: keyboard.MouseDeadZone,
		DualShock2:    true,
		Pads: []Pad{
			{Enabled: true, Options: Options{ForceFeedback: true}, Keys: keys},
			{Enabled: true, Options: Options{ForceFeedback: true}, Keys: map[string]string{}},
		},
		Multitap: []bool{false, false},
		Backends: []string{"sdl", "joydev"},
	}
}

// Validate normalises the pad lists to one entry per port and checks every
// field.
func (c *Config) Validate() error {
	if c.FFIntensity > MaxFFIntensity {
		return fmt.Errorf("%w: ff_intensity %#x above %#x", ErrInvalid, c.FFIntensity, MaxFFIntensity)
	}
	if c.Sensibility < 1 {
		return fmt.Errorf("%w: sensibility %d below 1", ErrInvalid, c.Sensibility)
	}
	if c.MouseDeadZone < 0 {
		return fmt.Errorf("%w: negative mouse_deadzone", ErrInvalid)
	}
	if len(c.Pads) > input.NumPorts {
		return fmt.Errorf("%w: %d pads configured, at most %d", ErrInvalid, len(c.Pads), input.NumPorts)
	}
	if len(c.Multitap) > input.NumPorts {
		return fmt.Errorf("%w: %d multitap entries, at most %d", ErrInvalid, len(c.Multitap), input.NumPorts)
	}
	for len(c.Pads) < input.NumPorts {
		c.Pads = append(c.Pads, Pad{})
	}
	for len(c.Multitap) < input.NumPorts {
		c.Multitap = append(c.Multitap, false)
	}
	for i := range c.Pads {
		if _, err := c.Keymap(i); err != nil {
			return err
		}
	}
	return nil
}

// Keymap resolves the key bindings of a 0-based port.
func (c *Config) Keymap(port int) (map[uint32]input.Key, error) {
	if port < 0 || port >= len(c.Pads) {
		return nil, nil
	}
	out := make(map[uint32]input.Key, len(c.Pads[port].Keys))
	for name, button := range c.Pads[port].Keys {
		sym, err := keyboard.ParseKeysym(name)
		if err != nil {
			return nil, fmt.Errorf("%w: pad %d: %w", ErrInvalid, port+1, err)
		}
		k, err := input.ParseKey(button)
		if err != nil {
			return nil, fmt.Errorf("%w: pad %d key %s: %w", ErrInvalid, port+1, name, err)
		}
		out[sym] = k
	}
	return out, nil
}

// Keyboard builds the keyboard device configuration.
func (c *Config) Keyboard() (keyboard.Config, error) {
	kc := keyboard.Config{Sensitivity: c.Sensibility, DeadZone: c.MouseDeadZone}
	for port := range input.NumPorts {
		km, err := c.Keymap(port)
		if err != nil {
			return keyboard.Config{}, err
		}
		kc.Keymaps[port] = km
		if port < len(c.Pads) {
			o := c.Pads[port].Options
			kc.Mouse[port] = keyboard.Mouse{Left: o.MouseL, Right: o.MouseR}
		}
	}
	return kc, nil
}

// Reversal returns the stick reversal of a 0-based port.
func (c *Config) Reversal(port int) input.Reversal {
	if port < 0 || port >= len(c.Pads) {
		return input.Reversal{}
	}
	o := c.Pads[port].Options
	return input.Reversal{LX: o.ReverseLX, LY: o.ReverseLY, RX: o.ReverseRX, RY: o.ReverseRY}
}

// UIDs returns the joy_uid of every port.
func (c *Config) UIDs() [input.NumPorts]string {
	var out [input.NumPorts]string
	for i := range min(len(c.Pads), input.NumPorts) {
		out[i] = c.Pads[i].JoyUID
	}
	return out
}

// Enabled reports whether a pad is plugged in at a 0-based port and slot.
// Slots other than 0 need a multitap.
func (c *Config) Enabled(port, slot int) bool {
	if port < 0 || port >= len(c.Pads) || !c.Pads[port].Enabled {
		return false
	}
	return slot == 0 || (port < len(c.Multitap) && c.Multitap[port])
}

// SetKey binds a key to a button on a 0-based port, replacing any previous
// key for that button.
func (c *Config) SetKey(port int, key string, button input.Key) error {
	if port < 0 || port >= len(c.Pads) {
		return fmt.Errorf("%w: pad %d", ErrInvalid, port+1)
	}
	sym, err := keyboard.ParseKeysym(key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	p := &c.Pads[port]
	if p.Keys == nil {
		p.Keys = make(map[string]string)
	}
	for name, b := range p.Keys {
		if b == button.String() {
			delete(p.Keys, name)
		}
	}
	p.Keys[keyboard.Name(sym)] = button.String()
	return nil
}

// Format is an on-disk encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension. Unknown extensions are
// read as yaml.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Decode parses data over the defaults and validates the result. Lists in
// the file replace the default lists as a whole.
func Decode(data []byte, f Format) (*Config, error) {
	c := Default()
	var err error
	switch f {
	case FormatJSON:
		var tree map[string]any
		if err = json.Unmarshal(data, &tree); err == nil {
			err = decodeTree(tree, c)
		}
	case FormatTOML:
		var tree *toml.Tree
		if tree, err = toml.LoadBytes(data); err == nil {
			err = decodeTree(tree.ToMap(), c)
		}
	default:
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s config: %w", f, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// decodeTree re-encodes a generic tree as yaml so every format shares the
// yaml decoder and its overlay rules.
func decodeTree(tree map[string]any, c *Config) error {
	y, err := yaml.Marshal(tree)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(y, c)
}

// Encode renders c in format f.
func (c *Config) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(c, "", "  ")
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Order(toml.OrderPreserve).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return yaml.Marshal(c)
	}
}

// Load reads a config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := c.Encode(FormatFor(path))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// BoundKeys lists the bindings of a 0-based port sorted by button order.
func (c *Config) BoundKeys(port int) []string {
	km, _ := c.Keymap(port)
	type binding struct {
		sym uint32
		key input.Key
	}
	var bs []binding
	for sym, k := range km {
		bs = append(bs, binding{sym, k})
	}
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].key != bs[j].key {
			return bs[i].key < bs[j].key
		}
		return bs[i].sym < bs[j].sym
	})
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.key.String() + "=" + keyboard.Name(b.sym)
	}
	return out
}
