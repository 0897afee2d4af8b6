//go:build linux

package joydev

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/input"
)

const nameLen = 128

// _IOC encoding, as in <asm-generic/ioctl.h>.
func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<30 | size<<16 | typ<<8 | nr)
}

const iocRead = 2

var (
	jsiocgaxes    = ioc(iocRead, 'j', 0x11, 1)
	jsiocgbuttons = ioc(iocRead, 'j', 0x12, 1)
	jsiocgname    = ioc(iocRead, 'j', 0x13, nameLen)
)

func init() {
	device.RegisterBackend("joydev", Open)
}

// Backend lists /dev/input/js* nodes.
type Backend struct {
	glob   string
	opts   device.Options
	logger *slog.Logger
}

func Open(o device.Options) (device.Backend, error) {
	return &Backend{
		glob:   "/dev/input/js*",
		opts:   o,
		logger: o.Logger.With("backend", "joydev"),
	}, nil
}

func (b *Backend) Name() string { return "joydev" }

func (b *Backend) Enumerate() ([]device.Device, error) {
	paths, err := filepath.Glob(b.glob)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var devs []device.Device
	for _, p := range paths {
		js, err := openJoystick(p, b.opts, b.logger)
		if err != nil {
			b.logger.Debug("skip joystick", "path", p, "error", err)
			continue
		}
		devs = append(devs, js)
	}
	return devs, nil
}

func (b *Backend) Close() error { return nil }

// Joystick is one open js node.
type Joystick struct {
	fd      int
	path    string
	name    string
	axes    int
	buttons int

	layout      *Layout
	state       State
	sensitivity int32
	deadZone    int32
	logger      *slog.Logger
}

func openJoystick(path string, o device.Options, logger *slog.Logger) (*Joystick, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var axes, buttons uint8
	name := make([]byte, nameLen)
	if err := ioctl(fd, jsiocgaxes, unsafe.Pointer(&axes)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("query axes: %w", err)
	}
	if err := ioctl(fd, jsiocgbuttons, unsafe.Pointer(&buttons)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("query buttons: %w", err)
	}
	if err := ioctl(fd, jsiocgname, unsafe.Pointer(&name[0])); err != nil {
		copy(name, "Unknown joystick")
	}
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	js := &Joystick{
		fd:          fd,
		path:        path,
		name:        string(name),
		axes:        int(axes),
		buttons:     int(buttons),
		layout:      &XpadLayout,
		sensitivity: o.Sensitivity,
		deadZone:    o.DeadZone,
		logger:      logger,
	}
	logger.Info("joystick", "path", path, "name", js.name, "axes", axes, "buttons", buttons)
	return js, nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (j *Joystick) Name() string { return j.name }

// UID combines the device name with its node so two identical pads stay
// distinguishable.
func (j *Joystick) UID() string {
	return fmt.Sprintf("joydev:%s:%s", j.name, filepath.Base(j.path))
}

// UpdateState drains every queued js_event.
func (j *Joystick) UpdateState() {
	var buf [EventSize * 32]byte
	for {
		n, err := unix.Read(j.fd, buf[:])
		if err != nil {
			if !errors.Is(err, unix.EAGAIN) {
				j.logger.Warn("read joystick", "path", j.path, "error", err)
			}
			return
		}
		for off := 0; off+EventSize <= n; off += EventSize {
			e, _ := ParseEvent(buf[off : off+EventSize])
			j.state.Apply(e)
		}
		if n < len(buf) {
			return
		}
	}
}

func (j *Joystick) GetInput(i int) int32 {
	return j.layout.Read(&j.state, input.Key(i), j.sensitivity, j.deadZone)
}

// SetEffect is a no-op. The js interface has no force feedback.
func (j *Joystick) SetEffect(int, uint16) {}

func (j *Joystick) Close() error {
	return unix.Close(j.fd)
}
