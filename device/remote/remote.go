// Package remote implements a device fed over a network stream.
package remote

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Alia5/sio2pad/input"
)

const (
	// InputFrameSize is the size of one client to server frame.
	InputFrameSize = input.MaxKeys * 4
	// RumbleFrameSize is the size of one server to client frame.
	RumbleFrameSize = 4
)

// InputFrame carries the GetInput value of every virtual button, as
// little endian int32 in key order.
type InputFrame [input.MaxKeys]int32

func (f *InputFrame) MarshalBinary() ([]byte, error) {
	b := make([]byte, InputFrameSize)
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(v))
	}
	return b, nil
}

func (f *InputFrame) UnmarshalBinary(b []byte) error {
	if len(b) < InputFrameSize {
		return io.ErrUnexpectedEOF
	}
	for i := range f {
		f[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return nil
}

// RumbleFrame reports both motor intensities. Motor 0 is the large motor.
type RumbleFrame struct {
	Large, Small uint16
}

func (r *RumbleFrame) MarshalBinary() ([]byte, error) {
	b := make([]byte, RumbleFrameSize)
	binary.LittleEndian.PutUint16(b[0:2], r.Large)
	binary.LittleEndian.PutUint16(b[2:4], r.Small)
	return b, nil
}

func (r *RumbleFrame) UnmarshalBinary(b []byte) error {
	if len(b) < RumbleFrameSize {
		return io.ErrUnexpectedEOF
	}
	r.Large = binary.LittleEndian.Uint16(b[0:2])
	r.Small = binary.LittleEndian.Uint16(b[2:4])
	return nil
}

// Device holds the last frame a client sent. It is written by the stream
// goroutine and read by the frame loop.
type Device struct {
	name string

	mu       sync.Mutex
	frame    InputFrame
	rumble   RumbleFrame
	onRumble func(RumbleFrame)
}

func New(name string) *Device { return &Device{name: name} }

func (d *Device) Name() string { return d.name }
func (d *Device) UID() string  { return "remote:" + d.name }
func (d *Device) UpdateState() {}

func (d *Device) GetInput(i int) int32 {
	if !input.Key(i).Valid() {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame[i]
}

// SetEffect forwards motor changes to the rumble callback. Repeated values
// are not resent.
func (d *Device) SetEffect(motor int, intensity uint16) {
	d.mu.Lock()
	r := d.rumble
	switch motor {
	case 0:
		r.Large = intensity
	case 1:
		r.Small = intensity
	default:
		d.mu.Unlock()
		return
	}
	changed := r != d.rumble
	d.rumble = r
	cb := d.onRumble
	d.mu.Unlock()

	if changed && cb != nil {
		cb(r)
	}
}

func (d *Device) Close() error { return nil }

// SetRumbleCallback sets the function called when a motor changes.
func (d *Device) SetRumbleCallback(fn func(RumbleFrame)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onRumble = fn
}

// Update replaces the input frame.
func (d *Device) Update(f InputFrame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = f
}

// Serve reads input frames from conn until the client disconnects and
// writes a rumble frame whenever a motor changes. The device reads as
// released once Serve returns.
func Serve(conn io.ReadWriter, dev *Device, logger *slog.Logger) error {
	var wmu sync.Mutex
	dev.SetRumbleCallback(func(r RumbleFrame) {
		data, _ := r.MarshalBinary()
		wmu.Lock()
		defer wmu.Unlock()
		if _, err := conn.Write(data); err != nil {
			logger.Error("failed to send rumble", "error", err)
		}
	})
	defer func() {
		dev.SetRumbleCallback(nil)
		dev.Update(InputFrame{})
	}()

	buf := make([]byte, InputFrameSize)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("client disconnected")
				return nil
			}
			return fmt.Errorf("read input frame: %w", err)
		}
		var f InputFrame
		if err := f.UnmarshalBinary(buf); err != nil {
			return fmt.Errorf("unmarshal input frame: %w", err)
		}
		dev.Update(f)
	}
}
