package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/sio2pad/apitypes"
	"github.com/Alia5/sio2pad/device/remote"
)

// ErrStreamClosed is returned by operations on a closed PadStream.
var ErrStreamClosed = errors.New("stream closed")

// PadStream feeds one pad port from the client. Input frames go out, rumble
// frames come back.
type PadStream struct {
	conn net.Conn
	r    *bufio.Reader
	Port int

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

// OpenStream attaches a remote device to a 1-based port. A refused attach
// (port busy, bad port) is reported as an *apitypes.ApiError.
func (c *Client) OpenStream(ctx context.Context, port int) (*PadStream, error) {
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(conn, "pad/%d/stream\x00", port); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	s := &PadStream{conn: conn, r: bufio.NewReader(conn), Port: port}

	// The server acknowledges an attach with an empty line and refuses it
	// with a problem+json line.
	if t := c.transport.cfg.ReadTimeout; t > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t))
	}
	line, err := s.r.ReadString('\n')
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	if line = strings.TrimSpace(line); line != "" {
		conn.Close()
		var apiErr apitypes.ApiError
		if json.Unmarshal([]byte(line), &apiErr) == nil && apiErr.Status != 0 {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("unexpected stream response %q", line)
	}
	return s, nil
}

// Send writes one input frame.
func (s *PadStream) Send(f remote.InputFrame) error {
	if s.isClosed() {
		return ErrStreamClosed
	}
	b, err := f.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = s.conn.Write(b)
	return err
}

// ReadRumble blocks for the next rumble frame.
func (s *PadStream) ReadRumble() (remote.RumbleFrame, error) {
	var r remote.RumbleFrame
	if s.isClosed() {
		return r, ErrStreamClosed
	}
	b := make([]byte, remote.RumbleFrameSize)
	if _, err := io.ReadFull(s.r, b); err != nil {
		return r, err
	}
	return r, r.UnmarshalBinary(b)
}

// Rumble delivers rumble frames on a channel until ctx ends or the stream
// fails. The error channel receives the reason and both channels close.
func (s *PadStream) Rumble(ctx context.Context, size int) (<-chan remote.RumbleFrame, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		panic("Rumble called twice on the same stream")
	}

	out := make(chan remote.RumbleFrame, size)
	errCh := make(chan error, 1)
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		defer close(out)
		defer close(errCh)
		for {
			r, err := s.ReadRumble()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case out <- r:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()
	return out, errCh
}

func (s *PadStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close detaches the remote device and stops any Rumble reader.
func (s *PadStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	return s.conn.Close()
}
