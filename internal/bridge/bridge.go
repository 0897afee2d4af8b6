// Package bridge relays pad transactions from a microcontroller sitting on
// a real console's controller port.
//
// Each request is
//
//	port u8 | len u8 | bytes[len]
//
// and is answered with
//
//	len u8 | bytes[len]
//
// The first request byte opens the transaction on the port, each following
// byte is clocked through Poll.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Poller is the byte level pad interface.
type Poller interface {
	StartPoll(port int) uint8
	Poll(value uint8) uint8
}

// ErrBadPort is returned for a request naming a port other than 1 or 2.
var ErrBadPort = errors.New("bridge: bad port")

// Transact answers one request read from r on w.
func Transact(r io.Reader, w io.Writer, p Poller) error {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	port, n := int(hdr[0]), int(hdr[1])
	buf := make([]byte, 1+n)
	if _, err := io.ReadFull(r, buf[1:]); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	if port < 1 || port > 2 {
		return fmt.Errorf("%w %d", ErrBadPort, port)
	}

	buf[0] = uint8(n)
	for i, b := range buf[1:] {
		if i == 0 {
			buf[1] = p.StartPoll(port)
			continue
		}
		buf[1+i] = p.Poll(b)
	}
	_, err := w.Write(buf)
	return err
}

// Serve answers requests until rw reaches EOF or ctx is done. A request
// with a bad port is dropped and logged.
func Serve(ctx context.Context, rw io.ReadWriter, p Poller, logger *slog.Logger) error {
	var count uint64
	for ctx.Err() == nil {
		err := Transact(rw, rw, p)
		switch {
		case err == nil:
			count++
		case errors.Is(err, ErrBadPort):
			logger.Warn("bridge request dropped", "error", err)
		case errors.Is(err, io.EOF):
			logger.Info("bridge closed", "transactions", count)
			return nil
		default:
			return err
		}
	}
	return ctx.Err()
}
