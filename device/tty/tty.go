package tty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/Alia5/sio2pad/device/keyboard"
)

// DefaultHold is how long a key stays pressed after its last byte.
// Terminals only report presses, so the first autorepeat must land inside
// this window to keep a key held.
const DefaultHold = 600 * time.Millisecond

// ErrInterrupted is returned by Run when Ctrl-C is read.
var ErrInterrupted = errors.New("interrupted")

// Source pushes key events read from a terminal.
type Source struct {
	r      io.Reader
	push   func(keyboard.Event)
	hold   time.Duration
	logger *slog.Logger

	now func() time.Time

	mu   sync.Mutex
	held map[uint32]time.Time
}

// NewSource reads r and pushes events to push. hold <= 0 uses DefaultHold.
func NewSource(r io.Reader, push func(keyboard.Event), hold time.Duration, logger *slog.Logger) *Source {
	if hold <= 0 {
		hold = DefaultHold
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{
		r:      r,
		push:   push,
		hold:   hold,
		logger: logger,
		now:    time.Now,
		held:   make(map[uint32]time.Time),
	}
}

// press reports a key byte. The first one emits KeyPress, later ones only
// extend the hold.
func (s *Source) press(sym uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.held[sym]; !ok {
		s.push(keyboard.Event{Kind: keyboard.KeyPress, Key: sym})
	}
	s.held[sym] = s.now().Add(s.hold)
}

// expire releases keys whose hold ran out.
func (s *Source) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for sym, until := range s.held {
		if !now.Before(until) {
			delete(s.held, sym)
			s.push(keyboard.Event{Kind: keyboard.KeyRelease, Key: sym})
		}
	}
}

// releaseAll releases every held key.
func (s *Source) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sym := range s.held {
		delete(s.held, sym)
		s.push(keyboard.Event{Kind: keyboard.KeyRelease, Key: sym})
	}
}

// Run reads until ctx is done, the reader fails or Ctrl-C arrives. Held
// keys are released on return.
func (s *Source) Run(ctx context.Context) error {
	type chunk struct {
		b   []byte
		err error
	}
	reads := make(chan chunk)
	go func() {
		for {
			buf := make([]byte, 64)
			n, err := s.r.Read(buf)
			select {
			case reads <- chunk{buf[:n], err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	defer s.releaseAll()

	tick := time.NewTicker(s.hold / 4)
	defer tick.Stop()

	var dec Decoder
	interrupted := false
	emit := func(sym uint32) {
		if sym == Interrupt {
			interrupted = true
			return
		}
		s.press(sym)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			s.expire()
		case c := <-reads:
			dec.Feed(c.b, emit)
			dec.Flush(emit)
			if interrupted {
				return ErrInterrupted
			}
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					return nil
				}
				return fmt.Errorf("read terminal: %w", c.err)
			}
		}
	}
}

// RunStdin puts stdin in raw mode for the duration of Run.
func RunStdin(ctx context.Context, push func(keyboard.Event), hold time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, old); err != nil {
			logger.Warn("restore terminal", "error", err)
		}
	}()
	return NewSource(os.Stdin, push, hold, logger).Run(ctx)
}
