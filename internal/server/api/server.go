// Package api serves the pad plugin over a small TCP protocol.
//
// A request is "<path>[<whitespace><payload>]\0". Plain routes answer with
// one JSON line and close; stream routes keep the connection for binary
// frames in both directions. With a password set, every connection starts
// with the auth handshake and runs sealed afterwards.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Alia5/sio2pad/internal/server/api/auth"
)

// Server accepts API connections and dispatches them through its Router.
type Server struct {
	config ServerConfig
	logger *slog.Logger
	router *Router

	key []byte
	ln  net.Listener
	wg  sync.WaitGroup
}

// New creates an API server. Handlers are added through Router before Start.
func New(config ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		config: config,
		logger: logger,
		router: NewRouter(),
	}
}

// Router returns the router so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound address once started.
func (a *Server) Addr() string {
	if a.ln == nil {
		return a.config.Addr
	}
	return a.ln.Addr().String()
}

// Start listens on the configured address and serves in the background.
func (a *Server) Start() error {
	if a.config.Password != "" {
		key, err := auth.DeriveKey(a.config.Password)
		if err != nil {
			return fmt.Errorf("derive API key: %w", err)
		}
		a.key = key
	}
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String(), "auth", a.key != nil)
	a.wg.Add(1)
	go a.serve()
	return nil
}

// Close stops accepting connections. Open streams end when their peer
// disconnects.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
	a.wg.Wait()
}

func (a *Server) serve() {
	defer a.wg.Done()
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
			} else {
				a.logger.Error("API accept error", "error", err)
			}
			return
		}
		go a.handleConn(c)
	}
}

func writeError(w io.Writer, err error) {
	b, _ := json.Marshal(WrapError(err))
	fmt.Fprintf(w, "%s\n", b)
}

// bufferedConn reads through the request reader so bytes the client sent
// right after the path reach the stream handler.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

// splitRequest separates the path from the payload at the first whitespace.
func splitRequest(req string) (path, payload string) {
	i := strings.IndexFunc(req, unicode.IsSpace)
	if i < 0 {
		return req, ""
	}
	return req[:i], req[i+1:]
}

func (a *Server) handleConn(raw net.Conn) {
	defer raw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := a.logger.With("remote", raw.RemoteAddr().String())
	if a.config.ConnectionTimeout > 0 {
		_ = raw.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}

	var conn net.Conn = raw
	r := bufio.NewReader(raw)
	if a.key != nil {
		ok, err := auth.IsHandshake(r)
		if err != nil || !ok {
			logger.Warn("api connection without handshake")
			writeError(raw, ErrUnauthorized("password required"))
			return
		}
		session, err := auth.Accept(r, raw, a.key)
		if err != nil {
			logger.Warn("api handshake failed", "error", err)
			writeError(raw, err)
			return
		}
		sealed, err := auth.Seal(bufferedConn{raw, r}, session)
		if err != nil {
			logger.Error("api seal", "error", err)
			return
		}
		conn = sealed
		r = bufio.NewReader(sealed)
	}

	line, err := r.ReadString('\x00')
	if err != nil {
		if errors.Is(err, io.EOF) {
			logger.Error("api incomplete request (no null terminator)")
		} else {
			logger.Error("read api data", "error", err)
		}
		return
	}
	path, payload := splitRequest(strings.TrimSuffix(line, "\x00"))
	if path == "" {
		logger.Error("api empty path")
		writeError(conn, ErrBadRequest("empty path"))
		return
	}
	path = strings.ToLower(path)
	logger.Debug("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		res := &Response{}
		if err := h(&Request{Ctx: ctx, Params: params, Payload: payload}, res, logger); err != nil {
			logger.Error("api handler error", "path", path, "error", err)
			writeError(conn, err)
			return
		}
		fmt.Fprintf(conn, "%s\n", res.JSON)
		return
	}

	if sh, params := a.router.MatchStream(path); sh != nil {
		_ = raw.SetReadDeadline(time.Time{})
		logger.Info("api stream begin", "path", path)
		if err := sh(bufferedConn{conn, r}, params, logger); err != nil {
			logger.Error("api stream handler error", "path", path, "error", err)
			writeError(conn, err)
		}
		logger.Info("api stream end", "path", path)
		return
	}

	logger.Error("api unknown path", "path", path)
	writeError(conn, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}
