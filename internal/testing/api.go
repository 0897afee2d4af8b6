// Package testing holds helpers shared by the API tests.
package testing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/Alia5/sio2pad/device"
	"github.com/Alia5/sio2pad/internal/config"
	"github.com/Alia5/sio2pad/internal/server/api"
	"github.com/Alia5/sio2pad/plugin"
)

// NewPlugin returns an opened plugin using cfg (nil for defaults) and the
// given devices instead of any host backend.
func NewPlugin(t *testing.T, cfg *config.Config, devs ...device.Device) *plugin.Plugin {
	t.Helper()
	p, err := plugin.New(cfg, plugin.Options{Backends: []device.Backend{StaticBackend(devs)}})
	if err != nil {
		t.Fatalf("plugin: %v", err)
	}
	p.Init()
	p.Open()
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// StaticBackend enumerates a fixed device list.
type StaticBackend []device.Device

func (b StaticBackend) Name() string                        { return "static" }
func (b StaticBackend) Enumerate() ([]device.Device, error) { return b, nil }
func (b StaticBackend) Close() error                        { return nil }

// StartAPIServer starts an API server on a free loopback port and calls
// register so the test can add the handlers it needs. The server is closed
// when the test ends.
func StartAPIServer(t *testing.T, cfg api.ServerConfig, register func(r *api.Router)) string {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	srv := api.New(cfg, slog.New(slog.DiscardHandler))
	if register != nil {
		register(srv.Router())
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv.Addr()
}

// ExecCmd dials addr without auth, sends cmd with the null terminator and
// returns the first response line without its newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	_, _ = fmt.Fprintf(c, "%s\x00", cmd)
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}
	return strings.TrimRight(line, "\r\n")
}
