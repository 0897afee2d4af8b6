package api_test

import (
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/sio2pad/internal/server/api"
)

func TestRouterMatch(t *testing.T) {
	r := api.NewRouter()
	r.Register("pad/list", func(*api.Request, *api.Response, *slog.Logger) error { return nil })
	r.Register("pad/{port}/slot", func(*api.Request, *api.Response, *slog.Logger) error { return nil })
	r.RegisterStream("pad/{port}/stream", func(net.Conn, map[string]string, *slog.Logger) error { return nil })

	tests := []struct {
		name   string
		path   string
		found  bool
		params map[string]string
	}{
		{name: "static", path: "pad/list", found: true, params: map[string]string{}},
		{name: "placeholder", path: "pad/2/slot", found: true, params: map[string]string{"port": "2"}},
		{name: "wrong length", path: "pad/2/slot/x"},
		{name: "stream route is separate", path: "pad/1/stream"},
		{name: "unknown", path: "ping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, params := r.Match(tt.path)
			assert.Equal(t, tt.found, h != nil)
			assert.Equal(t, tt.params, params)
		})
	}

	h, params := r.MatchStream("pad/1/stream")
	assert.NotNil(t, h)
	assert.Equal(t, map[string]string{"port": "1"}, params)
}
