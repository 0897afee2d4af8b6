package api_test

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sio2pad/apiclient"
	"github.com/Alia5/sio2pad/apitypes"
	"github.com/Alia5/sio2pad/internal/server/api"
	th "github.com/Alia5/sio2pad/internal/testing"
)

func echo() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		res.JSON = fmt.Sprintf(`{"id":%q,"payload":%q}`, req.Params["id"], req.Payload)
		return nil
	}
}

func TestDispatch(t *testing.T) {
	addr := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.Register("echo/{id}", echo())
		r.Register("fail", func(*api.Request, *api.Response, *slog.Logger) error {
			return api.ErrConflict("busy")
		})
		r.Register("crash", func(*api.Request, *api.Response, *slog.Logger) error {
			return errors.New("boom")
		})
	})

	tests := []struct {
		name     string
		cmd      string
		expected string
	}{
		{
			name:     "params and payload",
			cmd:      "echo/7 hello world",
			expected: `{"id":"7","payload":"hello world"}`,
		},
		{
			name:     "path is case insensitive",
			cmd:      "ECHO/x",
			expected: `{"id":"x","payload":""}`,
		},
		{
			name:     "payload after newline",
			cmd:      "echo/1\n{\"a\":1}",
			expected: `{"id":"1","payload":"{\"a\":1}"}`,
		},
		{
			name:     "api error keeps status",
			cmd:      "fail",
			expected: `{"status":409,"title":"Conflict","detail":"busy"}`,
		},
		{
			name:     "plain error becomes internal",
			cmd:      "crash",
			expected: `{"status":500,"title":"Internal Server Error","detail":"boom"}`,
		},
		{
			name:     "unknown path",
			cmd:      "nope/1",
			expected: `{"status":404,"title":"Not Found","detail":"unknown path: nope/1"}`,
		},
		{
			name:     "empty request",
			cmd:      "",
			expected: `{"status":400,"title":"Bad Request","detail":"empty path"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, th.ExecCmd(t, addr, tt.cmd))
		})
	}
}

func TestStreamSeesBytesSentWithPath(t *testing.T) {
	got := make(chan string, 1)
	addr := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.RegisterStream("pipe/{name}", func(conn net.Conn, params map[string]string, logger *slog.Logger) error {
			b := make([]byte, 4)
			if _, err := io.ReadFull(conn, b); err != nil {
				return err
			}
			got <- params["name"] + ":" + string(b)
			_, err := conn.Write([]byte("pong"))
			return err
		})
	})

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write([]byte("pipe/a\x00ping"))
	require.NoError(t, err)

	select {
	case s := <-got:
		assert.Equal(t, "a:ping", s)
	case <-time.After(time.Second):
		t.Fatal("stream handler not called")
	}
	reply := make([]byte, 4)
	_, err = io.ReadFull(c, reply)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(reply))
}

func TestStreamHandlerErrorIsReported(t *testing.T) {
	addr := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.RegisterStream("s", func(net.Conn, map[string]string, *slog.Logger) error {
			return api.ErrNotFound("no such port")
		})
	})
	assert.Equal(t, `{"status":404,"title":"Not Found","detail":"no such port"}`, th.ExecCmd(t, addr, "s"))
}

func TestAuth(t *testing.T) {
	addr := th.StartAPIServer(t, api.ServerConfig{Password: "s3cret"}, func(r *api.Router) {
		r.Register("echo/{id}", echo())
	})

	t.Run("plain client is refused", func(t *testing.T) {
		assert.Equal(t, `{"status":401,"title":"Unauthorized","detail":"password required"}`, th.ExecCmd(t, addr, "echo/1"))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := apiclient.NewTransportWithPassword(addr, "wrong").Do("echo/{id}", nil, map[string]string{"id": "1"})
		var apiErr *apitypes.ApiError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 401, apiErr.Status)
	})

	t.Run("right password", func(t *testing.T) {
		line, err := apiclient.NewTransportWithPassword(addr, "s3cret").Do("echo/{id}", "hi", map[string]string{"id": "2"})
		require.NoError(t, err)
		assert.Equal(t, `{"id":"2","payload":"hi"}`, line)
	})
}

func TestConnectionTimeout(t *testing.T) {
	addr := th.StartAPIServer(t, api.ServerConfig{ConnectionTimeout: 50 * time.Millisecond}, nil)
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()

	_ = c.SetReadDeadline(time.Now().Add(time.Second))
	_, err = bufio.NewReader(c).ReadByte()
	assert.ErrorIs(t, err, io.EOF, "server should drop an idle connection")
}
