package bridge_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sio2pad/internal/bridge"
	"github.com/Alia5/sio2pad/pad"
	th "github.com/Alia5/sio2pad/internal/testing"
)

type rw struct {
	*bytes.Reader
	out bytes.Buffer
}

func (r *rw) Write(p []byte) (int, error) { return r.out.Write(p) }

func TestTransact(t *testing.T) {
	tests := []struct {
		name     string
		req      []byte
		expected []byte
		err      error
	}{
		{
			name:     "digital poll on port 1",
			req:      []byte{1, 5, 0x01, pad.CmdReadDataAndVibrate, 0, 0, 0},
			expected: []byte{5, 0xFF, pad.ModeDigital, 0x5A, 0xFF, 0xFF},
		},
		{
			name:     "port 2",
			req:      []byte{2, 3, 0x01, pad.CmdReadDataAndVibrate, 0},
			expected: []byte{3, 0xFF, pad.ModeDigital, 0x5A},
		},
		{
			name: "bad port",
			req:  []byte{3, 1, 0x01},
			err:  bridge.ErrBadPort,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := th.NewPlugin(t, nil)
			var out bytes.Buffer
			err := bridge.Transact(bytes.NewReader(tt.req), &out, p)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Zero(t, out.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Bytes())
		})
	}
}

func TestServe(t *testing.T) {
	p := th.NewPlugin(t, nil)
	conn := &rw{Reader: bytes.NewReader([]byte{
		1, 3, 0x01, pad.CmdReadDataAndVibrate, 0,
		9, 1, 0x01,
		2, 2, 0x01, pad.CmdReadDataAndVibrate,
	})}

	require.NoError(t, bridge.Serve(context.Background(), conn, p, slog.New(slog.DiscardHandler)))
	assert.Equal(t, []byte{3, 0xFF, pad.ModeDigital, 0x5A, 2, 0xFF, pad.ModeDigital}, conn.out.Bytes())
}
