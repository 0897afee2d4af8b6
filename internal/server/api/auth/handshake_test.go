package auth_test

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sio2pad/internal/server/api/auth"
)

type result struct {
	session []byte
	err     error
}

// pair runs both handshake sides over a pipe and returns the server side
// conn and both results.
func pair(t *testing.T, clientPwd, serverPwd string) (net.Conn, net.Conn, result, result) {
	t.Helper()
	ck, err := auth.DeriveKey(clientPwd)
	require.NoError(t, err)
	sk, err := auth.DeriveKey(serverPwd)
	require.NoError(t, err)

	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	srvCh := make(chan result, 1)
	go func() {
		r := bufio.NewReader(server)
		ok, err := auth.IsHandshake(r)
		if err != nil || !ok {
			srvCh <- result{err: err}
			return
		}
		s, err := auth.Accept(r, server, sk)
		if err != nil {
			server.Close()
		}
		srvCh <- result{s, err}
	}()

	s, err := auth.Dial(client, client, ck)
	return client, server, result{s, err}, <-srvCh
}

func TestHandshake(t *testing.T) {
	_, _, c, s := pair(t, "hunter2", "hunter2")
	require.NoError(t, c.err)
	require.NoError(t, s.err)
	assert.Len(t, c.session, 32)
	assert.Equal(t, c.session, s.session)
}

func TestHandshakeWrongPassword(t *testing.T) {
	_, _, c, s := pair(t, "hunter2", "hunter3")
	assert.ErrorIs(t, s.err, auth.ErrUnauthorized)
	assert.ErrorIs(t, c.err, auth.ErrUnauthorized)
}

func TestIsHandshake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
		err      error
	}{
		{name: "magic", input: auth.Magic + "rest", expected: true},
		{name: "plain request", input: "pad/list\x00"},
		{name: "too short", input: "pa", err: io.EOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(bytes.NewBufferString(tt.input))
			ok, err := auth.IsHandshake(r)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.Equal(t, len(tt.input), r.Buffered(), "peek must not consume")
		})
	}
}

func TestAcceptRejectsEmptyKey(t *testing.T) {
	_, err := auth.Accept(bufio.NewReader(bytes.NewBufferString(auth.Magic)), io.Discard, nil)
	assert.ErrorIs(t, err, auth.ErrEmptyPassword)
}

func TestSealedConn(t *testing.T) {
	client, server, c, s := pair(t, "hunter2", "hunter2")
	require.NoError(t, c.err)
	require.NoError(t, s.err)

	cc, err := auth.Seal(client, c.session)
	require.NoError(t, err)
	sc, err := auth.Seal(server, s.session)
	require.NoError(t, err)

	msg := bytes.Repeat([]byte("pad/list\x00"), 100)
	go func() {
		_, _ = cc.Write(msg[:400])
		_, _ = cc.Write(msg[400:])
	}()
	got := make([]byte, len(msg))
	_, err = io.ReadFull(sc, got)
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	// a peer with a different session key cannot read the records
	other, err := auth.Seal(server, bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	go func() { _, _ = cc.Write([]byte("x")) }()
	_, err = other.Read(make([]byte, 8))
	assert.Error(t, err)
}

func TestSealRejectsBadKey(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	_, err := auth.Seal(a, []byte{1, 2, 3})
	assert.Error(t, err)
}
