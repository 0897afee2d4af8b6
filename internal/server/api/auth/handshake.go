package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Alia5/sio2pad/apitypes"
)

// Wire layout:
//
//	client: Magic | nonce[32] | hmac(key, authCtx|nonce)[32]
//	server: "OK\0" | nonce[32]
//
// A server that rejects the client answers with a problem+json line instead.
const (
	Magic     = "sPAD\x00"
	NonceSize = 32
	authCtx   = "sio2pad-auth-v1"
	accepted  = "OK\x00"
)

// ErrUnauthorized is returned to clients that fail the challenge.
var ErrUnauthorized = &apitypes.ApiError{Status: 401, Title: "Unauthorized", Detail: "invalid password"}

// IsHandshake reports whether r starts with the handshake magic without
// consuming anything.
func IsHandshake(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(len(Magic))
	if err != nil {
		return false, err
	}
	return string(b) == Magic, nil
}

func proof(key, nonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(authCtx))
	mac.Write(nonce)
	return mac.Sum(nil)
}

func newNonce() ([]byte, error) {
	n := make([]byte, NonceSize)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return n, nil
}

// Dial runs the client side of the handshake and returns the session key.
func Dial(r io.Reader, w io.Writer, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyPassword
	}
	clientNonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	msg := make([]byte, 0, len(Magic)+NonceSize+sha256.Size)
	msg = append(msg, Magic...)
	msg = append(msg, clientNonce...)
	msg = append(msg, proof(key, clientNonce)...)
	if _, err := w.Write(msg); err != nil {
		return nil, fmt.Errorf("write handshake: %w", err)
	}

	status := make([]byte, len(accepted))
	if _, err := io.ReadFull(r, status); err != nil {
		if err == io.EOF {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(status) != accepted {
		rest, _ := io.ReadAll(r)
		line := strings.TrimSpace(string(append(status, rest...)))
		var apiErr apitypes.ApiError
		if json.Unmarshal([]byte(line), &apiErr) == nil && apiErr.Status != 0 {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("unexpected handshake response %q", line)
	}

	serverNonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, fmt.Errorf("read server nonce: %w", err)
	}
	return SessionKey(key, serverNonce, clientNonce), nil
}

// Accept runs the server side of the handshake. The magic must still be
// unread in r. On a bad proof nothing is written and ErrUnauthorized is
// returned so the caller can report it.
func Accept(r *bufio.Reader, w io.Writer, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyPassword
	}
	if _, err := r.Discard(len(Magic)); err != nil {
		return nil, fmt.Errorf("read handshake magic: %w", err)
	}
	buf := make([]byte, NonceSize+sha256.Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read client hello: %w", err)
	}
	clientNonce, clientProof := buf[:NonceSize], buf[NonceSize:]
	if !hmac.Equal(clientProof, proof(key, clientNonce)) {
		return nil, ErrUnauthorized
	}

	serverNonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(append([]byte(accepted), serverNonce...)); err != nil {
		return nil, fmt.Errorf("write handshake response: %w", err)
	}
	return SessionKey(key, serverNonce, clientNonce), nil
}
