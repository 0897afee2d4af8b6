// Package auth implements the optional password protection of the API:
// a PBKDF2 stretched key, an HMAC challenge and a ChaCha20-Poly1305 framed
// connection keyed per session.
package auth

import (
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"
)

const (
	KeyLength  = 16
	alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	iterations = 100000
	salt       = "sio2pad-key-v1"
	sessionCtx = "sio2pad-session-v1"
)

var ErrEmptyPassword = errors.New("password cannot be empty")

// GenerateKey returns a random base62 password of KeyLength characters.
func GenerateKey() (string, error) {
	raw := make([]byte, KeyLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	for i, b := range raw {
		raw[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(raw), nil
}

// DeriveKey stretches password into a 32 byte key.
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	return pbkdf2.Key(sha256.New, password, []byte(salt), iterations, 32)
}

// SessionKey mixes the long-term key with both handshake nonces.
func SessionKey(key, serverNonce, clientNonce []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(serverNonce)
	h.Write(clientNonce)
	h.Write([]byte(sessionCtx))
	return h.Sum(nil)
}
