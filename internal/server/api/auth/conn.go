package auth

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// maxRecord bounds a single sealed record on the wire.
const maxRecord = 1 << 20

var ErrRecordTooLarge = errors.New("sealed record too large")

// SealedConn encrypts every Write as one record:
//
//	len u32 BE | nonce[12] | ciphertext
//
// The nonce is a per-direction counter.
type SealedConn struct {
	net.Conn
	aead cipher.AEAD

	wmu  sync.Mutex
	wctr uint64

	rmu     sync.Mutex
	pending []byte
}

// Seal wraps conn with the session key from a handshake.
func Seal(conn net.Conn, session []byte) (*SealedConn, error) {
	aead, err := chacha20poly1305.New(session)
	if err != nil {
		return nil, err
	}
	return &SealedConn{Conn: conn, aead: aead}, nil
}

func (c *SealedConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	nonce := make([]byte, c.aead.NonceSize())
	binary.BigEndian.PutUint64(nonce[len(nonce)-8:], c.wctr)
	c.wctr++
	rec := make([]byte, 4, 4+len(nonce)+len(p)+c.aead.Overhead())
	rec = append(rec, nonce...)
	rec = c.aead.Seal(rec, nonce, p, nil)
	binary.BigEndian.PutUint32(rec[:4], uint32(len(rec)-4))

	if _, err := c.Conn.Write(rec); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *SealedConn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	if len(c.pending) == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		n := binary.BigEndian.Uint32(hdr[:])
		ns := uint32(c.aead.NonceSize())
		if n > maxRecord {
			return 0, ErrRecordTooLarge
		}
		if n < ns {
			return 0, io.ErrUnexpectedEOF
		}
		rec := make([]byte, n)
		if _, err := io.ReadFull(c.Conn, rec); err != nil {
			return 0, err
		}
		pt, err := c.aead.Open(rec[ns:ns], rec[:ns], rec[ns:], nil)
		if err != nil {
			return 0, err
		}
		c.pending = pt
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}
