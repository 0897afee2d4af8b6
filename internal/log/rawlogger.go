package log

import (
	"bytes"
	"io"
	"strconv"
	"sync"
	"time"
)

// RawLogger records complete pad transactions as hex dumps.
type RawLogger interface {
	// Log records one transaction on a 1-based port. tx holds the bytes the
	// console clocked in, rx the bytes the pad answered with.
	Log(port int, tx, rx []byte)
}

type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	buf bytes.Buffer
	now func() time.Time
}

// NewRaw returns a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

// Discards reports whether r drops every transaction.
func Discards(r RawLogger) bool {
	rl, ok := r.(*rawLogger)
	return r == nil || (ok && rl.w == nil)
}

// Log writes a single line of the form
//
//	2006/01/02 15:04:05.000000 port 1 len 5 tx: 01 42 00 00 00 rx: ff 41 5a ff ff
func (r *rawLogger) Log(port int, tx, rx []byte) {
	if r.w == nil || (len(tx) == 0 && len(rx) == 0) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf.Reset()
	r.buf.WriteString(r.now().Format("2006/01/02 15:04:05.000000"))
	r.buf.WriteString(" port ")
	r.buf.WriteString(strconv.Itoa(port))
	r.buf.WriteString(" len ")
	r.buf.WriteString(strconv.Itoa(max(len(tx), len(rx))))
	r.buf.WriteString(" tx:")
	writeHex(&r.buf, tx)
	r.buf.WriteString(" rx:")
	writeHex(&r.buf, rx)
	r.buf.WriteByte('\n')
	_, _ = r.w.Write(r.buf.Bytes())
}

func writeHex(buf *bytes.Buffer, data []byte) {
	const hexdigits = "0123456789abcdef"
	for _, b := range data {
		buf.WriteByte(' ')
		buf.WriteByte(hexdigits[b>>4])
		buf.WriteByte(hexdigits[b&0x0f])
	}
}
