package pad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Format selects the save-state encoding produced by Freeze.
type Format int

const (
	// FormatTagged is the versioned tag-length-value schema.
	FormatTagged Format = iota
	// FormatLegacy is the fixed "LinPad" struct layout, revision 3 build 0.
	FormatLegacy
)

func (f Format) String() string {
	if f == FormatLegacy {
		return "legacy"
	}
	return "tagged"
}

var (
	ErrBadFormat  = errors.New("pad: unrecognised save state")
	ErrBadVersion = errors.New("pad: unsupported save state version")
)

// Legacy layout. Every field is a byte except the version, which is a
// little-endian u32 at offset 8; the struct is padded to a multiple of 4.
const (
	LegacyVersion uint32 = 3<<8 | 0
	legacyTag            = "LinPad\x00\x00"

	padRecordSize   = 19
	queryRecordSize = 6 + ResponseSize

	legacyVersionOff = 8
	legacySlotOff    = 12
	legacyPadsOff    = legacySlotOff + NumPorts
	legacyQueryOff   = legacyPadsOff + NumPorts*NumSlots*padRecordSize
	legacyEnd        = legacyQueryOff + queryRecordSize

	// LegacySize is the size reported for FREEZE_SIZE.
	LegacySize = (legacyEnd + 3) &^ 3
)

// Tagged layout: magic, u16 schema version, then records of
// u8 tag, u16 length, payload. Unknown tags are skipped on load.
const (
	SchemaVersion uint16 = 4
	taggedMagic          = "SIO2PAD\x00"

	tagSlots uint8 = 1
	tagPad   uint8 = 2
	tagQuery uint8 = 3
)

// snapshot is the restorable part of an Engine. Thaw decodes into one and
// only applies it once the whole input has been validated.
type snapshot struct {
	slots   [NumPorts]uint8
	hasSlot [NumPorts]bool
	pads    [NumPorts][NumSlots]Pad
	hasPad  [NumPorts][NumSlots]bool
	query   Query
	hasQ    bool
}

// FreezeSize returns the encoded size of the current state in format f.
func (e *Engine) FreezeSize(f Format) int {
	if f == FormatLegacy {
		return LegacySize
	}
	return len(e.Freeze(FormatTagged))
}

// Freeze serialises every pad, the active slots and the transaction cursor.
func (e *Engine) Freeze(f Format) []byte {
	if f == FormatLegacy {
		return e.freezeLegacy()
	}
	return e.freezeTagged()
}

// Thaw restores state produced by Freeze in either format. On error the
// engine is left untouched. Motors are stopped after a successful load.
func (e *Engine) Thaw(data []byte) error {
	var (
		s   snapshot
		err error
	)
	switch {
	case bytes.HasPrefix(data, []byte(taggedMagic)):
		s, err = decodeTagged(data)
	case bytes.HasPrefix(data, []byte(legacyTag)):
		s, err = decodeLegacy(data)
	default:
		err = ErrBadFormat
	}
	if err != nil {
		return err
	}

	e.StopVibrateAll()
	for port := range s.pads {
		for slot := range s.pads[port] {
			if s.hasPad[port][slot] {
				e.pads[port][slot] = s.pads[port][slot]
			}
		}
		if s.hasSlot[port] {
			e.slots[port] = s.slots[port]
		}
	}
	if s.hasQ {
		e.query = s.query
	}
	e.tx, e.rx = e.tx[:0], e.rx[:0]
	return nil
}

func (e *Engine) freezeLegacy() []byte {
	b := make([]byte, LegacySize)
	copy(b, legacyTag)
	binary.LittleEndian.PutUint32(b[legacyVersionOff:], LegacyVersion)
	for port := range e.pads {
		b[legacySlotOff+port] = e.slots[port]
		for slot := range e.pads[port] {
			off := legacyPadsOff + (port*NumSlots+slot)*padRecordSize
			putPad(b[off:off+padRecordSize], &e.pads[port][slot], true)
		}
	}
	putQuery(b[legacyQueryOff:legacyEnd], &e.query)
	return b
}

func decodeLegacy(b []byte) (snapshot, error) {
	var s snapshot
	if len(b) != LegacySize {
		return s, fmt.Errorf("%w: legacy state is %d bytes, want %d", ErrBadFormat, len(b), LegacySize)
	}
	if v := binary.LittleEndian.Uint32(b[legacyVersionOff:]); v != LegacyVersion {
		return s, fmt.Errorf("%w: legacy version %#x", ErrBadVersion, v)
	}

	for port := range s.pads {
		for slot := range s.pads[port] {
			off := legacyPadsOff + (port*NumSlots+slot)*padRecordSize
			rec := b[off : off+padRecordSize]
			// A corrupt slot stops the restore of the rest of the port.
			if !ValidMode(rec[0]) {
				break
			}
			getPad(rec, &s.pads[port][slot], true)
			s.hasPad[port][slot] = true
		}
		if v := b[legacySlotOff+port]; v < NumSlots {
			s.slots[port] = v
			s.hasSlot[port] = true
		}
	}

	getQuery(b[legacyQueryOff:legacyEnd], &s.query)
	s.hasQ = queryRestorable(&s.query)
	return s, nil
}

func (e *Engine) freezeTagged() []byte {
	var buf bytes.Buffer
	buf.WriteString(taggedMagic)
	_ = binary.Write(&buf, binary.LittleEndian, SchemaVersion)

	writeRecord(&buf, tagSlots, e.slots[:])

	rec := make([]byte, 2+padRecordSize)
	for port := range e.pads {
		for slot := range e.pads[port] {
			rec[0], rec[1] = uint8(port), uint8(slot)
			putPad(rec[2:], &e.pads[port][slot], false)
			writeRecord(&buf, tagPad, rec)
		}
	}

	q := make([]byte, queryRecordSize)
	putQuery(q, &e.query)
	writeRecord(&buf, tagQuery, q)
	return buf.Bytes()
}

func writeRecord(buf *bytes.Buffer, tag uint8, payload []byte) {
	buf.WriteByte(tag)
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(payload)))
	buf.Write(payload)
}

func decodeTagged(b []byte) (snapshot, error) {
	var s snapshot
	b = b[len(taggedMagic):]
	if len(b) < 2 {
		return s, fmt.Errorf("%w: truncated header", ErrBadFormat)
	}
	if v := binary.LittleEndian.Uint16(b); v != SchemaVersion {
		return s, fmt.Errorf("%w: schema %d", ErrBadVersion, v)
	}
	b = b[2:]

	for len(b) > 0 {
		if len(b) < 3 {
			return s, fmt.Errorf("%w: truncated record header", ErrBadFormat)
		}
		tag := b[0]
		n := int(binary.LittleEndian.Uint16(b[1:3]))
		b = b[3:]
		if len(b) < n {
			return s, fmt.Errorf("%w: record %d wants %d bytes, %d left", ErrBadFormat, tag, n, len(b))
		}
		payload := b[:n]
		b = b[n:]

		switch tag {
		case tagSlots:
			if n != NumPorts {
				return s, fmt.Errorf("%w: slots record is %d bytes", ErrBadFormat, n)
			}
			for port, v := range payload {
				if v >= NumSlots {
					return s, fmt.Errorf("%w: slot %d on port %d", ErrBadFormat, v, port+1)
				}
				s.slots[port] = v
				s.hasSlot[port] = true
			}
		case tagPad:
			if n != 2+padRecordSize {
				return s, fmt.Errorf("%w: pad record is %d bytes", ErrBadFormat, n)
			}
			port, slot := int(payload[0]), int(payload[1])
			if port >= NumPorts || slot >= NumSlots {
				return s, fmt.Errorf("%w: pad record for port %d slot %d", ErrBadFormat, port+1, slot+1)
			}
			if !ValidMode(payload[2]) {
				return s, fmt.Errorf("%w: mode %#x on port %d slot %d", ErrBadFormat, payload[2], port+1, slot+1)
			}
			getPad(payload[2:], &s.pads[port][slot], false)
			s.hasPad[port][slot] = true
		case tagQuery:
			if n != queryRecordSize {
				return s, fmt.Errorf("%w: query record is %d bytes", ErrBadFormat, n)
			}
			getQuery(payload, &s.query)
			if !queryRestorable(&s.query) {
				return s, fmt.Errorf("%w: query addresses port %d slot %d", ErrBadFormat, s.query.Port+1, s.query.Slot+1)
			}
			s.hasQ = true
		}
	}
	return s, nil
}

// putPad writes a 19 byte pad record. The legacy layout stores the two
// vibration offsets in the opposite order.
func putPad(b []byte, p *Pad, legacy bool) {
	b[0], b[1], b[2] = p.Mode, p.ModeLock, p.Config
	copy(b[3:11], p.Vibrate[:])
	copy(b[11:13], p.Umask[:])
	if legacy {
		b[13], b[14] = p.VibrateI[1], p.VibrateI[0]
	} else {
		b[13], b[14] = p.VibrateI[0], p.VibrateI[1]
	}
	copy(b[15:17], p.CurrentVibrate[:])
	copy(b[17:19], p.NextVibrate[:])
}

func getPad(b []byte, p *Pad, legacy bool) {
	p.Mode, p.ModeLock, p.Config = b[0], b[1], b[2]
	copy(p.Vibrate[:], b[3:11])
	copy(p.Umask[:], b[11:13])
	if legacy {
		p.VibrateI[1], p.VibrateI[0] = b[13], b[14]
	} else {
		p.VibrateI[0], p.VibrateI[1] = b[13], b[14]
	}
	copy(p.CurrentVibrate[:], b[15:17])
	copy(p.NextVibrate[:], b[17:19])
}

func putQuery(b []byte, q *Query) {
	b[0], b[1], b[2] = q.Port, q.Slot, q.LastByte
	b[3], b[4], b[5] = q.CurrentCommand, q.NumBytes, q.QueryDone
	copy(b[6:], q.Response[:])
}

func getQuery(b []byte, q *Query) {
	q.Port, q.Slot, q.LastByte = b[0], b[1], b[2]
	q.CurrentCommand, q.NumBytes, q.QueryDone = b[3], b[4], b[5]
	copy(q.Response[:], b[6:6+ResponseSize])
}

func queryRestorable(q *Query) bool {
	return q.Port < NumPorts && q.Slot < NumSlots && q.NumBytes <= ResponseSize
}
