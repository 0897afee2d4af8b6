package pad

// Reporting modes. The low nibble is the number of 16-bit payload words that
// follow the header in a READ_DATA reply.
const (
	ModeDigital   uint8 = 0x41
	ModeAnalog    uint8 = 0x73
	ModeDS2Native uint8 = 0x79
)

// Command bytes sent by the console as the second byte of a transaction.
const (
	CmdSetVrefParam       uint8 = 0x40
	CmdQueryDS2AnalogMode uint8 = 0x41
	CmdReadDataAndVibrate uint8 = 0x42
	CmdConfigMode         uint8 = 0x43
	CmdSetModeAndLock     uint8 = 0x44
	CmdQueryModelAndMode  uint8 = 0x45
	CmdQueryAct           uint8 = 0x46
	CmdQueryComb          uint8 = 0x47
	CmdQueryMode          uint8 = 0x4C
	CmdVibrationToggle    uint8 = 0x4D
	CmdSetDS2NativeMode   uint8 = 0x4F
)

const (
	// NumPorts is the number of controller connectors.
	NumPorts = 2
	// NumSlots is the number of multitap slots per port.
	NumSlots = 4
	// ResponseSize is the capacity of the reply buffer.
	ResponseSize = 42

	// ackByte is what the pad clocks out while it is consuming command bytes.
	ackByte uint8 = 0xF3
	// pollAck is returned by StartPoll when a pad answers.
	pollAck uint8 = 0xFF
	// lockAnalog is the ModeLock value that pins the current mode.
	lockAnalog uint8 = 3
)

// ValidMode reports whether m is one of the three reporting modes.
func ValidMode(m uint8) bool {
	return m == ModeDigital || m == ModeAnalog || m == ModeDS2Native
}

// ModeName returns a human readable name for a reporting mode.
func ModeName(m uint8) string {
	switch m {
	case ModeDigital:
		return "digital"
	case ModeAnalog:
		return "analog"
	case ModeDS2Native:
		return "ds2native"
	}
	return "unknown"
}

type reply [7]uint8

// Canned replies, copied verbatim from real DualShock 2 captures.
var (
	replyConfigExit    = reply{0x5A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	replySetMode       = reply{0x5A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	replyQueryMode     = reply{0x5A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	replyNoClue        = reply{0x5A, 0x00, 0x00, 0x02, 0x00, 0x00, 0x5A}
	replyQueryModelDS2 = reply{0x5A, 0x03, 0x02, 0x00, 0x02, 0x01, 0x00}
	replyQueryModelDS1 = reply{0x5A, 0x01, 0x02, 0x00, 0x02, 0x01, 0x00}
	replyQueryComb     = reply{0x5A, 0x00, 0x00, 0x02, 0x00, 0x01, 0x00}
	replySetNativeMode = reply{0x5A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x5A}
	replyQueryAct      = [2]reply{
		{0x5A, 0x00, 0x00, 0x01, 0x02, 0x00, 0x0A},
		{0x5A, 0x00, 0x00, 0x01, 0x01, 0x01, 0x14},
	}
)

// MaskModeTrailer is byte 6 of the QUERY_DS2_ANALOG_MODE reply outside
// digital mode. Hardware reports 0x5A here even though the other bytes carry
// the analog mask.
const MaskModeTrailer uint8 = 0x5A

func queryMaskMode(p *Pad) reply {
	if p.Mode == ModeDigital {
		return reply{0x5A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	}
	return reply{0x5A, p.Umask[0], p.Umask[1], 0x03, 0x00, 0x00, MaskModeTrailer}
}
