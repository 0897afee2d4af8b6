package pad

// Motor indices into the vibration arrays. The large motor takes a variable
// strength, the small one is either off or fully on.
const (
	MotorLarge = 0
	MotorSmall = 1
)

// Pad is the protocol-visible state of one controller in one multitap slot.
type Pad struct {
	Mode     uint8
	ModeLock uint8
	Config   uint8

	Vibrate [8]uint8
	Umask   [2]uint8
	// VibrateI holds the byte offsets inside READ_DATA_AND_VIBRATE that carry
	// each motor's value, learned from the VIBRATION_TOGGLE exchange.
	VibrateI       [2]uint8
	CurrentVibrate [2]uint8
	NextVibrate    [2]uint8
}

// Reset puts the pad back into power-on digital mode.
func (p *Pad) Reset() {
	*p = Pad{}
	p.Mode = ModeDigital
	p.Umask = [2]uint8{0xFF, 0xFF}
	p.ResetVibrate()
}

// ResetVibrate stops both motors and restores the vibration map.
func (p *Pad) ResetVibrate() {
	p.SetVibrate(MotorLarge, 0)
	p.SetVibrate(MotorSmall, 0)
	for i := range p.Vibrate {
		p.Vibrate[i] = 0xFF
	}
	p.Vibrate[0] = 0x5A
}

// SetVibrate queues a motor value for the next Rumble.
func (p *Pad) SetVibrate(motor int, v uint8) {
	if motor < 0 || motor > 1 {
		return
	}
	p.NextVibrate[motor] = v
}

// SetMode switches the reporting mode.
func (p *Pad) SetMode(m uint8) { p.Mode = m }

// Locked reports whether the console pinned the current mode.
func (p *Pad) Locked() bool { return p.ModeLock != 0 }

// Rumble applies queued motor values and calls fn for each motor whose value
// is or was non-zero.
func (p *Pad) Rumble(fn func(motor int, value uint8)) {
	for motor := range p.NextVibrate {
		if p.NextVibrate[motor]|p.CurrentVibrate[motor] == 0 {
			continue
		}
		p.CurrentVibrate[motor] = p.NextVibrate[motor]
		if fn != nil {
			fn(motor, p.CurrentVibrate[motor])
		}
	}
}
