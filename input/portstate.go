package input

// Source tags which half of a PortState Press and Release write to.
type Source int

const (
	SourceJoystick Source = iota
	SourceKeyboard
)

func (s Source) String() string {
	if s == SourceKeyboard {
		return "keyboard"
	}
	return "joystick"
}

// Reversal flips the direction of individual stick channels.
type Reversal struct {
	LX, LY bool
	RX, RY bool
}

func (r Reversal) reversed(k Key) bool {
	switch k {
	case KeyLLeft, KeyLRight:
		return r.LX
	case KeyLUp, KeyLDown:
		return r.LY
	case KeyRLeft, KeyRRight:
		return r.RX
	case KeyRUp, KeyRDown:
		return r.RY
	}
	return false
}

// Snapshot is a button frame together with the stick positions.
type Snapshot struct {
	Buttons ButtonFrame
	Axis    AnalogAxis
}

func (s *Snapshot) reset() {
	s.Buttons.Reset()
	s.Axis.Reset()
}

// PortState merges keyboard and joystick input for one controller port.
//
// Callers select a source with SetAccess, feed it with Press and Release and
// publish the result with Commit. Readers only ever see the committed view.
type PortState struct {
	access   Source
	reversal Reversal
	sources  [2]Snapshot
	merged   Snapshot
}

// NewPortState returns a port with everything released.
func NewPortState() *PortState {
	p := &PortState{}
	p.Reset()
	return p
}

// Reset releases every button on both sources and in the merged view.
func (p *PortState) Reset() {
	p.access = SourceJoystick
	for i := range p.sources {
		p.sources[i].reset()
	}
	p.merged.reset()
}

// SetAccess selects the source written by subsequent Press and Release calls.
func (p *PortState) SetAccess(s Source) { p.access = s }

// Access returns the currently selected source.
func (p *PortState) Access() Source { return p.access }

// SetReversal configures which stick channels are inverted.
func (p *PortState) SetReversal(r Reversal) { p.reversal = r }

// Press marks k as held on the current source. For buttons value is the
// pressure; for stick keys it is a signed deflection in ±MaxAnalog.
func (p *PortState) Press(k Key, value int32) {
	if !k.Valid() {
		return
	}
	src := &p.sources[p.access]
	if !k.IsAnalog() {
		src.Buttons.Pressure[k] = clampPressure(value)
		src.Buttons.Mask &^= 1 << uint(k)
		return
	}

	value = min(max(value, -MaxAnalog), MaxAnalog)
	force := value / 256
	if p.reversal.reversed(k) {
		src.Axis.Set(k, uint8(int32(AxisCenter)-force))
	} else {
		src.Axis.Set(k, uint8(int32(AxisCenter)+force))
	}
}

// PressButton presses k at full strength. Up and left directions deflect
// negatively, down and right positively.
func (p *PortState) PressButton(k Key) {
	switch k {
	case KeyLUp, KeyLLeft, KeyRUp, KeyRLeft:
		p.Press(k, -MaxAnalog)
	case KeyLDown, KeyLRight, KeyRDown, KeyRRight:
		p.Press(k, MaxAnalog)
	default:
		p.Press(k, PressureMax)
	}
}

// Release lets go of k on the current source.
func (p *PortState) Release(k Key) {
	if !k.Valid() {
		return
	}
	src := &p.sources[p.access]
	if k.IsAnalog() {
		src.Axis.Set(k, AxisCenter)
		return
	}
	src.Buttons.Mask |= 1 << uint(k)
}

// Set presses k when value is non-zero and releases it otherwise.
func (p *PortState) Set(k Key, value int32) {
	if value != 0 {
		p.Press(k, value)
	} else {
		p.Release(k)
	}
}

// Commit publishes the merge of both sources. A button is pressed when either
// source presses it. A stick channel follows the keyboard whenever the
// keyboard moved it off centre and the joystick otherwise.
func (p *PortState) Commit() {
	kbd := &p.sources[SourceKeyboard]
	joy := &p.sources[SourceJoystick]

	p.merged.Buttons.Mask = kbd.Buttons.Mask & joy.Buttons.Mask
	for k := range p.merged.Buttons.Pressure {
		if kbd.Buttons.Pressed(Key(k)) {
			p.merged.Buttons.Pressure[k] = kbd.Buttons.Pressure[k]
		} else {
			p.merged.Buttons.Pressure[k] = joy.Buttons.Pressure[k]
		}
	}

	p.merged.Axis.LX = mergeAxis(kbd.Axis.LX, joy.Axis.LX)
	p.merged.Axis.LY = mergeAxis(kbd.Axis.LY, joy.Axis.LY)
	p.merged.Axis.RX = mergeAxis(kbd.Axis.RX, joy.Axis.RX)
	p.merged.Axis.RY = mergeAxis(kbd.Axis.RY, joy.Axis.RY)
}

// Buttons returns the committed button mask.
func (p *PortState) Buttons() uint16 { return p.merged.Buttons.Mask }

// Get returns the committed stick channel addressed by k.
func (p *PortState) Get(k Key) uint8 { return p.merged.Axis.Get(k) }

// Pressure returns the committed pressure of button k, or 0 when it is not
// pressed.
func (p *PortState) Pressure(k Key) uint8 {
	if !p.merged.Buttons.Pressed(k) {
		return 0
	}
	return p.merged.Buttons.Pressure[k]
}

// Merged returns a copy of the committed view.
func (p *PortState) Merged() Snapshot { return p.merged }

// SourceState returns a copy of one source's uncommitted view.
func (p *PortState) SourceState(s Source) Snapshot { return p.sources[s] }

func clampPressure(v int32) uint8 {
	return uint8(min(max(v, 0), PressureMax))
}
