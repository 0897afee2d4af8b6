package input

// ButtonFrame is one source's view of a port's buttons for the current frame.
// A cleared mask bit means the button is pressed.
type ButtonFrame struct {
	Mask     uint16
	Pressure [MaxKeys]uint8
}

// Reset releases every button.
func (f *ButtonFrame) Reset() {
	f.Mask = 0xFFFF
	for i := range f.Pressure {
		f.Pressure[i] = 0xFF
	}
}

// Pressed reports whether button k is held in this frame.
func (f *ButtonFrame) Pressed(k Key) bool {
	return k >= 0 && k < NumButtons && f.Mask&(1<<uint(k)) == 0
}

// AnalogAxis holds both sticks, each channel centred on AxisCenter.
type AnalogAxis struct {
	LX, LY uint8
	RX, RY uint8
}

// Reset centres every channel.
func (a *AnalogAxis) Reset() {
	a.LX, a.LY, a.RX, a.RY = AxisCenter, AxisCenter, AxisCenter, AxisCenter
}

func (a *AnalogAxis) channel(k Key) *uint8 {
	switch k {
	case KeyRLeft, KeyRRight:
		return &a.RX
	case KeyRUp, KeyRDown:
		return &a.RY
	case KeyLLeft, KeyLRight:
		return &a.LX
	case KeyLUp, KeyLDown:
		return &a.LY
	}
	return nil
}

// Get returns the channel addressed by an analog key, or AxisCenter for any
// other key.
func (a *AnalogAxis) Get(k Key) uint8 {
	if c := a.channel(k); c != nil {
		return *c
	}
	return AxisCenter
}

// Set writes the channel addressed by an analog key. Other keys are ignored.
func (a *AnalogAxis) Set(k Key, v uint8) {
	if c := a.channel(k); c != nil {
		*c = v
	}
}

func mergeAxis(kbd, joy uint8) uint8 {
	if kbd != AxisCenter {
		return kbd
	}
	return joy
}
