// Package input holds the per port button and stick state that host devices
// write and the pad protocol reads.
package input

// Ports holds the state of every controller port, addressed 0-based.
// Operations on a port outside the range are ignored.
type Ports struct {
	ports [NumPorts]PortState
}

// NewPorts returns all ports reset.
func NewPorts() *Ports {
	p := &Ports{}
	p.Reset()
	return p
}

// Reset resets every port.
func (p *Ports) Reset() {
	for i := range p.ports {
		p.ports[i].Reset()
	}
}

// Port returns port i, or nil when i is out of range.
func (p *Ports) Port(i int) *PortState {
	if i < 0 || i >= NumPorts {
		return nil
	}
	return &p.ports[i]
}

// SetAccess selects the source for every port.
func (p *Ports) SetAccess(s Source) {
	for i := range p.ports {
		p.ports[i].SetAccess(s)
	}
}

func (p *Ports) Press(port int, k Key, value int32) {
	if ps := p.Port(port); ps != nil {
		ps.Press(k, value)
	}
}

func (p *Ports) PressButton(port int, k Key) {
	if ps := p.Port(port); ps != nil {
		ps.PressButton(k)
	}
}

func (p *Ports) Release(port int, k Key) {
	if ps := p.Port(port); ps != nil {
		ps.Release(k)
	}
}

// Set presses k on port when value is non-zero and releases it otherwise.
func (p *Ports) Set(port int, k Key, value int32) {
	if ps := p.Port(port); ps != nil {
		ps.Set(k, value)
	}
}

// Commit commits every port.
func (p *Ports) Commit() {
	for i := range p.ports {
		p.ports[i].Commit()
	}
}
