package wl

// Proxy holds the state shared by every client-side protocol object.
// It is embedded by the object types in this package and by those in
// protocol extension packages.
type Proxy struct {
	id      uint32
	version uint32
	display *Display
}

// NewProxy returns a Proxy for an object of the given version that
// will be attached to display. The object must still be added with
// AddObject before it can be used in a request.
func NewProxy(display *Display, version uint32) Proxy {
	return Proxy{
		version: version,
		display: display,
	}
}

func (p *Proxy) ID() uint32 {
	return p.id
}

func (p *Proxy) SetID(id uint32) {
	p.id = id
}

// Version is the version of the interface that the object was bound
// or created with.
func (p *Proxy) Version() uint32 {
	return p.version
}

func (p *Proxy) Display() *Display {
	return p.display
}

func (p *Proxy) Delete() {}
