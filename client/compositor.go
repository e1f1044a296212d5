package wl

import (
	"fmt"

	"deedles.dev/dwr/wire"
)

const (
	compositorInterface = "wl_compositor"
	compositorVersion   = 4
)

type Compositor struct {
	Proxy
}

func IsCompositor(i Interface) bool {
	return i.Is(compositorInterface, 1)
}

func BindCompositor(display *Display, name uint32) *Compositor {
	registry := display.GetRegistry()

	compositor := Compositor{Proxy: NewProxy(display, registry.BindVersion(name, compositorVersion))}
	display.AddObject(&compositor)
	registry.Bind(name, compositorInterface, &compositor)

	return &compositor
}

func (c *Compositor) String() string {
	return fmt.Sprintf("%v@%v", compositorInterface, c.ID())
}

func (c *Compositor) MethodName(op uint16) string {
	return "unknown"
}

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: compositorInterface, Type: "event", Op: msg.Op()}
}

func (c *Compositor) CreateSurface() *Surface {
	s := Surface{Proxy: NewProxy(c.display, c.version)}
	c.display.AddObject(&s)
	c.display.Enqueue(wire.Message(c, 0, "create_surface", &s))

	return &s
}
