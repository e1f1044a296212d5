package wl

import (
	"fmt"

	"deedles.dev/dwr/wire"
	"golang.org/x/exp/maps"
)

const registryInterface = "wl_registry"

type Registry struct {
	Proxy

	Global       func(name uint32, inter Interface)
	GlobalRemove func(name uint32)

	globals map[uint32]Interface
}

// Globals returns a copy of the globals that are currently advertised.
func (registry *Registry) Globals() map[uint32]Interface {
	return maps.Clone(registry.globals)
}

// Lookup returns the global with the given name.
func (registry *Registry) Lookup(name uint32) (Interface, bool) {
	inter, ok := registry.globals[name]
	return inter, ok
}

// Bind binds the global with the given name to obj, which must
// already have been added to the display. The object's version is
// used, so it should be no greater than the advertised version.
func (registry *Registry) Bind(name uint32, inter string, obj interface {
	wire.Object
	Version() uint32
}) {
	id := wire.NewID{
		Interface: inter,
		Version:   obj.Version(),
		ID:        obj.ID(),
	}
	registry.display.Enqueue(wire.Message(registry, 0, "bind", name, id))
}

// BindVersion returns the version to bind the named global with,
// which is the lower of the advertised version and supported.
func (registry *Registry) BindVersion(name, supported uint32) uint32 {
	inter, ok := registry.globals[name]
	if !ok {
		return supported
	}
	return min(inter.Version, supported)
}

func (registry *Registry) String() string {
	return fmt.Sprintf("%v@%v", registryInterface, registry.ID())
}

func (registry *Registry) MethodName(op uint16) string {
	switch op {
	case 0:
		return "global"
	case 1:
		return "global_remove"
	default:
		return "unknown"
	}
}

func (registry *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		name := msg.ReadUint()
		inter := Interface{Name: msg.ReadString(), Version: msg.ReadUint()}
		if err := msg.Err(); err != nil {
			return err
		}

		registry.globals[name] = inter
		if registry.Global != nil {
			registry.Global(name, inter)
		}
		return nil

	case 1:
		name := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		delete(registry.globals, name)
		if registry.GlobalRemove != nil {
			registry.GlobalRemove(name)
		}
		return nil

	default:
		return wire.UnknownOpError{Interface: registryInterface, Type: "event", Op: msg.Op()}
	}
}
