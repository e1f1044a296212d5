// Package wire defines types helpful for dealing with the Wayland
// wire protocol. It is primarly intended for usage by the
// implementations of protocol objects.
package wire

// headerSize is the size of the sender and size/opcode words that
// start every message.
const headerSize = 8

// Object represents a Wayland protocol object.
type Object interface {
	// ID returns the object's ID, or 0 if it has not been added to an
	// object store yet.
	ID() uint32

	// SetID is called when the object is assigned an ID.
	SetID(id uint32)

	// Dispatch pertforms the operation requested by the message in the
	// buffer.
	Dispatch(msg *MessageBuffer) error

	// Delete is called when the object's ID is no longer in use.
	Delete()

	// MethodName returns the name of the method or event with the
	// given opcode. It is used for debugging output.
	MethodName(op uint16) string
}

// NewID is an untyped new_id argument. The protocol sends the
// interface name and version along with the ID in this case, such as
// in wl_registry.bind.
type NewID struct {
	Interface string
	Version   uint32
	ID        uint32
}

// padding returns the number of bytes needed to pad a value of the
// given length to a 32-bit boundary.
func padding(length uint32) uint32 {
	return (4 - (length % 4)) % 4
}
