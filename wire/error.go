package wire

import (
	"errors"
	"fmt"
)

// ErrWouldBlock is returned by non-blocking reads when no data is
// available on the socket.
var ErrWouldBlock = errors.New("read would block")

// UnknownOpError is returned by Object.Dispatch if it is given a
// message with an invalid opcode.
type UnknownOpError struct {
	Interface string
	Type      string
	Op        uint16
}

func (err UnknownOpError) Error() string {
	return fmt.Sprintf("unknown %v opcode for %v: %v", err.Type, err.Interface, err.Op)
}

// UnknownSenderIDError is returned by an attempt to dispatch an
// incoming message that indicates a method call on an object that the
// object store doesn't know about.
type UnknownSenderIDError struct {
	Msg *MessageBuffer
}

func (err UnknownSenderIDError) Error() string {
	return fmt.Sprintf("unknown sender object ID: %v", err.Msg.Sender())
}

// MessageSizeError is returned when a message header announces a size
// that cannot be valid.
type MessageSizeError struct {
	Sender uint32
	Size   uint16
}

func (err MessageSizeError) Error() string {
	return fmt.Sprintf("invalid size for message from %v: %v", err.Sender, err.Size)
}
