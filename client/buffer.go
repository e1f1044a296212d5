package wl

import (
	"fmt"

	"deedles.dev/dwr/wire"
)

const bufferInterface = "wl_buffer"

type Buffer struct {
	Proxy

	// Release is called when the compositor no longer reads from the
	// buffer.
	Release func()
}

func (buf *Buffer) Destroy() {
	buf.display.Enqueue(wire.Message(buf, 0, "destroy"))
	buf.display.DeleteObject(buf.id)
}

func (buf *Buffer) String() string {
	return fmt.Sprintf("%v@%v", bufferInterface, buf.ID())
}

func (buf *Buffer) MethodName(op uint16) string {
	if op == 0 {
		return "release"
	}
	return "unknown"
}

func (buf *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 0 {
		return wire.UnknownOpError{Interface: bufferInterface, Type: "event", Op: msg.Op()}
	}

	if buf.Release != nil {
		buf.Release()
	}
	return nil
}
