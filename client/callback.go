package wl

import (
	"fmt"

	"deedles.dev/dwr/wire"
)

const callbackInterface = "wl_callback"

type Callback struct {
	Proxy

	Done func(data uint32)
}

func (c *Callback) Then(f func(uint32)) {
	c.Done = f
}

func (c *Callback) String() string {
	return fmt.Sprintf("%v@%v", callbackInterface, c.ID())
}

func (c *Callback) MethodName(op uint16) string {
	if op == 0 {
		return "done"
	}
	return "unknown"
}

func (c *Callback) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 0 {
		return wire.UnknownOpError{Interface: callbackInterface, Type: "event", Op: msg.Op()}
	}

	data := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	if c.Done != nil {
		c.Done(data)
	}
	return nil
}
