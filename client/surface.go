package wl

import (
	"fmt"

	"deedles.dev/dwr/wire"
)

const surfaceInterface = "wl_surface"

type Surface struct {
	Proxy

	Enter func(*Output)
	Leave func(*Output)
}

func (s *Surface) String() string {
	return fmt.Sprintf("%v@%v", surfaceInterface, s.ID())
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "enter"
	case 1:
		return "leave"
	default:
		return "unknown"
	}
}

func (s *Surface) Destroy() {
	s.display.Enqueue(wire.Message(s, 0, "destroy"))
	s.display.DeleteObject(s.id)
}

// Attach attaches buf as the surface's next content. A nil buf
// removes the content.
func (s *Surface) Attach(buf *Buffer, x, y int32) {
	s.display.Enqueue(wire.Message(s, 1, "attach", buf, x, y))
}

func (s *Surface) Damage(x, y, width, height int32) {
	s.display.Enqueue(wire.Message(s, 2, "damage", x, y, width, height))
}

// Frame requests a callback for when it is a good time to draw the
// next frame.
func (s *Surface) Frame() *Callback {
	callback := Callback{Proxy: NewProxy(s.display, 1)}
	s.display.AddObject(&callback)
	s.display.Enqueue(wire.Message(s, 3, "frame", &callback))

	return &callback
}

func (s *Surface) Commit() {
	s.display.Enqueue(wire.Message(s, 6, "commit"))
}

func (s *Surface) SetBufferScale(scale int32) {
	if s.version < 3 {
		return
	}
	s.display.Enqueue(wire.Message(s, 8, "set_buffer_scale", scale))
}

// DamageBuffer marks a region of the attached buffer as damaged. On
// compositors older than version 4 it falls back to surface-local
// damage, which is the same thing at a buffer scale of 1.
func (s *Surface) DamageBuffer(x, y, width, height int32) {
	if s.version < 4 {
		s.Damage(x, y, width, height)
		return
	}
	s.display.Enqueue(wire.Message(s, 9, "damage_buffer", x, y, width, height))
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0, 1:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		f := s.Enter
		if msg.Op() == 1 {
			f = s.Leave
		}
		out, _ := s.display.GetObject(id).(*Output)
		if (f != nil) && (out != nil) {
			f(out)
		}
		return nil

	default:
		return wire.UnknownOpError{Interface: surfaceInterface, Type: "event", Op: msg.Op()}
	}
}
