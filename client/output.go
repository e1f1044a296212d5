package wl

import (
	"fmt"

	"deedles.dev/dwr/wire"
)

const (
	outputInterface = "wl_output"
	outputVersion   = 4
)

type Output struct {
	Proxy

	Geometry    func(x, y, physicalWidth, physicalHeight, subpixel int32, make, model string, transform OutputTransform)
	Mode        func(flags OutputMode, width, height, refresh int32)
	Done        func()
	Scale       func(factor int32)
	Name        func(name string)
	Description func(description string)
}

func IsOutput(i Interface) bool {
	return i.Is(outputInterface, 1)
}

func BindOutput(display *Display, name uint32) *Output {
	registry := display.GetRegistry()

	output := Output{Proxy: NewProxy(display, registry.BindVersion(name, outputVersion))}
	display.AddObject(&output)
	registry.Bind(name, outputInterface, &output)

	return &output
}

// Release destroys the output object. Compositors older than version
// 3 have no way to do so, so the object is simply forgotten.
func (out *Output) Release() {
	if out.version >= 3 {
		out.display.Enqueue(wire.Message(out, 0, "release"))
	}
	out.display.DeleteObject(out.id)
}

func (out *Output) String() string {
	return fmt.Sprintf("%v@%v", outputInterface, out.ID())
}

func (out *Output) MethodName(op uint16) string {
	switch op {
	case 0:
		return "geometry"
	case 1:
		return "mode"
	case 2:
		return "done"
	case 3:
		return "scale"
	case 4:
		return "name"
	case 5:
		return "description"
	default:
		return "unknown"
	}
}

func (out *Output) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		x, y := msg.ReadInt(), msg.ReadInt()
		pw, ph := msg.ReadInt(), msg.ReadInt()
		subpixel := msg.ReadInt()
		make, model := msg.ReadString(), msg.ReadString()
		transform := OutputTransform(msg.ReadInt())
		if err := msg.Err(); err != nil {
			return err
		}
		if out.Geometry != nil {
			out.Geometry(x, y, pw, ph, subpixel, make, model, transform)
		}

	case 1:
		flags := OutputMode(msg.ReadUint())
		w, h, refresh := msg.ReadInt(), msg.ReadInt(), msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if out.Mode != nil {
			out.Mode(flags, w, h, refresh)
		}

	case 2:
		if out.Done != nil {
			out.Done()
		}

	case 3:
		factor := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if out.Scale != nil {
			out.Scale(factor)
		}

	case 4, 5:
		v := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		f := out.Name
		if msg.Op() == 5 {
			f = out.Description
		}
		if f != nil {
			f(v)
		}

	default:
		return wire.UnknownOpError{Interface: outputInterface, Type: "event", Op: msg.Op()}
	}

	return nil
}
