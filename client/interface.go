package wl

import "fmt"

// Interface is a global advertised by the compositor.
type Interface struct {
	Name    string
	Version uint32
}

// Is returns true if i has the given name and is at least the given
// version.
func (i Interface) Is(name string, version uint32) bool {
	return (i.Name == name) && (i.Version >= version)
}

func (i Interface) String() string {
	return fmt.Sprintf("%v v%v", i.Name, i.Version)
}

// ProtocolError is a fatal error reported by the compositor with
// wl_display.error.
type ProtocolError struct {
	ObjectID uint32
	Object   string
	Code     uint32
	Message  string
}

func (err ProtocolError) Error() string {
	obj := err.Object
	if obj == "" {
		obj = fmt.Sprintf("object %v", err.ObjectID)
	}
	return fmt.Sprintf("protocol error on %v: code %v: %v", obj, err.Code, err.Message)
}

const (
	DisplayErrorInvalidObject  = 0
	DisplayErrorInvalidMethod  = 1
	DisplayErrorNoMemory       = 2
	DisplayErrorImplementation = 3
)

type ShmFormat uint32

const (
	ShmFormatArgb8888 ShmFormat = 0
	ShmFormatXrgb8888 ShmFormat = 1
)

func (f ShmFormat) String() string {
	switch f {
	case ShmFormatArgb8888:
		return "argb8888"
	case ShmFormatXrgb8888:
		return "xrgb8888"
	default:
		return fmt.Sprintf("0x%08x", uint32(f))
	}
}

type OutputTransform int32

const (
	OutputTransformNormal OutputTransform = iota
	OutputTransform90
	OutputTransform180
	OutputTransform270
	OutputTransformFlipped
	OutputTransformFlipped90
	OutputTransformFlipped180
	OutputTransformFlipped270
)

type OutputMode uint32

const (
	OutputModeCurrent   OutputMode = 0x1
	OutputModePreferred OutputMode = 0x2
)

type SeatCapability uint32

const (
	SeatCapabilityPointer  SeatCapability = 1
	SeatCapabilityKeyboard SeatCapability = 2
	SeatCapabilityTouch    SeatCapability = 4
)

func (c SeatCapability) Has(v SeatCapability) bool {
	return c&v == v
}
