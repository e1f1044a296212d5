package wl

import (
	"fmt"

	"deedles.dev/dwr/wire"
)

const (
	seatInterface = "wl_seat"
	seatVersion   = 5
)

type Seat struct {
	Proxy

	Capabilities func(SeatCapability)
	Name         func(string)
}

func IsSeat(i Interface) bool {
	return i.Is(seatInterface, 1)
}

func BindSeat(display *Display, name uint32) *Seat {
	registry := display.GetRegistry()

	seat := Seat{Proxy: NewProxy(display, registry.BindVersion(name, seatVersion))}
	display.AddObject(&seat)
	registry.Bind(name, seatInterface, &seat)

	return &seat
}

func (seat *Seat) Release() {
	if seat.version >= 5 {
		seat.display.Enqueue(wire.Message(seat, 3, "release"))
	}
	seat.display.DeleteObject(seat.id)
}

func (seat *Seat) String() string {
	return fmt.Sprintf("%v@%v", seatInterface, seat.ID())
}

func (seat *Seat) MethodName(op uint16) string {
	switch op {
	case 0:
		return "capabilities"
	case 1:
		return "name"
	default:
		return "unknown"
	}
}

func (seat *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		caps := SeatCapability(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		if seat.Capabilities != nil {
			seat.Capabilities(caps)
		}

	case 1:
		name := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if seat.Name != nil {
			seat.Name(name)
		}

	default:
		return wire.UnknownOpError{Interface: seatInterface, Type: "event", Op: msg.Op()}
	}

	return nil
}
