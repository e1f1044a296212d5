package wl

import (
	"fmt"
	"os"

	"deedles.dev/dwr/internal/set"
	"deedles.dev/dwr/wire"
)

const (
	shmInterface = "wl_shm"
	shmVersion   = 1
)

type Shm struct {
	Proxy

	Format func(ShmFormat)

	formats set.Set[ShmFormat]
}

func IsShm(i Interface) bool {
	return i.Is(shmInterface, 1)
}

func BindShm(display *Display, name uint32) *Shm {
	registry := display.GetRegistry()

	shm := Shm{
		Proxy:   NewProxy(display, registry.BindVersion(name, shmVersion)),
		formats: set.New(ShmFormatArgb8888, ShmFormatXrgb8888),
	}
	display.AddObject(&shm)
	registry.Bind(name, shmInterface, &shm)

	return &shm
}

// Supports returns true if the compositor has advertised support for
// the format. ARGB8888 and XRGB8888 are always supported.
func (shm *Shm) Supports(format ShmFormat) bool {
	return shm.formats.Has(format)
}

func (shm *Shm) CreatePool(file *os.File, size int32) *ShmPool {
	pool := ShmPool{Proxy: NewProxy(shm.display, 1)}
	shm.display.AddObject(&pool)
	shm.display.Enqueue(wire.Message(shm, 0, "create_pool", &pool, file, size))

	return &pool
}

func (shm *Shm) String() string {
	return fmt.Sprintf("%v@%v", shmInterface, shm.ID())
}

func (shm *Shm) MethodName(op uint16) string {
	if op == 0 {
		return "format"
	}
	return "unknown"
}

func (shm *Shm) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 0 {
		return wire.UnknownOpError{Interface: shmInterface, Type: "event", Op: msg.Op()}
	}

	format := ShmFormat(msg.ReadUint())
	if err := msg.Err(); err != nil {
		return err
	}

	shm.formats.Add(format)
	if shm.Format != nil {
		shm.Format(format)
	}
	return nil
}
