package wl

import (
	"fmt"

	"deedles.dev/dwr/wire"
)

const shmPoolInterface = "wl_shm_pool"

type ShmPool struct {
	Proxy
}

func (pool *ShmPool) CreateBuffer(offset, width, height, stride int32, format ShmFormat) *Buffer {
	buf := Buffer{Proxy: NewProxy(pool.display, 1)}
	pool.display.AddObject(&buf)
	pool.display.Enqueue(wire.Message(pool, 0, "create_buffer", &buf, offset, width, height, stride, uint32(format)))

	return &buf
}

func (pool *ShmPool) Destroy() {
	pool.display.Enqueue(wire.Message(pool, 1, "destroy"))
	pool.display.DeleteObject(pool.id)
}

// Resize grows the pool. Pools can never shrink.
func (pool *ShmPool) Resize(size int32) {
	pool.display.Enqueue(wire.Message(pool, 2, "resize", size))
}

func (pool *ShmPool) String() string {
	return fmt.Sprintf("%v@%v", shmPoolInterface, pool.ID())
}

func (pool *ShmPool) MethodName(op uint16) string {
	return "unknown"
}

func (pool *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: shmPoolInterface, Type: "event", Op: msg.Op()}
}
