package shm

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"slices"

	wl "deedles.dev/dwr/client"
	"deedles.dev/ximage"
)

// DefaultSlots is the number of buffers that an ImageBuffer allocates
// if it is not told otherwise, which allows drawing the next frame
// while the compositor still reads the previous one.
const DefaultSlots = 2

// Slot is one frame's worth of an ImageBuffer.
type Slot struct {
	owner  *ImageBuffer
	index  int
	buf    *wl.Buffer
	busy   bool
	offset int
}

// Buffer is the wl_buffer that presents the slot's pixels.
func (s *Slot) Buffer() *wl.Buffer {
	return s.buf
}

// Index is the position of the slot in its ImageBuffer.
func (s *Slot) Index() int {
	return s.index
}

// Busy returns true if the slot has been acquired and not yet
// released.
func (s *Slot) Busy() bool {
	return s.busy
}

// Image returns an image backed by the slot's shared memory.
func (s *Slot) Image() draw.Image {
	size := s.owner.Len()
	return &ximage.FormatImage{
		Format: ximage.ARGB8888,
		Rect:   s.owner.Bounds(),
		Pix:    s.owner.pool.mmap[s.offset : s.offset+int(size)],
	}
}

func (s *Slot) release() {
	s.busy = false
}

// pool is the memory behind a generation of buffers.
type pool struct {
	pool *wl.ShmPool
	file *os.File
	mmap Mmap

	// held counts the buffers of a retired pool that the compositor has
	// not released yet.
	held int
}

func newPool(shm *wl.Shm, size int32) (*pool, error) {
	file, err := Create(int64(size))
	if err != nil {
		return nil, fmt.Errorf("create SHM file: %w", err)
	}

	mmap, err := MapShared(file, int(size))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap SHM file: %w", err)
	}

	return &pool{
		pool: shm.CreatePool(file, size),
		file: file,
		mmap: mmap,
	}, nil
}

// grow enlarges the pool in place. It must not be used while the
// compositor holds any of its buffers.
func (p *pool) grow(size int32) error {
	if size <= int32(len(p.mmap)) {
		return nil
	}

	err := p.file.Truncate(int64(size))
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	err = p.mmap.Unmap()
	if err != nil {
		return fmt.Errorf("unmap: %w", err)
	}
	p.mmap = nil

	mmap, err := MapShared(p.file, int(size))
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	p.mmap = mmap

	p.pool.Resize(size)
	return nil
}

func (p *pool) destroy() {
	if p.pool != nil {
		p.pool.Destroy()
		p.pool = nil
	}
	if p.mmap != nil {
		p.mmap.Unmap()
		p.mmap = nil
	}
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
}

// ImageBuffer is a set of same-sized ARGB8888 buffers that share a
// single pool.
type ImageBuffer struct {
	w, h    int32
	shm     *wl.Shm
	pool    *pool
	retired []*pool
	slots   []*Slot
}

// NewImageBuffer allocates n buffers of the given size. A width or
// height of zero is treated as one.
func NewImageBuffer(shm *wl.Shm, w, h int32, n int) (*ImageBuffer, error) {
	if n <= 0 {
		n = DefaultSlots
	}

	s := &ImageBuffer{
		w:     max(w, 1),
		h:     max(h, 1),
		shm:   shm,
		slots: make([]*Slot, n),
	}

	p, err := newPool(shm, s.poolSize())
	if err != nil {
		return nil, err
	}
	s.pool = p

	for i := range s.slots {
		s.slots[i] = &Slot{owner: s, index: i}
	}
	s.createBuffers()

	return s, nil
}

func (s *ImageBuffer) poolSize() int32 {
	return s.Len() * int32(len(s.slots))
}

func (s *ImageBuffer) createBuffers() {
	for i, slot := range s.slots {
		slot.offset = i * int(s.Len())
		slot.busy = false
		slot.buf = s.pool.pool.CreateBuffer(int32(slot.offset), s.w, s.h, s.Stride(), wl.ShmFormatArgb8888)
		slot.buf.Release = slot.release
	}
}

func (s *ImageBuffer) destroyBuffers() {
	for _, slot := range s.slots {
		if (slot != nil) && (slot.buf != nil) {
			slot.buf.Destroy()
			slot.buf = nil
		}
	}
}

// retire swaps the current pool for a new one of the given size. The
// buffers of the old pool that the compositor still holds, and the old
// pool itself, are destroyed once they have all been released.
func (s *ImageBuffer) retire(size int32) error {
	next, err := newPool(s.shm, size)
	if err != nil {
		return err
	}

	old := s.pool
	for _, slot := range s.slots {
		buf := slot.buf
		slot.buf = nil
		if !slot.busy {
			buf.Destroy()
			continue
		}

		old.held++
		buf.Release = func() {
			buf.Destroy()
			s.released(old)
		}
	}

	s.pool = next
	s.retired = append(s.retired, old)
	if old.held == 0 {
		s.released(old)
	}
	return nil
}

func (s *ImageBuffer) released(p *pool) {
	p.held = max(p.held-1, 0)
	if p.held > 0 {
		return
	}

	i := slices.Index(s.retired, p)
	if i < 0 {
		return
	}
	s.retired = slices.Delete(s.retired, i, i+1)
	p.destroy()
}

// Retired returns the number of old pools that are waiting for the
// compositor to release their buffers.
func (s *ImageBuffer) Retired() int {
	return len(s.retired)
}

// Destroy releases every resource held by the buffer.
func (s *ImageBuffer) Destroy() {
	s.destroyBuffers()
	if s.pool != nil {
		s.pool.destroy()
		s.pool = nil
	}
	for _, p := range s.retired {
		p.destroy()
	}
	s.retired = nil
}

func (s *ImageBuffer) Shm() *wl.Shm {
	return s.shm
}

func (s *ImageBuffer) ShmPool() *wl.ShmPool {
	return s.pool.pool
}

// Slots returns the number of slots.
func (s *ImageBuffer) Slots() int {
	return len(s.slots)
}

func (s *ImageBuffer) Stride() int32 {
	return s.w * 4
}

// Len is the size in bytes of a single slot.
func (s *ImageBuffer) Len() int32 {
	return s.Stride() * s.h
}

func (s *ImageBuffer) Cap() int32 {
	return int32(len(s.pool.mmap))
}

func (s *ImageBuffer) Bounds() image.Rectangle {
	return image.Rect(
		0,
		0,
		int(s.w),
		int(s.h),
	)
}

// Acquire returns a slot that the compositor is not using and marks
// it as busy. It returns false if every slot is busy.
func (s *ImageBuffer) Acquire() (*Slot, bool) {
	for _, slot := range s.slots {
		if !slot.busy {
			slot.busy = true
			return slot, true
		}
	}
	return nil, false
}

// Cancel returns a slot that was acquired but never attached.
func (s *ImageBuffer) Cancel(slot *Slot) {
	slot.busy = false
}

// Resize changes the size of every slot, after which every slot is
// free. If the compositor still holds any of the buffers, the new ones
// are allocated from a new pool so that nothing it may be reading is
// overwritten. Otherwise the pool is reused and only ever grows.
func (s *ImageBuffer) Resize(w, h int32) error {
	w, h = max(w, 1), max(h, 1)
	if (w == s.w) && (h == s.h) {
		return nil
	}

	busy := slices.ContainsFunc(s.slots, (*Slot).Busy)
	ow, oh := s.w, s.h
	s.w, s.h = w, h

	if busy {
		err := s.retire(s.poolSize())
		if err != nil {
			s.w, s.h = ow, oh
			return err
		}
		s.createBuffers()
		return nil
	}

	s.destroyBuffers()
	err := s.pool.grow(s.poolSize())
	if err != nil {
		return err
	}

	s.createBuffers()
	return nil
}
