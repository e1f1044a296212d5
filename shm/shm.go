// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// ErrZeroSize is returned when attempting to create an empty shared
// memory file.
var ErrZeroSize = errors.New("zero-length shared memory is not allowed")

// Create creates an anonymous shared memory file of the given size
// that can be sent to the compositor. It prefers memfd_create and
// falls back to an unlinked file in /dev/shm.
func Create(size int64) (*os.File, error) {
	if size <= 0 {
		return nil, ErrZeroSize
	}

	file, err := create()
	if err != nil {
		return nil, err
	}

	err = file.Truncate(size)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("truncate: %w", err)
	}

	return file, nil
}

func create() (*os.File, error) {
	fd, err := unix.MemfdCreate("dwr-shm", unix.MFD_CLOEXEC)
	if err == nil {
		return os.NewFile(uintptr(fd), "dwr-shm"), nil
	}

	path := "/dev/shm/dwr-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	return file, os.Remove(path)
}

type Mmap []byte

func Map(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	cerr := sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})
	if cerr != nil {
		return nil, cerr
	}

	return mmap, err
}

// MapShared maps file for reading and writing.
func MapShared(file *os.File, size int) (Mmap, error) {
	return Map(file, size, unix.PROT_READ|unix.PROT_WRITE)
}

func (mmap Mmap) Unmap() error {
	if mmap == nil {
		return nil
	}
	return unix.Munmap(mmap)
}
