// Package bin reads and writes the 32-bit words that every argument
// of the wire format is made of. Words are in the host's byte order.
package bin

import (
	"encoding/binary"
	"io"
)

// Word decodes the first four bytes of data.
func Word[T ~int32 | ~uint32](data []byte) T {
	return T(binary.NativeEndian.Uint32(data))
}

// Append appends the encoding of v to data.
func Append[T ~int32 | ~uint32](data []byte, v T) []byte {
	return binary.NativeEndian.AppendUint32(data, uint32(v))
}

func Read[T ~int32 | ~uint32](r io.Reader) (T, error) {
	var data [4]byte
	_, err := io.ReadFull(r, data[:])
	if err != nil {
		return 0, err
	}

	return Word[T](data[:]), nil
}

func Write[T ~int32 | ~uint32](w io.Writer, v T) error {
	var buf [4]byte
	data := Append(buf[:0], v)
	n, err := w.Write(data)
	if (err == nil) && (n < len(data)) {
		return io.ErrShortWrite
	}
	return err
}
