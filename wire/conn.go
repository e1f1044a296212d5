package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"deedles.dev/dwr/internal/bin"
	"golang.org/x/sys/unix"
)

const (
	// readSize is the size of the chunks read from the socket at a
	// time. libwayland uses the same size for its ring buffer.
	readSize = 4096

	// maxFDs is the most file descriptors that can be received with
	// a single read.
	maxFDs = 28
)

func pop[T any, S ~[]T](s *S) (v T, ok bool) {
	if len(*s) == 0 {
		return v, false
	}

	v = (*s)[0]
	*s = (*s)[1:]
	return v, true
}

func xdgRuntimeDir() string {
	dir, ok := os.LookupEnv("XDG_RUNTIME_DIR")
	if ok {
		return dir
	}
	return fmt.Sprintf("/var/run/user/%v", os.Getuid())
}

// SocketPath determines the path to the Wayland Unix domain socket
// based on the contents of the $WAYLAND_DISPLAY environment variable.
// It does not attempt to determine if the value corresponds to an
// actual socket.
func SocketPath() string {
	v, ok := os.LookupEnv("WAYLAND_DISPLAY")
	if !ok {
		v = "wayland-0"
	}
	if filepath.IsAbs(v) {
		return v
	}

	return filepath.Join(xdgRuntimeDir(), v)
}

// Conn represents a low-level Wayland connection. It buffers incoming
// data until complete messages are available and keeps track of file
// descriptors that have been received but not yet claimed by a
// message.
//
// A Conn is not safe for concurrent use.
type Conn struct {
	conn *net.UnixConn
	in   []byte
	fds  []int
}

// NewConn creates a new Conn that wraps c. After this is called, use
// the provided Close method to close c instead of calling its own
// Close method.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{
		conn: c,
	}
}

// Close closes the underlying connection along with any received
// file descriptors that were never claimed.
func (c *Conn) Close() error {
	for _, fd := range c.fds {
		unix.Close(fd)
	}
	c.fds = nil
	return c.conn.Close()
}

// SetReadDeadline sets the deadline for blocking reads. A zero value
// disables the deadline.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *Conn) readFDs(data []byte) error {
	cmsgs, err := unix.ParseSocketControlMessage(data)
	if err != nil {
		return fmt.Errorf("parse socket control messages: %w", err)
	}
	for _, cmsg := range cmsgs {
		fds, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			if errors.Is(err, unix.EINVAL) {
				continue
			}
			return fmt.Errorf("parse unix control message: %w", err)
		}
		c.fds = append(c.fds, fds...)
	}
	return nil
}

func (c *Conn) popFD() (int, bool) {
	return pop(&c.fds)
}

// fill reads whatever is available from the socket into the input
// buffer. If block is false and nothing is available, it returns
// ErrWouldBlock.
func (c *Conn) fill(block bool) error {
	buf := make([]byte, readSize)
	oob := make([]byte, unix.CmsgSpace(maxFDs*4))

	var n, oobn int
	var err error
	if block {
		n, oobn, _, _, err = c.conn.ReadMsgUnix(buf, oob)
	} else {
		rc, rerr := c.conn.SyscallConn()
		if rerr != nil {
			return rerr
		}
		rerr = rc.Read(func(fd uintptr) bool {
			n, oobn, _, _, err = unix.Recvmsg(int(fd), buf, oob, unix.MSG_DONTWAIT|unix.MSG_CMSG_CLOEXEC)
			return true
		})
		if rerr != nil {
			return rerr
		}
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return ErrWouldBlock
		}
	}
	if err != nil {
		return err
	}
	if (n == 0) && (oobn == 0) {
		return io.EOF
	}

	c.in = append(c.in, buf[:n]...)
	return c.readFDs(oob[:oobn])
}

// next removes the first complete message from the input buffer, if
// there is one.
func (c *Conn) next() (*MessageBuffer, error) {
	if len(c.in) < headerSize {
		return nil, nil
	}

	sender := bin.Word[uint32](c.in[:4])
	so := bin.Word[uint32](c.in[4:8])

	size := uint16(so >> 16)
	if (size < headerSize) || (size%4 != 0) {
		return nil, MessageSizeError{Sender: sender, Size: size}
	}
	if len(c.in) < int(size) {
		return nil, nil
	}

	data := make([]byte, size-headerSize)
	copy(data, c.in[headerSize:size])
	c.in = c.in[size:]

	msg := MessageBuffer{
		conn:   c,
		sender: sender,
		op:     uint16(so & 0xFFFF),
		size:   size,
	}
	msg.data.Reset(data)
	return &msg, nil
}

// ReadMessage blocks until a complete message has been read from the
// socket. If ctx has a deadline, it is applied to the underlying
// reads.
func (c *Conn) ReadMessage(ctx context.Context) (*MessageBuffer, error) {
	if deadline, ok := ctx.Deadline(); ok {
		c.SetReadDeadline(deadline)
		defer c.SetReadDeadline(time.Time{})
	}

	for {
		msg, err := c.next()
		if (msg != nil) || (err != nil) {
			return msg, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err = c.fill(true)
		if err != nil {
			return nil, fmt.Errorf("read message: %w", err)
		}
	}
}

// ReadPending reads everything that is currently available on the
// socket without blocking and returns all of the complete messages
// that have been received. Messages that were completed before an
// error occurred are returned along with that error.
func (c *Conn) ReadPending() (msgs []*MessageBuffer, err error) {
	for {
		err = c.fill(false)
		if err != nil {
			break
		}
	}
	if errors.Is(err, ErrWouldBlock) {
		err = nil
	}

	for {
		msg, merr := c.next()
		if merr != nil {
			return msgs, errors.Join(err, merr)
		}
		if msg == nil {
			return msgs, err
		}
		msgs = append(msgs, msg)
	}
}

// Dial opens a connection to the Wayland socket based on the current
// environment. It follows the procedure outlined at
// https://wayland-book.com/protocol-design/wire-protocol.html#transports
func Dial(ctx context.Context) (*Conn, error) {
	if v, ok := os.LookupEnv("WAYLAND_SOCKET"); ok {
		fd, err := strconv.ParseInt(v, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("parse WAYLAND_SOCKET fd: %w", err)
		}
		file := os.NewFile(uintptr(fd), "WAYLAND_SOCKET")
		defer file.Close()

		c, err := net.FileConn(file)
		if err != nil {
			return nil, fmt.Errorf("open WAYLAND_SOCKET connection: %w", err)
		}
		uc, ok := c.(*net.UnixConn)
		if !ok {
			c.Close()
			return nil, fmt.Errorf("WAYLAND_SOCKET is not a Unix socket: %T", c)
		}
		return NewConn(uc), nil
	}

	var d net.Dialer
	s, err := d.DialContext(ctx, "unix", SocketPath())
	if err != nil {
		return nil, err
	}
	return NewConn(s.(*net.UnixConn)), nil
}
