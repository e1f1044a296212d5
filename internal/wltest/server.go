// Package wltest provides a fake compositor for testing clients. It
// speaks the real wire protocol over a socketpair and implements just
// enough of the core protocol and of wlr-layer-shell to drive surfaces
// through their lifecycle under the test's control.
package wltest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"deedles.dev/dwr/internal/debug"
	"deedles.dev/dwr/internal/objstore"
	"deedles.dev/dwr/wire"
	"golang.org/x/sys/unix"
)

// Default dimensions of the fake output.
const (
	OutputWidth  = 1920
	OutputHeight = 1080
)

type global struct {
	name    uint32
	iface   string
	version uint32
}

var defaultGlobals = []global{
	{1, "wl_compositor", 4},
	{2, "wl_shm", 1},
	{3, "zwlr_layer_shell_v1", 4},
	{4, "wl_output", 4},
	{5, "wl_seat", 5},
}

// Request is a request received from the client.
type Request struct {
	Interface string
	ID        uint32
	Method    string
	Args      []any
}

// Name returns the request in the form "interface.method".
func (r Request) Name() string {
	return r.Interface + "." + r.Method
}

func (r Request) String() string {
	args := make([]string, 0, len(r.Args))
	for _, arg := range r.Args {
		args = append(args, fmt.Sprint(arg))
	}
	return fmt.Sprintf("%v@%v.%v(%v)", r.Interface, r.ID, r.Method, strings.Join(args, ", "))
}

// Commit records a wl_surface.commit that had a buffer attached.
type Commit struct {
	Surface       uint32
	Width, Height int32
}

type Option func(*Server)

// WithoutGlobal stops the server from advertising the named
// interface.
func WithoutGlobal(iface string) Option {
	return func(s *Server) {
		s.globals = slices.DeleteFunc(s.globals, func(g global) bool { return g.iface == iface })
	}
}

// WithGlobalVersion changes the advertised version of an interface.
func WithGlobalVersion(iface string, version uint32) Option {
	return func(s *Server) {
		for i := range s.globals {
			if s.globals[i].iface == iface {
				s.globals[i].version = version
			}
		}
	}
}

// Server is a fake compositor with a single client. Requests are
// handled on a background goroutine as soon as they arrive. Events
// that a real compositor would send on its own schedule, such as
// frame callbacks, are held until the test asks for them.
type Server struct {
	mu       sync.Mutex
	conn     *wire.Conn
	client   *wire.Conn
	store    *objstore.Store
	globals  []global
	done     chan struct{}
	err      error
	serial   uint32
	requests []Request
	commits  []Commit
	frames   []*callback
	held     []*layerSurface
	layers   []*layerSurface
	hold     bool
}

// New starts a server. It is shut down when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	server, client, err := socketPair()
	if err != nil {
		t.Fatalf("create socket pair: %v", err)
	}

	s := Server{
		conn:    server,
		client:  client,
		store:   objstore.New(0xFF000000),
		globals: slices.Clone(defaultGlobals),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.store.Add(&display{object: s.object(1, "wl_display")})

	go s.serve()
	t.Cleanup(func() {
		s.Hangup()
		<-s.done
		s.client.Close()
	})

	return &s
}

func socketPair() (server, client *wire.Conn, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, err
	}

	conns := make([]*wire.Conn, 2)
	for i, fd := range fds {
		file := os.NewFile(uintptr(fd), "socketpair")
		c, err := net.FileConn(file)
		file.Close()
		if err != nil {
			return nil, nil, err
		}
		conns[i] = wire.NewConn(c.(*net.UnixConn))
	}
	return conns[0], conns[1], nil
}

// Conn returns the client's end of the connection. It belongs to the
// server and is closed when the test ends, so closing it is optional.
func (s *Server) Conn() *wire.Conn {
	return s.client
}

func (s *Server) serve() {
	defer close(s.done)

	for {
		msg, err := s.conn.ReadMessage(context.Background())
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.mu.Lock()
				s.fail(err)
				s.mu.Unlock()
			}
			return
		}

		s.mu.Lock()
		err = s.dispatch(msg)
		s.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (s *Server) dispatch(msg *wire.MessageBuffer) error {
	obj := s.store.Get(msg.Sender())
	if obj == nil {
		s.postError(msg.Sender(), 0, "unknown object")
		return s.err
	}

	err := obj.Dispatch(msg)
	if err != nil {
		s.fail(err)
	}
	return s.err
}

func (s *Server) fail(err error) {
	if s.err == nil {
		debug.Logger().Debug("fake compositor failed", "err", err)
		s.err = err
	}
}

// Err returns the first error that the server encountered, including
// protocol errors that it sent to the client.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *Server) object(id uint32, iface string) object {
	return object{id: id, iface: iface, server: s}
}

func (s *Server) add(obj wire.Object) {
	s.store.Add(obj)
}

func (s *Server) send(sender wire.Object, op uint16, method string, args ...any) {
	if s.err != nil {
		return
	}

	msg := wire.Message(sender, op, method, args...)
	debug.Printf("server -> %v", msg)
	err := msg.Build(s.conn)
	if err != nil {
		s.fail(fmt.Errorf("send %v: %w", method, err))
	}
}

// destroy forgets an object and confirms the deletion to the client.
func (s *Server) destroy(id uint32) {
	s.store.Delete(id)
	s.send(s.store.Get(1), 1, "delete_id", id)
}

func (s *Server) nextSerial() uint32 {
	s.serial++
	return s.serial
}

func (s *Server) record(obj object, method string, args ...any) {
	req := Request{Interface: obj.iface, ID: obj.id, Method: method, Args: args}
	debug.Printf("server <- %v", req)
	s.requests = append(s.requests, req)
}

func (s *Server) postError(id, code uint32, message string) {
	s.send(s.store.Get(1), 0, "error", id, code, message)
	s.fail(fmt.Errorf("protocol error on object %v: code %v: %v", id, code, message))
}

// PostError sends a wl_display.error, killing the connection.
func (s *Server) PostError(code uint32, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.postError(1, code, message)
}

// Hangup closes the server's end of the connection.
func (s *Server) Hangup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.Close()
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.requests)
}

// Filter returns every request with the given name, such as
// "wl_surface.commit".
func (s *Server) Filter(name string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reqs []Request
	for _, req := range s.requests {
		if req.Name() == name {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// Count returns the number of requests with the given name.
func (s *Server) Count(name string) int {
	return len(s.Filter(name))
}

// Commits returns every commit that attached a buffer.
func (s *Server) Commits() []Commit {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.commits)
}

// Vblank fires every frame callback that is waiting for the next
// refresh.
func (s *Server) Vblank() {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := s.frames
	s.frames = nil
	for _, cb := range frames {
		cb.done(s.nextSerial())
	}
}

// PendingFrames returns the number of frame callbacks that will fire
// on the next Vblank.
func (s *Server) PendingFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.frames)
}

// HoldConfigure determines whether configure events are held back
// until Configure is called.
func (s *Server) HoldConfigure(hold bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hold = hold
}

// Configure sends every configure event that has been held back.
func (s *Server) Configure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := s.held
	s.held = nil
	for _, ls := range held {
		ls.configure()
	}
}

// LayerSurfaces returns the committed state of every layer surface
// that the client has created, in creation order.
func (s *Server) LayerSurfaces() []LayerSurfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]LayerSurfaceState, 0, len(s.layers))
	for _, ls := range s.layers {
		states = append(states, ls.current)
	}
	return states
}

// CloseLayerSurface sends closed to the nth layer surface that the
// client has created.
func (s *Server) CloseLayerSurface(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls := s.layers[n]
	ls.current.Closed = true
	s.send(ls, 1, "closed")
}
