package wl

import (
	"context"
	"errors"
	"fmt"
	"os"

	"deedles.dev/dwr/internal/cq"
	"deedles.dev/dwr/internal/debug"
	"deedles.dev/dwr/internal/objstore"
	"deedles.dev/dwr/internal/set"
	"deedles.dev/dwr/wire"
)

const displayInterface = "wl_display"

// ErrDisplayClosed is returned by operations on a Display after Close
// has been called.
var ErrDisplayClosed = errors.New("display closed")

// Display is the connection to the compositor. It owns the object
// store and the queue of outgoing requests. Requests are only written
// to the socket by Flush, DispatchPending, and RoundTrip, and events
// are only read and dispatched by the latter two, so all event
// handlers run on the goroutine that calls them.
//
// Once the connection fails, either because of a protocol error, an
// I/O error, or the compositor hanging up, the Display is dead: every
// further request is dropped and every operation returns the error
// that killed it.
type Display struct {
	Proxy

	// Error is called when the compositor reports a protocol error.
	// The connection is dead by the time that it is called.
	Error func(ProtocolError)

	conn     *wire.Conn
	store    *objstore.Store
	zombies  set.Set[uint32]
	queue    *cq.Queue[*wire.MessageBuilder]
	registry *Registry
	err      error
	closed   bool
}

// Dial connects to the compositor indicated by the environment.
func Dial(ctx context.Context) (*Display, error) {
	c, err := wire.Dial(ctx)
	if err != nil {
		return nil, err
	}
	return Connect(c), nil
}

// Connect returns a Display that uses an already established
// connection.
func Connect(c *wire.Conn) *Display {
	display := Display{
		conn:    c,
		store:   objstore.New(1),
		zombies: make(set.Set[uint32]),
		queue:   cq.New[*wire.MessageBuilder](),
	}
	display.Proxy = NewProxy(&display, 1)
	display.AddObject(&display)

	return &display
}

func (display *Display) String() string {
	return fmt.Sprintf("%v@%v", displayInterface, display.ID())
}

func (display *Display) MethodName(op uint16) string {
	switch op {
	case 0:
		return "error"
	case 1:
		return "delete_id"
	default:
		return "unknown"
	}
}

// Close closes the connection. Queued requests are discarded.
func (display *Display) Close() error {
	if display.closed {
		return nil
	}
	display.closed = true

	if display.err != nil {
		return nil
	}
	display.fail(ErrDisplayClosed)
	return display.conn.Close()
}

// Err returns the error that killed the connection, or nil if it is
// still alive.
func (display *Display) Err() error {
	return display.err
}

// Alive returns true if the connection can still be used.
func (display *Display) Alive() bool {
	return display.err == nil
}

func (display *Display) fail(err error) error {
	if display.err != nil {
		return display.err
	}

	debug.Logger().Debug("connection lost", "err", err)
	display.err = err
	for _, msg := range display.queue.Get() {
		msg.Discard()
	}
	if !errors.Is(err, ErrDisplayClosed) {
		display.conn.Close()
	}
	return err
}

// AddObject adds obj to the object store, assigning it an ID.
func (display *Display) AddObject(obj wire.Object) {
	display.store.Add(obj)
}

// GetObject returns the object with the given ID, or nil if there is
// no such object.
func (display *Display) GetObject(id uint32) wire.Object {
	return display.store.Get(id)
}

// DeleteObject removes the object with the given ID from the store.
// It should be called right after a destructor request has been
// enqueued. Events that were already in flight for the object are
// ignored until the compositor confirms the deletion.
func (display *Display) DeleteObject(id uint32) {
	display.store.Delete(id)
	display.zombies.Add(id)
}

// Enqueue adds a request to the outgoing queue. It is dropped if the
// connection is dead.
func (display *Display) Enqueue(msg *wire.MessageBuilder) {
	if display.err != nil {
		msg.Discard()
		return
	}
	display.queue.Add(msg)
}

// Pending returns the number of requests waiting to be sent.
func (display *Display) Pending() int {
	return display.queue.Len()
}

// Flush writes all queued requests to the socket.
func (display *Display) Flush() error {
	if display.err != nil {
		return display.err
	}

	queue := display.queue.Get()
	for i, msg := range queue {
		debug.Printf(" -> %v", msg)
		err := msg.Build(display.conn)
		if err != nil {
			for _, msg := range queue[i+1:] {
				msg.Discard()
			}
			return display.fail(fmt.Errorf("send %v: %w", msg.Method, err))
		}
	}
	return nil
}

func (display *Display) dispatch(msg *wire.MessageBuffer) error {
	obj := display.store.Get(msg.Sender())
	if obj == nil {
		if display.zombies.Has(msg.Sender()) {
			debug.Printf("ignoring event %v for deleted object %v", msg.Op(), msg.Sender())
			return nil
		}
		return wire.UnknownSenderIDError{Msg: msg}
	}

	err := obj.Dispatch(msg)
	debug.Printf("%v", msg.Debug(obj))
	return err
}

// DispatchPending sends all queued requests, then reads and dispatches
// every event that is available without blocking, and finally sends
// any requests that the event handlers queued. It never waits for the
// compositor.
func (display *Display) DispatchPending() error {
	err := display.Flush()
	if err != nil {
		return err
	}

	msgs, rerr := display.conn.ReadPending()
	for _, msg := range msgs {
		err := display.dispatch(msg)
		if err != nil {
			return display.fail(err)
		}
		if display.err != nil {
			return display.err
		}
	}
	if rerr != nil {
		return display.fail(fmt.Errorf("read events: %w", rerr))
	}

	return display.Flush()
}

// RoundTrip blocks until the compositor has processed every request
// sent so far, dispatching events as they arrive. Running out of time
// in ctx does not kill the connection.
func (display *Display) RoundTrip(ctx context.Context) error {
	var done bool
	display.Sync().Then(func(uint32) { done = true })

	err := display.Flush()
	if err != nil {
		return err
	}

	for !done {
		msg, err := display.conn.ReadMessage(ctx)
		if err != nil {
			if (ctx.Err() != nil) || errors.Is(err, os.ErrDeadlineExceeded) {
				return fmt.Errorf("round trip: %w", context.DeadlineExceeded)
			}
			return display.fail(fmt.Errorf("round trip: %w", err))
		}

		err = display.dispatch(msg)
		if err != nil {
			return display.fail(err)
		}
		if display.err != nil {
			return display.err
		}

		err = display.Flush()
		if err != nil {
			return err
		}
	}

	return nil
}

// Sync asks the compositor to fire the returned callback once it has
// processed every request sent before it.
func (display *Display) Sync() *Callback {
	callback := Callback{Proxy: NewProxy(display, 1)}
	display.AddObject(&callback)
	display.Enqueue(wire.Message(display, 0, "sync", &callback))

	return &callback
}

// GetRegistry returns the registry, creating it the first time that
// it is called.
func (display *Display) GetRegistry() *Registry {
	if display.registry != nil {
		return display.registry
	}

	registry := Registry{
		Proxy:   NewProxy(display, 1),
		globals: make(map[uint32]Interface),
	}
	display.AddObject(&registry)
	display.Enqueue(wire.Message(display, 1, "get_registry", &registry))
	display.registry = &registry
	return &registry
}

func (display *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		objectID := msg.ReadUint()
		code := msg.ReadUint()
		message := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}

		perr := ProtocolError{
			ObjectID: objectID,
			Code:     code,
			Message:  message,
		}
		if obj := display.store.Get(objectID); obj != nil {
			perr.Object = fmt.Sprint(obj)
		}
		display.fail(perr)
		if display.Error != nil {
			display.Error(perr)
		}
		return perr

	case 1:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		display.store.Delete(id)
		if !display.zombies.Delete(id) {
			debug.Printf("object %v destroyed by the compositor", id)
		}
		return nil

	default:
		return wire.UnknownOpError{Interface: displayInterface, Type: "event", Op: msg.Op()}
	}
}
