// Package dwr is a runtime for Wayland clients that draw surfaces on
// the layers of the desktop, such as panels, docks, and overlays,
// using the wlr-layer-shell protocol extension.
//
// A Client is single-threaded and never blocks once it has been
// created. The caller drives it from its own loop by calling
// DispatchPending, which delivers compositor events, and TryRender,
// which paints every surface that the compositor is ready to show a
// new frame of. Surface creation is asynchronous: TryCreateSurface
// returns immediately and the surface is handed to a callback once the
// compositor has configured it. Only one creation may be in flight at
// a time.
package dwr

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	wl "deedles.dev/dwr/client"
	"deedles.dev/dwr/gpu"
	"deedles.dev/dwr/internal/debug"
	"deedles.dev/dwr/layershell"
)

// Client is a connection to the compositor and owns every surface
// created through it.
type Client struct {
	opts   options
	logger *slog.Logger

	display    *wl.Display
	registry   *wl.Registry
	compositor *wl.Compositor
	shm        *wl.Shm
	shell      *layershell.Shell
	seat       *wl.Seat
	outputs    []*Output

	pipeline *gpu.Pipeline
	pool     *gpu.Pool

	pending  *pendingRequest
	surfaces []*Surface
	nextID   int
	lost     bool
	closed   bool
}

// NewClient connects to the compositor and binds the globals that
// surfaces need. It fails with a ConnectionError if the compositor
// cannot be reached or does not support wlr-layer-shell, and with a
// ShaderCompileError if the rendering pipeline cannot be built. No
// partially usable client is ever returned.
func NewClient(opts ...Option) (c *Client, err error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = debug.Logger()
	}

	pipeline, err := gpu.NewPipeline(logger, o.shaders)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.connectTimeout)
	defer cancel()

	var display *wl.Display
	if o.conn != nil {
		display = wl.Connect(o.conn)
	} else {
		display, err = wl.Dial(ctx)
		if err != nil {
			return nil, ConnectionError{Op: "dial", Err: err}
		}
	}
	defer func() {
		if err != nil {
			display.Close()
		}
	}()

	c = &Client{
		opts:     o,
		logger:   logger,
		display:  display,
		pipeline: pipeline,
		pool:     gpu.NewPool(o.contexts, logger),
	}
	display.Error = func(perr wl.ProtocolError) {
		c.logger.Error("protocol error", "object", perr.Object, "code", perr.Code, "message", perr.Message)
	}

	c.registry = display.GetRegistry()
	err = display.RoundTrip(ctx)
	if err != nil {
		return nil, ConnectionError{Op: "get registry", Err: err}
	}

	err = c.bindGlobals()
	if err != nil {
		return nil, err
	}

	err = display.RoundTrip(ctx)
	if err != nil {
		return nil, ConnectionError{Op: "bind globals", Err: err}
	}

	c.registry.Global = c.global
	c.registry.GlobalRemove = c.removeOutput

	c.logger.Info("connected", "outputs", len(c.outputs), "contexts", o.contexts, "programs", pipeline.Programs())
	return c, nil
}

func (c *Client) bindGlobals() error {
	globals := c.registry.Globals()
	for _, name := range slices.Sorted(maps.Keys(globals)) {
		inter := globals[name]
		switch {
		case wl.IsCompositor(inter) && (c.compositor == nil):
			c.compositor = wl.BindCompositor(c.display, name)
		case wl.IsShm(inter) && (c.shm == nil):
			c.shm = wl.BindShm(c.display, name)
		case layershell.IsShell(inter) && (c.shell == nil):
			c.shell = layershell.BindShell(c.display, name)
		case wl.IsSeat(inter) && (c.seat == nil):
			c.seat = wl.BindSeat(c.display, name)
		case wl.IsOutput(inter):
			c.bindOutput(name)
		}
	}

	required := []struct {
		name  string
		bound bool
	}{
		{"wl_compositor", c.compositor != nil},
		{"wl_shm", c.shm != nil},
		{"zwlr_layer_shell_v1", c.shell != nil},
	}
	for _, r := range required {
		if !r.bound {
			return ConnectionError{Op: "bind", Global: r.name, Err: ErrMissingGlobal}
		}
	}

	return nil
}

// global handles globals that are advertised after the client has been
// created.
func (c *Client) global(name uint32, inter wl.Interface) {
	if wl.IsOutput(inter) {
		c.bindOutput(name)
	}
}

// IsAlive returns false once the connection has died, whether because
// of a protocol error, the compositor hanging up, or Close.
func (c *Client) IsAlive() bool {
	return !c.closed && c.display.Alive()
}

// Err returns the error that killed the connection, if any.
func (c *Client) Err() error {
	if c.closed {
		return ErrClientClosed
	}
	return c.display.Err()
}

// DispatchPending sends queued requests and handles every event that
// has already arrived. It never waits for the compositor. Surface
// creation callbacks are called from inside of it.
func (c *Client) DispatchPending() error {
	if c.closed {
		return ErrClientClosed
	}

	err := c.display.DispatchPending()
	if c.closed {
		// A callback closed the client.
		return ErrClientClosed
	}
	if err != nil {
		c.connectionLost(err)
	}
	return err
}

func (c *Client) flush() {
	if c.closed {
		return
	}

	err := c.display.Flush()
	if err != nil {
		c.connectionLost(err)
	}
}

// connectionLost closes every surface without talking to the
// compositor and abandons the pending request.
func (c *Client) connectionLost(err error) {
	if c.lost {
		return
	}
	c.lost = true

	c.logger.Error("connection lost", "err", err, "surfaces", len(c.surfaces))
	if c.pending != nil {
		c.logger.Debug("dropped pending surface request", "surface", c.pending.surface.id)
		c.pending = nil
	}
	for _, s := range slices.Clone(c.surfaces) {
		s.teardown(false)
	}
}

// Surfaces returns every surface that has not been closed, in
// creation order. It includes the surface that is waiting to be
// configured, if any.
func (c *Client) Surfaces() []*Surface {
	return slices.Clone(c.surfaces)
}

func (c *Client) removeSurface(s *Surface) {
	c.surfaces = slices.DeleteFunc(c.surfaces, func(v *Surface) bool { return v == s })
	if (c.pending != nil) && (c.pending.surface == s) {
		c.pending = nil
	}
}

// Pipeline returns the rendering pipeline shared by every surface.
func (c *Client) Pipeline() *gpu.Pipeline {
	return c.pipeline
}

// Display returns the underlying protocol connection.
func (c *Client) Display() *wl.Display {
	return c.display
}

// Close destroys every surface and closes the connection.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}

	c.pending = nil
	for _, s := range slices.Clone(c.surfaces) {
		s.teardown(true)
	}
	for _, out := range c.outputs {
		out.proxy.Release()
	}
	c.outputs = nil
	if c.seat != nil {
		c.seat.Release()
	}
	c.shell.Destroy()

	c.flush()
	c.closed = true
	c.pool.Close()

	c.logger.Info("disconnected")
	return c.display.Close()
}
