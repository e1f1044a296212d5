package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

var (
	// ErrNotCurrent is returned when drawing with a context that has not
	// been made current.
	ErrNotCurrent = errors.New("context is not current")

	// ErrContextBusy is returned by MakeCurrent when another context is
	// already current.
	ErrContextBusy = errors.New("another context is current")

	// ErrContextReleased is returned when using a context after the last
	// reference to it has been released.
	ErrContextReleased = errors.New("context released")
)

// Context is a rendering target. Surfaces draw into a context and
// then present it into their shared memory buffers.
type Context struct {
	id      int
	canvas  *gg.Context
	refs    int
	current bool
}

// ID identifies the context within its pool.
func (c *Context) ID() int {
	return c.id
}

// Canvas returns the underlying gg context.
func (c *Context) Canvas() *gg.Context {
	return c.canvas
}

// Size returns the size of the context's pixel buffer.
func (c *Context) Size() (w, h int) {
	return c.canvas.Width(), c.canvas.Height()
}

// Current returns true if the context is bound for drawing.
func (c *Context) Current() bool {
	return c.current
}

// Prepare sizes the context for a frame of the given dimensions. A
// zero dimension is treated as one. Shared contexts are prepared by
// every surface that draws with them, so it must be called while the
// context is current.
func (c *Context) Prepare(w, h int) error {
	if !c.current {
		return ErrNotCurrent
	}
	return c.canvas.Resize(max(w, 1), max(h, 1))
}

// Present copies the rendered pixels into dst, which is usually a
// shared memory slot.
func (c *Context) Present(dst draw.Image) error {
	if !c.current {
		return ErrNotCurrent
	}

	err := c.canvas.FlushGPU()
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	src := c.canvas.Image()
	draw.Copy(dst, dst.Bounds().Min, src, src.Bounds(), draw.Src, nil)
	return nil
}

// ContextMode determines how a pool hands out contexts.
type ContextMode int

const (
	// ContextShared makes every surface draw with the same context.
	ContextShared ContextMode = iota

	// ContextPerSurface gives every surface its own context.
	ContextPerSurface
)

var contextModeNames = [...]string{"shared", "per_surface"}

func (m ContextMode) String() string {
	if (m >= 0) && (int(m) < len(contextModeNames)) {
		return contextModeNames[m]
	}
	return fmt.Sprintf("ContextMode(%d)", int(m))
}

func ParseContextMode(v string) (ContextMode, error) {
	for i, name := range contextModeNames {
		if strings.EqualFold(v, name) {
			return ContextMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown context mode: %q", v)
}

// Pool owns the rendering contexts of a client. At most one context is
// current at a time.
type Pool struct {
	mode     ContextMode
	logger   *slog.Logger
	shared   *Context
	contexts map[int]*Context
	current  *Context
	nextID   int
}

func NewPool(mode ContextMode, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pool{
		mode:     mode,
		logger:   logger,
		contexts: make(map[int]*Context),
	}
}

func (p *Pool) Mode() ContextMode {
	return p.mode
}

// Len returns the number of live contexts.
func (p *Pool) Len() int {
	return len(p.contexts)
}

// Current returns the current context, or nil if there is none.
func (p *Pool) Current() *Context {
	return p.current
}

func (p *Pool) create() *Context {
	p.nextID++
	c := Context{
		id:     p.nextID,
		canvas: gg.NewContext(1, 1),
	}
	p.contexts[c.id] = &c
	p.logger.Debug("created rendering context", "id", c.id, "mode", p.mode)
	return &c
}

// Acquire returns a context for a new surface. In shared mode every
// call returns the same context until all references to it are
// released.
func (p *Pool) Acquire() *Context {
	var c *Context
	switch p.mode {
	case ContextShared:
		if p.shared == nil {
			p.shared = p.create()
		}
		c = p.shared
	default:
		c = p.create()
	}

	c.refs++
	return c
}

// Release drops a reference to c. The context is destroyed once no
// surface uses it.
func (p *Pool) Release(c *Context) {
	if (c == nil) || (c.refs <= 0) {
		return
	}

	c.refs--
	if c.refs > 0 {
		return
	}

	p.destroy(c)
}

func (p *Pool) destroy(c *Context) {
	if p.current == c {
		p.current = nil
		c.current = false
	}
	if p.shared == c {
		p.shared = nil
	}
	c.refs = 0
	delete(p.contexts, c.id)
	c.canvas.Close()
	p.logger.Debug("destroyed rendering context", "id", c.id)
}

// MakeCurrent binds c for drawing. The returned function unbinds it
// again and is safe to call more than once. Binding is exclusive, so
// it fails with ErrContextBusy while any context, including c itself,
// is current.
func (p *Pool) MakeCurrent(c *Context) (release func(), err error) {
	if (c == nil) || (c.refs <= 0) {
		return nil, ErrContextReleased
	}
	if p.current != nil {
		return nil, ErrContextBusy
	}

	p.current = c
	c.current = true
	return func() {
		if p.current == c {
			p.current = nil
			c.current = false
		}
	}, nil
}

// Close destroys every context regardless of outstanding references.
func (p *Pool) Close() {
	for _, c := range p.contexts {
		p.destroy(c)
	}
}
