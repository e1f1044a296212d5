package dwr

import (
	"fmt"

	wl "deedles.dev/dwr/client"
	"deedles.dev/dwr/gpu"
	"deedles.dev/dwr/layershell"
	"deedles.dev/dwr/shm"
)

// State is the lifecycle state of a surface.
type State int

const (
	// StateCreated is the state of a surface that has been requested
	// but whose role has not yet been committed.
	StateCreated State = iota

	// StateConfiguring lasts until the compositor first configures the
	// surface.
	StateConfiguring

	// StateReady means that the surface can be painted.
	StateReady

	// StateRendering lasts from the submission of a frame until the
	// compositor signals that it is ready for the next one.
	StateRendering

	// StateClosed is final.
	StateClosed
)

var stateNames = [...]string{"created", "configuring", "ready", "rendering", "closed"}

func (s State) String() string {
	if (s >= 0) && (int(s) < len(stateNames)) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// geometry is everything about a surface that is double-buffered by
// the compositor.
type geometry struct {
	width, height uint32
	anchor        layershell.Anchor
	margins       Margins
	layer         layershell.Layer
	keyboard      layershell.KeyboardInteractivity
	exclusiveZone int32
}

func (g geometry) placement() Placement {
	return Resolve(g.width, g.height, g.anchor, g.margins)
}

// Surface is a layer surface. Setting its geometry only changes it
// locally; the changes are sent to the compositor when the surface is
// next rendered, so only the latest value of each property is ever
// sent.
type Surface struct {
	client *Client
	id     int
	state  State

	surface *wl.Surface
	layer   *layershell.LayerSurface

	want geometry
	sent geometry

	// configured is the size most recently suggested by the compositor.
	configured [2]uint32

	dirty   bool
	paint   bool
	token   bool
	painter gpu.Painter
	buffers *shm.ImageBuffer
	ctx     *gpu.Context
}

func newSurface(c *Client, id int, cfg SurfaceConfig) *Surface {
	return &Surface{
		client: c,
		id:     id,
		state:  StateCreated,
		want: geometry{
			width:         cfg.Width,
			height:        cfg.Height,
			anchor:        cfg.Anchor,
			margins:       cfg.Margins,
			layer:         c.opts.layer,
			keyboard:      c.opts.keyboard,
			exclusiveZone: c.opts.exclusiveZone,
		},
	}
}

// create gives the surface its role and sends its initial state with
// an empty commit, which the compositor answers with a configure.
func (s *Surface) create(output *wl.Output) {
	c := s.client

	s.surface = c.compositor.CreateSurface()
	s.layer = c.shell.GetLayerSurface(s.surface, output, s.want.layer, c.opts.namespace)
	s.layer.Configure = s.configure
	s.layer.Closed = s.closed

	p := s.want.placement()
	if !p.Valid() {
		c.logger.Warn("surface has no size along an axis that it is not stretched along, using 1", "surface", s.id, "width", p.Width, "height", p.Height, "anchor", p.Anchor)
	}
	w, h := p.RequestSize()
	s.layer.SetSize(w, h)
	s.layer.SetAnchor(p.Anchor)
	s.layer.SetMargin(p.Margins.Top, p.Margins.Right, p.Margins.Bottom, p.Margins.Left)
	s.layer.SetKeyboardInteractivity(s.want.keyboard)
	s.layer.SetExclusiveZone(s.want.exclusiveZone)
	s.surface.Commit()

	s.sent = s.want
	s.sent.width, s.sent.height = w, h
	s.sent.margins = p.Margins
	s.state = StateConfiguring
}

func (s *Surface) configure(serial, width, height uint32) {
	if s.state == StateClosed {
		return
	}
	c := s.client

	s.layer.AckConfigure(serial)
	old := s.configured
	if width != 0 {
		s.configured[0] = width
	}
	if height != 0 {
		s.configured[1] = height
	}

	if s.state != StateConfiguring {
		if s.configured != old {
			s.dirty = true
		}
		c.logger.Debug("surface reconfigured", "surface", s.id, "width", width, "height", height)
		return
	}

	w, h := s.frameSize()
	buffers, err := shm.NewImageBuffer(c.shm, int32(w), int32(h), c.opts.buffers)
	if err != nil {
		c.logger.Error("allocate surface buffers", "surface", s.id, "err", err)
		s.teardown(true)
		return
	}
	s.buffers = buffers
	s.ctx = c.pool.Acquire()

	s.state = StateReady
	s.token = true
	s.dirty = true
	c.resolve(s)
}

func (s *Surface) closed() {
	s.client.logger.Info("surface closed by compositor", "surface", s.id)
	s.teardown(true)
}

// frameSize is the size that the surface is drawn at. Along each axis
// that is what the caller asked for, or what the compositor chose if
// the caller left it up to the compositor.
func (s *Surface) frameSize() (w, h uint32) {
	w, h = s.want.width, s.want.height
	if w == 0 {
		w = s.configured[0]
	}
	if h == 0 {
		h = s.configured[1]
	}
	return max(w, 1), max(h, 1)
}

// teardown releases everything that the surface holds. If destroy is
// false, the connection is already dead and nothing is sent.
func (s *Surface) teardown(destroy bool) {
	if s.state == StateClosed {
		return
	}
	c := s.client

	if destroy {
		if s.layer != nil {
			s.layer.Destroy()
		}
		if s.surface != nil {
			s.surface.Destroy()
		}
	}
	if s.buffers != nil {
		s.buffers.Destroy()
		s.buffers = nil
	}
	if s.ctx != nil {
		c.pool.Release(s.ctx)
		s.ctx = nil
	}

	s.state = StateClosed
	s.token = false
	c.removeSurface(s)
}

// Close destroys the surface. Closing a surface twice is a no-op.
func (s *Surface) Close() error {
	s.teardown(s.client.IsAlive())
	return nil
}

// ID identifies the surface among those created by the same client.
func (s *Surface) ID() int {
	return s.id
}

// IsAlive returns false once the surface has been closed.
func (s *Surface) IsAlive() bool {
	return s.state != StateClosed
}

func (s *Surface) State() State {
	return s.state
}

// Size returns the size that the surface asks the compositor for. Zero
// along an axis means that the compositor decides.
func (s *Surface) Size() (width, height uint32) {
	return s.want.width, s.want.height
}

// FrameSize returns the size in pixels that the surface will be drawn
// at next.
func (s *Surface) FrameSize() (width, height uint32) {
	return s.frameSize()
}

func (s *Surface) Anchor() layershell.Anchor {
	return s.want.anchor
}

func (s *Surface) Margins() Margins {
	return s.want.margins
}

// Placement returns the resolved geometry that will be sent to the
// compositor on the next render.
func (s *Surface) Placement() Placement {
	return s.want.placement()
}

// HasFrameToken returns true if the compositor is ready for a new
// frame.
func (s *Surface) HasFrameToken() bool {
	return s.token
}

// Dirty returns true if the surface has changed since it was last
// rendered.
func (s *Surface) Dirty() bool {
	return s.dirty
}

func (s *Surface) update(f func(*geometry)) error {
	if s.state == StateClosed {
		return ErrSurfaceClosed
	}

	f(&s.want)
	s.dirty = true
	return nil
}

func (s *Surface) SetSize(width, height uint32) error {
	return s.update(func(g *geometry) { g.width, g.height = width, height })
}

func (s *Surface) SetAnchor(anchor layershell.Anchor) error {
	return s.update(func(g *geometry) { g.anchor = anchor })
}

// SetMargin sets the margins. Only the margins of anchored edges have
// any effect.
func (s *Surface) SetMargin(m Margins) error {
	return s.update(func(g *geometry) { g.margins = m })
}

func (s *Surface) SetLayer(layer layershell.Layer) error {
	return s.update(func(g *geometry) { g.layer = layer })
}

func (s *Surface) SetKeyboardInteractivity(k layershell.KeyboardInteractivity) error {
	return s.update(func(g *geometry) { g.keyboard = k })
}

func (s *Surface) SetExclusiveZone(zone int32) error {
	return s.update(func(g *geometry) { g.exclusiveZone = zone })
}

// Invalidate asks for the surface to be painted on the next render
// even if nothing about it has changed.
func (s *Surface) Invalidate() error {
	if s.state == StateClosed {
		return ErrSurfaceClosed
	}
	s.paint = true
	return nil
}

// SetPainter sets the painter that draws the surface. A nil painter
// uses the client's.
func (s *Surface) SetPainter(painter gpu.Painter) error {
	if s.state == StateClosed {
		return ErrSurfaceClosed
	}
	s.painter = painter
	s.paint = true
	return nil
}

// applyGeometry sends every property that has changed since it was
// last sent.
func (s *Surface) applyGeometry() {
	c := s.client
	want := s.want
	p := want.placement()
	want.margins = p.Margins
	want.width, want.height = p.RequestSize()

	if (want.width != s.sent.width) || (want.height != s.sent.height) {
		if !p.Valid() {
			c.logger.Warn("surface has no size along an axis that it is not stretched along, using 1", "surface", s.id, "width", p.Width, "height", p.Height, "anchor", p.Anchor)
		}
		s.layer.SetSize(want.width, want.height)
	}
	if want.anchor != s.sent.anchor {
		s.layer.SetAnchor(want.anchor)
	}
	if want.margins != s.sent.margins {
		m := want.margins
		s.layer.SetMargin(m.Top, m.Right, m.Bottom, m.Left)
	}
	if want.keyboard != s.sent.keyboard {
		s.layer.SetKeyboardInteractivity(want.keyboard)
	}
	if want.exclusiveZone != s.sent.exclusiveZone {
		s.layer.SetExclusiveZone(want.exclusiveZone)
	}
	if want.layer != s.sent.layer {
		if !s.layer.SetLayer(want.layer) {
			c.logger.Warn("compositor cannot move surfaces between layers", "surface", s.id, "layer", want.layer)
			want.layer = s.sent.layer
			s.want.layer = s.sent.layer
		}
	}

	s.sent = want
}

func (s *Surface) String() string {
	w, h := s.Size()
	return fmt.Sprintf("surface %v (%vx%v, %v, %v)", s.id, w, h, s.want.anchor, s.state)
}
