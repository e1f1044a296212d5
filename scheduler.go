package dwr

import (
	"fmt"
	"image/draw"

	"deedles.dev/dwr/gpu"
)

// RenderResult is the kind of outcome of an attempt to render a
// surface.
type RenderResult int

const (
	// Rendered means that a frame was submitted.
	Rendered RenderResult = iota

	// RenderSkipped means that there was nothing to do or that it was
	// not yet the surface's turn. It is not an error.
	RenderSkipped

	// RenderFailed means that the frame could not be drawn. The surface
	// keeps its frame token and may be rendered again.
	RenderFailed
)

var renderResultNames = [...]string{"rendered", "skipped", "failed"}

func (r RenderResult) String() string {
	if (r >= 0) && (int(r) < len(renderResultNames)) {
		return renderResultNames[r]
	}
	return fmt.Sprintf("RenderResult(%d)", int(r))
}

// SkipReason explains why a surface was not rendered.
type SkipReason int

const (
	NotSkipped SkipReason = iota

	// NotConfigured means that the compositor has not configured the
	// surface yet.
	NotConfigured

	// NoToken means that the compositor is not ready for another frame.
	NoToken

	// Clean means that nothing has changed since the last frame.
	Clean

	// BufferBusy means that the compositor still holds every buffer of
	// the surface.
	BufferBusy
)

var skipReasonNames = [...]string{"", "not configured", "no frame token", "clean", "buffers busy"}

func (r SkipReason) String() string {
	if (r >= 0) && (int(r) < len(skipReasonNames)) {
		return skipReasonNames[r]
	}
	return fmt.Sprintf("SkipReason(%d)", int(r))
}

// RenderOutcome is the result of trying to render a surface.
type RenderOutcome struct {
	Surface *Surface
	Result  RenderResult
	Reason  SkipReason
	Err     error
}

func (o RenderOutcome) Rendered() bool {
	return o.Result == Rendered
}

func (o RenderOutcome) String() string {
	switch o.Result {
	case RenderSkipped:
		return fmt.Sprintf("surface %v: skipped: %v", o.Surface.ID(), o.Reason)
	case RenderFailed:
		return fmt.Sprintf("surface %v: failed: %v", o.Surface.ID(), o.Err)
	default:
		return fmt.Sprintf("surface %v: %v", o.Surface.ID(), o.Result)
	}
}

func skipped(s *Surface, reason SkipReason) RenderOutcome {
	return RenderOutcome{Surface: s, Result: RenderSkipped, Reason: reason}
}

func failed(s *Surface, err error) RenderOutcome {
	return RenderOutcome{Surface: s, Result: RenderFailed, Err: err}
}

// TryRender renders every surface that has changed and that the
// compositor is ready to take a new frame of, in creation order, and
// then sends the resulting requests. It returns one outcome per
// surface. Surfaces that share a rendering context are drawn one after
// another.
func (c *Client) TryRender() []RenderOutcome {
	if c.closed {
		return nil
	}

	outcomes := make([]RenderOutcome, 0, len(c.surfaces))
	for _, s := range c.Surfaces() {
		outcomes = append(outcomes, s.render(nil, false))
	}

	c.flush()
	return outcomes
}

// TryRender renders the surface if it has changed and the compositor
// is ready for a new frame of it, and then sends the resulting
// requests.
func (s *Surface) TryRender() RenderOutcome {
	outcome := s.render(nil, false)
	s.client.flush()
	return outcome
}

// DemoRender immediately paints the demo scene to the surface, whether
// or not it has changed, and sends the frame. It still waits for the
// compositor to be ready for a new frame.
func (s *Surface) DemoRender() RenderOutcome {
	outcome := s.render(gpu.DemoPainter, true)
	s.client.flush()
	return outcome
}

// render submits a frame if the surface holds a frame token. A nil
// painter uses the surface's own.
func (s *Surface) render(painter gpu.Painter, force bool) RenderOutcome {
	switch {
	case s.state == StateClosed:
		return failed(s, ErrSurfaceClosed)
	case (s.state != StateReady) && (s.state != StateRendering):
		return skipped(s, NotConfigured)
	case !s.token:
		return skipped(s, NoToken)
	case !s.dirty && !s.paint && !force:
		return skipped(s, Clean)
	}

	c := s.client
	if painter == nil {
		painter = s.painter
	}
	if painter == nil {
		painter = c.opts.painter
	}

	w, h := s.frameSize()
	bounds := s.buffers.Bounds()
	if (bounds.Dx() != int(w)) || (bounds.Dy() != int(h)) {
		err := s.buffers.Resize(int32(w), int32(h))
		if err != nil {
			return failed(s, fmt.Errorf("resize buffers: %w", err))
		}
	}

	slot, ok := s.buffers.Acquire()
	if !ok {
		return skipped(s, BufferBusy)
	}

	err := s.draw(painter, slot.Image())
	if err != nil {
		s.buffers.Cancel(slot)
		c.logger.Warn("render failed", "surface", s.id, "err", err)
		return failed(s, err)
	}

	s.applyGeometry()
	s.surface.Attach(slot.Buffer(), 0, 0)
	s.surface.DamageBuffer(0, 0, int32(w), int32(h))
	s.surface.Frame().Then(s.frameDone)
	s.surface.Commit()

	s.token = false
	s.dirty = false
	s.paint = false
	s.state = StateRendering
	return RenderOutcome{Surface: s, Result: Rendered}
}

// draw runs the painter with the surface's context bound. The context
// is released again even if drawing fails.
func (s *Surface) draw(painter gpu.Painter, dst draw.Image) error {
	c := s.client

	release, err := c.pool.MakeCurrent(s.ctx)
	if err != nil {
		return fmt.Errorf("make context current: %w", err)
	}
	defer release()

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	err = s.ctx.Prepare(w, h)
	if err != nil {
		return fmt.Errorf("prepare context: %w", err)
	}

	err = painter(gpu.NewFrame(c.pipeline, s.ctx))
	if err != nil {
		return fmt.Errorf("paint: %w", err)
	}

	return s.ctx.Present(dst)
}

func (s *Surface) frameDone(uint32) {
	if s.state != StateRendering {
		return
	}
	s.state = StateReady
	s.token = true
}
