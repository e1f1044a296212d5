package dwr

import (
	"deedles.dev/dwr/layershell"
)

// SurfaceConfig is the initial geometry of a new surface.
type SurfaceConfig struct {
	// Width and Height are the size of the surface. Zero means that the
	// compositor decides if both edges of that axis are anchored. On any
	// other axis a size of zero is requested as one.
	Width, Height uint32

	// Anchor is the set of edges that the surface is attached to. If it
	// is empty, the surface is centered.
	Anchor layershell.Anchor

	Margins Margins

	// Output is the name of the output to show the surface on. If it is
	// empty or unknown, the compositor chooses.
	Output string
}

// pendingRequest is a surface that has been asked for but not yet
// configured.
type pendingRequest struct {
	surface *Surface
	onReady func(*Surface)
}

// IsBusy returns true while a surface creation is waiting for the
// compositor.
func (c *Client) IsBusy() bool {
	return c.pending != nil
}

// TryCreateSurface asks the compositor for a new surface. It returns
// false without doing anything if the client is busy with another
// creation or is no longer alive. Otherwise, onReady is called with the
// surface from inside a later call to DispatchPending once the
// compositor has configured it. If the surface is closed or the
// connection dies first, onReady is never called.
func (c *Client) TryCreateSurface(cfg SurfaceConfig, onReady func(*Surface)) bool {
	if !c.IsAlive() || c.IsBusy() {
		return false
	}

	c.nextID++
	s := newSurface(c, c.nextID, cfg)
	s.create(c.findOutput(cfg.Output))

	c.pending = &pendingRequest{surface: s, onReady: onReady}
	c.surfaces = append(c.surfaces, s)
	c.logger.Debug("requested surface", "surface", s.id, "width", cfg.Width, "height", cfg.Height, "anchor", cfg.Anchor)
	return true
}

// resolve hands a configured surface to the callback that asked for
// it. The slot is freed first so that the callback may create another
// surface.
func (c *Client) resolve(s *Surface) {
	req := c.pending
	if (req == nil) || (req.surface != s) {
		return
	}
	c.pending = nil

	c.logger.Debug("surface ready", "surface", s.id)
	if req.onReady != nil {
		req.onReady(s)
	}
}
