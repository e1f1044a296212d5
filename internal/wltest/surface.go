package wltest

import (
	"deedles.dev/dwr/wire"
)

// Layer surface errors, as defined by wlr-layer-shell.
const (
	errorInvalidSurfaceState = 0
	errorInvalidSize         = 1
)

const (
	anchorTop    = 1
	anchorBottom = 2
	anchorLeft   = 4
	anchorRight  = 8
)

type surface struct {
	object

	attached  bool
	pending   *buffer
	current   *buffer
	frames    []*callback
	role      *layerSurface
	committed bool
}

func (surf *surface) Dispatch(msg *wire.MessageBuffer) error {
	s := surf.server

	switch msg.Op() {
	case 0:
		if err := surf.begin(msg); err != nil {
			return err
		}
		if surf.role != nil {
			surf.role.surface = nil
		}
		s.destroy(surf.id)

	case 1:
		id := msg.ReadUint()
		x, y := msg.ReadInt(), msg.ReadInt()
		if err := surf.begin(msg, id, x, y); err != nil {
			return err
		}

		surf.attached = true
		surf.pending = nil
		if id != 0 {
			buf, ok := s.store.Get(id).(*buffer)
			if !ok {
				s.postError(surf.id, 0, "attached object is not a buffer")
				return nil
			}
			surf.pending = buf
		}

	case 2, 9:
		x, y := msg.ReadInt(), msg.ReadInt()
		w, h := msg.ReadInt(), msg.ReadInt()
		return surf.begin(msg, x, y, w, h)

	case 3:
		id := msg.ReadUint()
		if err := surf.begin(msg, id); err != nil {
			return err
		}
		cb := callback{object: s.object(id, "wl_callback")}
		s.add(&cb)
		surf.frames = append(surf.frames, &cb)

	case 4, 5:
		id := msg.ReadUint()
		return surf.begin(msg, id)

	case 6:
		if err := surf.begin(msg); err != nil {
			return err
		}
		surf.commit()

	case 7, 8:
		v := msg.ReadInt()
		return surf.begin(msg, v)

	case 10:
		x, y := msg.ReadInt(), msg.ReadInt()
		return surf.begin(msg, x, y)

	default:
		return surf.unknown(msg)
	}

	return nil
}

func (surf *surface) commit() {
	s := surf.server

	ls := surf.role
	if (ls != nil) && surf.attached && (surf.pending != nil) && !ls.acked {
		s.postError(ls.id, errorInvalidSurfaceState, "buffer attached before the first configure was acknowledged")
		return
	}

	if surf.attached {
		if (surf.current != nil) && (surf.current != surf.pending) {
			surf.current.release()
		}
		surf.current = surf.pending
		surf.attached = false
		surf.pending = nil

		if surf.current != nil {
			s.commits = append(s.commits, Commit{
				Surface: surf.id,
				Width:   surf.current.width,
				Height:  surf.current.height,
			})
		}
	}

	s.frames = append(s.frames, surf.frames...)
	surf.frames = nil

	if ls != nil {
		ls.commit()
	}
	surf.committed = true
}

// LayerSurfaceState is the committed state of a layer surface.
type LayerSurfaceState struct {
	Namespace             string
	Layer                 uint32
	Width, Height         uint32
	Anchor                uint32
	ExclusiveZone         int32
	Margin                [4]int32 // top, right, bottom, left
	KeyboardInteractivity uint32
	Configured            bool
	Closed                bool
}

type layerSurface struct {
	object

	surface    *surface
	pending    LayerSurfaceState
	current    LayerSurfaceState
	serial     uint32
	acked      bool
	sentWidth  uint32
	sentHeight uint32
}

func (ls *layerSurface) commit() {
	s := ls.server

	configured, closed := ls.current.Configured, ls.current.Closed
	ls.current = ls.pending
	ls.current.Configured, ls.current.Closed = configured, closed

	w, h := ls.current.Width, ls.current.Height
	if (w == 0) && !((ls.current.Anchor&anchorLeft != 0) && (ls.current.Anchor&anchorRight != 0)) {
		s.postError(ls.id, errorInvalidSize, "width is zero but the surface is not anchored to the left and right edges")
		return
	}
	if (h == 0) && !((ls.current.Anchor&anchorTop != 0) && (ls.current.Anchor&anchorBottom != 0)) {
		s.postError(ls.id, errorInvalidSize, "height is zero but the surface is not anchored to the top and bottom edges")
		return
	}

	if ls.current.Configured && (ls.size() == [2]uint32{ls.sentWidth, ls.sentHeight}) {
		return
	}
	if ls.current.Closed {
		return
	}

	if s.hold {
		for _, held := range s.held {
			if held == ls {
				return
			}
		}
		s.held = append(s.held, ls)
		return
	}
	ls.configure()
}

// size returns the size that the compositor gives the surface.
func (ls *layerSurface) size() [2]uint32 {
	w, h := ls.current.Width, ls.current.Height
	if w == 0 {
		w = OutputWidth
	}
	if h == 0 {
		h = OutputHeight
	}
	return [2]uint32{w, h}
}

func (ls *layerSurface) configure() {
	if (ls.surface == nil) || ls.current.Closed {
		return
	}

	size := ls.size()
	ls.serial = ls.server.nextSerial()
	ls.sentWidth, ls.sentHeight = size[0], size[1]
	ls.current.Configured = true
	ls.server.send(ls, 0, "configure", ls.serial, size[0], size[1])
}

func (ls *layerSurface) Dispatch(msg *wire.MessageBuffer) error {
	s := ls.server

	switch msg.Op() {
	case 0:
		w, h := msg.ReadUint(), msg.ReadUint()
		if err := ls.begin(msg, w, h); err != nil {
			return err
		}
		ls.pending.Width, ls.pending.Height = w, h

	case 1:
		anchor := msg.ReadUint()
		if err := ls.begin(msg, anchor); err != nil {
			return err
		}
		if anchor > anchorTop|anchorBottom|anchorLeft|anchorRight {
			s.postError(ls.id, 2, "invalid anchor")
			return nil
		}
		ls.pending.Anchor = anchor

	case 2:
		zone := msg.ReadInt()
		if err := ls.begin(msg, zone); err != nil {
			return err
		}
		ls.pending.ExclusiveZone = zone

	case 3:
		var margin [4]int32
		for i := range margin {
			margin[i] = msg.ReadInt()
		}
		if err := ls.begin(msg, margin[0], margin[1], margin[2], margin[3]); err != nil {
			return err
		}
		ls.pending.Margin = margin

	case 4:
		k := msg.ReadUint()
		if err := ls.begin(msg, k); err != nil {
			return err
		}
		ls.pending.KeyboardInteractivity = k

	case 5:
		id := msg.ReadUint()
		return ls.begin(msg, id)

	case 6:
		serial := msg.ReadUint()
		if err := ls.begin(msg, serial); err != nil {
			return err
		}
		if (serial == 0) || (serial != ls.serial) {
			s.postError(ls.id, errorInvalidSurfaceState, "acknowledged an unknown configure serial")
			return nil
		}
		ls.acked = true

	case 7:
		if err := ls.begin(msg); err != nil {
			return err
		}
		if ls.surface != nil {
			ls.surface.role = nil
			ls.surface = nil
		}
		s.destroy(ls.id)

	case 8:
		layer := msg.ReadUint()
		if err := ls.begin(msg, layer); err != nil {
			return err
		}
		ls.pending.Layer = layer

	default:
		return ls.unknown(msg)
	}

	return nil
}

type layerShell struct {
	object
}

func (shell *layerShell) Dispatch(msg *wire.MessageBuffer) error {
	s := shell.server

	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		surfaceID := msg.ReadUint()
		outputID := msg.ReadUint()
		layer := msg.ReadUint()
		namespace := msg.ReadString()
		if err := shell.begin(msg, id, surfaceID, outputID, layer, namespace); err != nil {
			return err
		}

		surf, ok := s.store.Get(surfaceID).(*surface)
		if !ok {
			s.postError(shell.id, 0, "not a surface")
			return nil
		}
		if surf.role != nil {
			s.postError(shell.id, 0, "surface already has a role")
			return nil
		}
		if surf.committed && (surf.current != nil) {
			s.postError(shell.id, 2, "surface already has a buffer")
			return nil
		}

		ls := layerSurface{
			object:  s.object(id, "zwlr_layer_surface_v1"),
			surface: surf,
		}
		ls.pending.Namespace = namespace
		ls.pending.Layer = layer
		surf.role = &ls
		s.add(&ls)
		s.layers = append(s.layers, &ls)

	case 1:
		if err := shell.begin(msg); err != nil {
			return err
		}
		s.destroy(shell.id)

	default:
		return shell.unknown(msg)
	}

	return nil
}
