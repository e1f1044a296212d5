package dwr

import (
	"image"

	"deedles.dev/dwr/layershell"
)

// Margins are distances from the edges of an output, measured inward.
// Only the margins of anchored edges have any effect.
type Margins struct {
	Top, Right, Bottom, Left int32
}

// Placement is how a surface's geometry is described to the
// compositor, which computes the final position on its own.
type Placement struct {
	Width, Height uint32
	Anchor        layershell.Anchor

	// Margins are the margins that are sent. Those of unanchored edges
	// are zero.
	Margins Margins

	// StretchX and StretchY are true if the surface is anchored to both
	// edges of an axis and has no size along it, meaning that the
	// compositor decides the size.
	StretchX, StretchY bool
}

// Resolve computes the placement of a surface with the given size,
// anchor, and margins.
func Resolve(width, height uint32, anchor layershell.Anchor, m Margins) Placement {
	p := Placement{
		Width:  width,
		Height: height,
		Anchor: anchor,
	}

	if anchor.Has(layershell.AnchorTop) {
		p.Margins.Top = m.Top
	}
	if anchor.Has(layershell.AnchorBottom) {
		p.Margins.Bottom = m.Bottom
	}
	if anchor.Has(layershell.AnchorLeft) {
		p.Margins.Left = m.Left
	}
	if anchor.Has(layershell.AnchorRight) {
		p.Margins.Right = m.Right
	}

	p.StretchX = (width == 0) && anchor.Has(layershell.AnchorLeft|layershell.AnchorRight)
	p.StretchY = (height == 0) && anchor.Has(layershell.AnchorTop|layershell.AnchorBottom)
	return p
}

// Valid returns false if a size is zero along an axis that the surface
// is not stretched along, which compositors reject.
func (p Placement) Valid() bool {
	return ((p.Width != 0) || p.StretchX) && ((p.Height != 0) || p.StretchY)
}

// RequestSize returns the size that is requested from the compositor.
// A zero size along an axis that the surface is not stretched along is
// requested as one, since compositors reject it.
func (p Placement) RequestSize() (width, height uint32) {
	width, height = p.Width, p.Height
	if (width == 0) && !p.StretchX {
		width = 1
	}
	if (height == 0) && !p.StretchY {
		height = 1
	}
	return width, height
}

// Bounds returns where a layer-shell compositor puts the surface on an
// output of the given size. It is never used to position surfaces,
// only to describe them.
func (p Placement) Bounds(output image.Point) image.Rectangle {
	x0, x1 := place(
		p.Anchor.Has(layershell.AnchorLeft),
		p.Anchor.Has(layershell.AnchorRight),
		int(p.Margins.Left),
		int(p.Margins.Right),
		int(p.Width),
		output.X,
	)
	y0, y1 := place(
		p.Anchor.Has(layershell.AnchorTop),
		p.Anchor.Has(layershell.AnchorBottom),
		int(p.Margins.Top),
		int(p.Margins.Bottom),
		int(p.Height),
		output.Y,
	)
	return image.Rect(x0, y0, x1, y1)
}

// place positions a surface of the given size along one axis of
// length total.
func place(start, end bool, marginStart, marginEnd, size, total int) (int, int) {
	switch {
	case start && end:
		lo, hi := marginStart, total-marginEnd
		if size == 0 {
			return lo, hi
		}
		lo += (hi - lo - size) / 2
		return lo, lo + size

	case start:
		return marginStart, marginStart + size

	case end:
		return total - marginEnd - size, total - marginEnd

	default:
		lo := (total - size) / 2
		return lo, lo + size
	}
}
