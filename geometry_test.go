package dwr

import (
	"image"
	"testing"

	"deedles.dev/dwr/layershell"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	margins := Margins{Top: 1, Right: 2, Bottom: 3, Left: 4}

	tests := []struct {
		name          string
		width, height uint32
		anchor        layershell.Anchor
		margins       Margins
		want          Margins
		stretchX      bool
		stretchY      bool
	}{
		{name: "Unanchored", width: 10, height: 10, margins: margins},
		{name: "TopLeft", width: 10, height: 10, anchor: layershell.AnchorTop | layershell.AnchorLeft, margins: margins, want: Margins{Top: 1, Left: 4}},
		{name: "BottomRight", width: 10, height: 10, anchor: layershell.AnchorBottom | layershell.AnchorRight, margins: margins, want: Margins{Right: 2, Bottom: 3}},
		{name: "All", anchor: layershell.AnchorAll, margins: margins, want: margins, stretchX: true, stretchY: true},
		{name: "TopBar", height: 30, anchor: layershell.AnchorTop | layershell.AnchorLeft | layershell.AnchorRight, margins: margins, want: Margins{Top: 1, Right: 2, Left: 4}, stretchX: true},
		{name: "SizedBetweenEdges", width: 10, height: 10, anchor: layershell.AnchorLeft | layershell.AnchorRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(tt.width, tt.height, tt.anchor, tt.margins)
			assert.Equal(t, tt.want, p.Margins)
			assert.Equal(t, tt.anchor, p.Anchor)
			assert.Equal(t, tt.stretchX, p.StretchX)
			assert.Equal(t, tt.stretchY, p.StretchY)
			assert.True(t, p.Valid())
		})
	}
}

func TestPlacementValid(t *testing.T) {
	assert.False(t, Resolve(0, 10, layershell.AnchorLeft, Margins{}).Valid())
	assert.False(t, Resolve(10, 0, layershell.AnchorNone, Margins{}).Valid())
	assert.True(t, Resolve(0, 0, layershell.AnchorAll, Margins{}).Valid())
}

func TestRequestSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		anchor        layershell.Anchor
		w, h          uint32
	}{
		{"Sized", 10, 20, layershell.AnchorNone, 10, 20},
		{"Unanchored", 0, 0, layershell.AnchorNone, 1, 1},
		{"StretchedX", 0, 0, layershell.AnchorLeft | layershell.AnchorRight, 0, 1},
		{"StretchedY", 0, 5, layershell.AnchorTop | layershell.AnchorBottom, 1, 5},
		{"All", 0, 0, layershell.AnchorAll, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Resolve(tt.width, tt.height, tt.anchor, Margins{}).RequestSize()
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestPlacementBounds(t *testing.T) {
	output := image.Pt(1000, 500)

	t.Run("Unanchored", func(t *testing.T) {
		p := Resolve(100, 50, layershell.AnchorNone, Margins{})
		assert.Equal(t, image.Rect(450, 225, 550, 275), p.Bounds(output))

		// Margins of unanchored edges have no effect.
		p = Resolve(100, 50, layershell.AnchorNone, Margins{Top: 10, Left: 20})
		assert.Equal(t, image.Rect(450, 225, 550, 275), p.Bounds(output))
	})

	t.Run("TopLeft", func(t *testing.T) {
		anchor := layershell.AnchorTop | layershell.AnchorLeft
		m := Margins{Top: 10, Left: 20, Right: 99, Bottom: 99}
		for _, size := range []image.Point{{100, 50}, {7, 300}} {
			b := Resolve(uint32(size.X), uint32(size.Y), anchor, m).Bounds(output)
			assert.Equal(t, image.Pt(20, 10), b.Min)
			assert.Equal(t, size, b.Size())
		}
	})

	t.Run("BottomRight", func(t *testing.T) {
		p := Resolve(100, 50, layershell.AnchorBottom|layershell.AnchorRight, Margins{Bottom: 5, Right: 6})
		assert.Equal(t, image.Rect(894, 445, 994, 495), p.Bounds(output))
	})

	t.Run("Stretched", func(t *testing.T) {
		p := Resolve(0, 30, layershell.AnchorTop|layershell.AnchorLeft|layershell.AnchorRight, Margins{Left: 10, Right: 10})
		assert.Equal(t, image.Rect(10, 0, 990, 30), p.Bounds(output))
	})

	t.Run("SizedBetweenEdges", func(t *testing.T) {
		p := Resolve(100, 50, layershell.AnchorLeft|layershell.AnchorRight, Margins{Left: 100})
		assert.Equal(t, image.Rect(500, 225, 600, 275), p.Bounds(output))
	})
}
