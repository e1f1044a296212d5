package gpu

import "github.com/gogpu/gg"

// Painter draws one frame of a surface.
type Painter func(*Frame) error

// Frame is the view of a pipeline and a current context that a Painter
// draws through.
type Frame struct {
	pipeline *Pipeline
	ctx      *Context
}

func NewFrame(pipeline *Pipeline, ctx *Context) *Frame {
	return &Frame{pipeline: pipeline, ctx: ctx}
}

// Size returns the size of the frame in pixels.
func (f *Frame) Size() (w, h int) {
	return f.ctx.Size()
}

// Canvas gives direct access to the context for drawing that the
// pipeline does not cover. Draws made through it are not counted.
func (f *Frame) Canvas() *gg.Context {
	return f.ctx.canvas
}

func (f *Frame) Clear(c gg.RGBA) error {
	return f.pipeline.Clear(f.ctx, c)
}

func (f *Frame) Draw(call DrawCall) error {
	return f.pipeline.Draw(f.ctx, call)
}

// Quad draws a quad of the given size with its bottom-left corner at
// offset.
func (f *Frame) Quad(c gg.RGBA, offset, size Point) error {
	return f.Draw(DrawCall{
		Program: ProgramQuadColor,
		Color:   c,
		Offset:  offset,
		Size:    size,
	})
}

// Rect is Quad with the position and size given separately.
func (f *Frame) Rect(c gg.RGBA, x, y, w, h float64) error {
	return f.Quad(c, Point{x, y}, Point{w, h})
}

// Polygon fills the polygon described by verts.
func (f *Frame) Polygon(c gg.RGBA, verts ...Point) error {
	return f.Draw(DrawCall{
		Program:  ProgramFlatColor,
		Color:    c,
		Vertices: verts,
	})
}

// LineLoop strokes the closed outline through verts.
func (f *Frame) LineLoop(c gg.RGBA, verts ...Point) error {
	return f.Draw(DrawCall{
		Program:  ProgramFlatColor,
		Mode:     ModeLineLoop,
		Color:    c,
		Vertices: verts,
	})
}

// DefaultClearColor is the background of the demo scene.
var DefaultClearColor = gg.RGBA2(0.2, 0.1, 0, 1)

// DefaultPainter returns a painter that covers the whole frame with a
// single quad of colour c.
func DefaultPainter(c gg.RGBA) Painter {
	return func(f *Frame) error {
		return f.Quad(c, Point{-1, -1}, Point{2, 2})
	}
}

// DemoPainter draws the demo scene: two outlined triangles and two
// squares over a dark background.
func DemoPainter(f *Frame) error {
	err := f.Clear(DefaultClearColor)
	if err != nil {
		return err
	}

	err = f.LineLoop(gg.RGBA2(0, 0, 1, 1), Point{-0.5, 0.5}, Point{0.5, 0.5}, Point{0.5, -0.5})
	if err != nil {
		return err
	}
	err = f.LineLoop(gg.RGBA2(0, 1, 0.5, 1), Point{-0.5, 0.5}, Point{-0.5, -0.5}, Point{0.5, -0.5})
	if err != nil {
		return err
	}

	pink := gg.RGBA2(1, 0, 0.5, 1)
	err = f.Rect(pink, -0.2, -0.2, 0.4, 0.4)
	if err != nil {
		return err
	}
	return f.Rect(pink, -0.8, -0.8, 0.4, 0.4)
}
