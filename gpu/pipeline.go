// Package gpu compiles the shader programs used to paint surfaces and
// issues draw calls against rendering contexts.
//
// Programs are compiled from WGSL exactly once, when the pipeline is
// created, so that a broken program fails startup instead of a frame.
// Draw calls are rasterized by gg, which hands the shapes it can
// accelerate to its GPU backend and rasterizes the rest on the CPU.
// Building with the nogpu tag leaves out the GPU backend entirely.
//
// Drawing requires a context that has been made current with
// Pool.MakeCurrent, which keeps the cost of switching contexts visible
// to the caller.
package gpu

import (
	"fmt"
	"image"
	"log/slog"
	"maps"
	"slices"

	"github.com/gogpu/gg"
)

// Point is a position in normalized device coordinates, where (-1, -1)
// is the bottom-left corner of the surface and (1, 1) the top-right.
type Point struct {
	X, Y float64
}

// Mode is the way in which a draw call's vertices are rasterized.
type Mode int

const (
	// ModeFill fills the polygon described by the vertices.
	ModeFill Mode = iota

	// ModeLineLoop strokes the outline of the vertices, closing it back
	// to the first one.
	ModeLineLoop
)

func (m Mode) String() string {
	switch m {
	case ModeFill:
		return "fill"
	case ModeLineLoop:
		return "line_loop"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DrawCall describes one piece of geometry. If Vertices is empty, the
// geometry is a unit quad scaled by Size and moved by Offset.
type DrawCall struct {
	Program  string
	Mode     Mode
	Color    gg.RGBA
	Vertices []Point
	Offset   Point
	Size     Point
}

func (call DrawCall) vertices() []Point {
	if len(call.Vertices) != 0 {
		return call.Vertices
	}

	x0, y0 := call.Offset.X, call.Offset.Y
	x1, y1 := x0+call.Size.X, y0+call.Size.Y
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

// op is the kind of work that call asks of an accelerator.
func (call DrawCall) op() gg.AcceleratedOp {
	switch {
	case call.Mode == ModeLineLoop:
		return gg.AccelStroke
	case len(call.Vertices) == 0:
		return gg.AccelFill | gg.AccelRRectSDF
	default:
		return gg.AccelFill
	}
}

// Backend returns the name of the accelerator that draw calls are
// offered to, or "cpu" if there is none.
func Backend() string {
	a := gg.Accelerator()
	if a == nil {
		return "cpu"
	}
	return a.Name()
}

// Stats counts the work done by a pipeline.
type Stats struct {
	Draws int

	// Accelerated counts the draws that the accelerator claimed to
	// support. It may still fall back to the CPU, for example for very
	// small shapes.
	Accelerated int

	Last       DrawCall
	LastTarget image.Point
}

// Pipeline holds the compiled shader programs.
type Pipeline struct {
	logger   *slog.Logger
	programs map[string]*Program
	stats    Stats
}

// NewPipeline compiles the given WGSL sources, keyed by program name.
// If sources is nil, the built-in programs are compiled. A failure to
// compile any program is returned as a ShaderCompileError.
func NewPipeline(logger *slog.Logger, sources map[string]string) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if sources == nil {
		sources = DefaultSources()
	}

	programs, err := compileAll(sources)
	if err != nil {
		logger.Error("shader compilation failed", "err", err)
		return nil, err
	}
	for _, name := range slices.Sorted(maps.Keys(programs)) {
		logger.Debug("compiled shader program", "program", name, "words", len(programs[name].SPIRV))
	}
	logger.Info("rendering backend", "backend", Backend())

	return &Pipeline{
		logger:   logger,
		programs: programs,
	}, nil
}

// Program returns the compiled program with the given name.
func (p *Pipeline) Program(name string) (*Program, bool) {
	prog, ok := p.programs[name]
	return prog, ok
}

// Programs returns the names of every compiled program, sorted.
func (p *Pipeline) Programs() []string {
	return slices.Sorted(maps.Keys(p.programs))
}

func (p *Pipeline) Stats() Stats {
	return p.stats
}

func (p *Pipeline) ResetStats() {
	p.stats = Stats{}
}

// Clear fills the whole of ctx with c.
func (p *Pipeline) Clear(ctx *Context, c gg.RGBA) error {
	if !ctx.current {
		return ErrNotCurrent
	}
	ctx.canvas.ClearWithColor(c)
	return nil
}

// Draw rasterizes call into ctx, which must be current.
func (p *Pipeline) Draw(ctx *Context, call DrawCall) error {
	if !ctx.current {
		return ErrNotCurrent
	}
	if _, ok := p.programs[call.Program]; !ok {
		return fmt.Errorf("unknown shader program %q", call.Program)
	}

	verts := call.vertices()
	if len(verts) < 2 {
		return fmt.Errorf("draw %v with %v vertices", call.Mode, len(verts))
	}

	canvas := ctx.canvas
	w, h := float64(canvas.Width()), float64(canvas.Height())
	toPixels := func(pt Point) (float64, float64) {
		return (pt.X + 1) / 2 * w, (1 - pt.Y) / 2 * h
	}

	canvas.Push()
	defer canvas.Pop()

	canvas.ClearPath()
	canvas.SetRGBA(call.Color.R, call.Color.G, call.Color.B, call.Color.A)
	canvas.MoveTo(toPixels(verts[0]))
	for _, pt := range verts[1:] {
		canvas.LineTo(toPixels(pt))
	}
	canvas.ClosePath()

	var err error
	switch call.Mode {
	case ModeLineLoop:
		canvas.SetLineWidth(1)
		err = canvas.Stroke()
	default:
		err = canvas.Fill()
	}
	if err != nil {
		return fmt.Errorf("draw %v with %v: %w", call.Mode, call.Program, err)
	}

	p.stats.Draws++
	if a := gg.Accelerator(); (a != nil) && a.CanAccelerate(call.op()) {
		p.stats.Accelerated++
	}
	p.stats.Last = call
	p.stats.LastTarget = image.Pt(canvas.Width(), canvas.Height())
	return nil
}
