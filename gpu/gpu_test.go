package gpu

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderSources(t *testing.T) {
	for name, source := range DefaultSources() {
		t.Run(name, func(t *testing.T) {
			for _, required := range []string{"@vertex", "@fragment", "vs_main", "fs_main", "uniforms.color"} {
				assert.True(t, strings.Contains(source, required), "missing %q", required)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	prog, err := Compile(ProgramFlatColor, DefaultSources()[ProgramFlatColor])
	require.NoError(t, err)
	require.NotEmpty(t, prog.SPIRV)
	assert.Equal(t, uint32(0x07230203), prog.SPIRV[0])
	assert.Equal(t, ProgramFlatColor, prog.Name)
}

func TestCompileError(t *testing.T) {
	_, err := NewPipeline(nil, map[string]string{
		ProgramFlatColor: DefaultSources()[ProgramFlatColor],
		"broken":         "@vertex fn vs_main( -> {",
	})
	require.Error(t, err)

	var serr ShaderCompileError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "broken", serr.Program)
	assert.NotNil(t, serr.Unwrap())
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()

	p, err := NewPipeline(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{ProgramFlatColor, ProgramQuadColor}, p.Programs())
	return p
}

func TestDrawNotCurrent(t *testing.T) {
	p := testPipeline(t)
	pool := NewPool(ContextPerSurface, nil)
	defer pool.Close()

	c := pool.Acquire()
	err := p.Draw(c, DrawCall{Program: ProgramQuadColor, Size: Point{1, 1}})
	assert.ErrorIs(t, err, ErrNotCurrent)
	assert.ErrorIs(t, c.Prepare(10, 10), ErrNotCurrent)
	assert.Zero(t, p.Stats().Draws)
}

func TestMakeCurrent(t *testing.T) {
	pool := NewPool(ContextPerSurface, nil)
	defer pool.Close()

	a, b := pool.Acquire(), pool.Acquire()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, pool.Len())

	release, err := pool.MakeCurrent(a)
	require.NoError(t, err)
	assert.True(t, a.Current())
	assert.Same(t, a, pool.Current())

	_, err = pool.MakeCurrent(b)
	assert.ErrorIs(t, err, ErrContextBusy)
	_, err = pool.MakeCurrent(a)
	assert.ErrorIs(t, err, ErrContextBusy)

	release()
	release()
	assert.False(t, a.Current())
	assert.Nil(t, pool.Current())

	release, err = pool.MakeCurrent(b)
	require.NoError(t, err)
	release()

	pool.Release(a)
	assert.Equal(t, 1, pool.Len())
	_, err = pool.MakeCurrent(a)
	assert.ErrorIs(t, err, ErrContextReleased)
}

func TestSharedPool(t *testing.T) {
	pool := NewPool(ContextShared, nil)
	defer pool.Close()

	a, b := pool.Acquire(), pool.Acquire()
	assert.Same(t, a, b)
	assert.Equal(t, 1, pool.Len())

	pool.Release(a)
	assert.Equal(t, 1, pool.Len())
	pool.Release(b)
	assert.Zero(t, pool.Len())

	c := pool.Acquire()
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestDefaultPainter(t *testing.T) {
	p := testPipeline(t)
	pool := NewPool(ContextShared, nil)
	defer pool.Close()

	c := pool.Acquire()
	release, err := pool.MakeCurrent(c)
	require.NoError(t, err)
	defer release()

	require.NoError(t, c.Prepare(100, 10))
	red := gg.RGBA2(1, 0, 0, 1)
	require.NoError(t, DefaultPainter(red)(NewFrame(p, c)))

	stats := p.Stats()
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, image.Pt(100, 10), stats.LastTarget)
	assert.Equal(t, ProgramQuadColor, stats.Last.Program)

	dst := image.NewRGBA(image.Rect(0, 0, 100, 10))
	require.NoError(t, c.Present(dst))
	r, g, _, a := dst.At(50, 5).RGBA()
	assert.EqualValues(t, 0xFFFF, r)
	assert.Zero(t, g)
	assert.EqualValues(t, 0xFFFF, a)
}

func TestDemoPainter(t *testing.T) {
	p := testPipeline(t)
	pool := NewPool(ContextPerSurface, nil)
	defer pool.Close()

	c := pool.Acquire()
	release, err := pool.MakeCurrent(c)
	require.NoError(t, err)
	defer release()

	require.NoError(t, c.Prepare(64, 64))
	require.NoError(t, DemoPainter(NewFrame(p, c)))
	assert.Equal(t, 4, p.Stats().Draws)
	if gg.Accelerator() == nil {
		assert.Zero(t, p.Stats().Accelerated)
	} else {
		assert.LessOrEqual(t, p.Stats().Accelerated, 4)
	}

	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	require.NoError(t, c.Present(dst))

	// The corner is outside of every shape, so it shows the background.
	got := dst.RGBAAt(63, 0)
	assert.InDelta(t, 51, got.R, 1)
	assert.InDelta(t, 25, got.G, 1)
	assert.Zero(t, got.B)
	assert.EqualValues(t, 0xFF, got.A)
}

func TestBackend(t *testing.T) {
	a := gg.Accelerator()
	if a == nil {
		assert.Equal(t, "cpu", Backend())
		return
	}
	assert.Equal(t, a.Name(), Backend())
	assert.True(t, a.CanAccelerate(DrawCall{Program: ProgramQuadColor}.op()))
}

func TestDrawCallOp(t *testing.T) {
	assert.Equal(t, gg.AccelFill|gg.AccelRRectSDF, DrawCall{}.op())
	assert.Equal(t, gg.AccelFill, DrawCall{Vertices: []Point{{0, 0}, {1, 0}, {1, 1}}}.op())
	assert.Equal(t, gg.AccelStroke, DrawCall{Mode: ModeLineLoop}.op())
}

func TestWriteSPIRV(t *testing.T) {
	prog, err := Compile(ProgramQuadColor, DefaultSources()[ProgramQuadColor])
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, prog.WriteSPIRV(&buf))
	require.Equal(t, 4*len(prog.SPIRV), buf.Len())
	assert.Equal(t, []byte{0x03, 0x02, 0x23, 0x07}, buf.Bytes()[:4])
}

func TestParseContextMode(t *testing.T) {
	for _, mode := range []ContextMode{ContextShared, ContextPerSurface} {
		parsed, err := ParseContextMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseContextMode("exclusive")
	assert.Error(t, err)
}
