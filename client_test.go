package dwr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"testing"
	"time"

	wl "deedles.dev/dwr/client"
	"deedles.dev/dwr/gpu"
	"deedles.dev/dwr/internal/wltest"
	"deedles.dev/dwr/layershell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverOpts []wltest.Option, opts ...Option) (*wltest.Server, *Client) {
	t.Helper()

	s := wltest.New(t, serverOpts...)
	c, err := NewClient(append([]Option{WithConn(s.Conn()), WithConnectTimeout(5 * time.Second)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return s, c
}

// roundTrip waits until the server has handled every request and the client
// has handled every resulting event.
func roundTrip(t *testing.T, c *Client) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Display().RoundTrip(ctx))
}

func createSurface(t *testing.T, c *Client, cfg SurfaceConfig) *Surface {
	t.Helper()

	var surface *Surface
	require.True(t, c.TryCreateSurface(cfg, func(s *Surface) { surface = s }))
	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)
	require.NotNil(t, surface)
	return surface
}

// requests returns the requests that the server received, apart from
// the ones made by roundTrip.
func requests(s *wltest.Server) []wltest.Request {
	var reqs []wltest.Request
	for _, req := range s.Requests() {
		if req.Name() != "wl_display.sync" {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

func TestNewClient(t *testing.T) {
	s, c := newTestClient(t, nil)

	assert.True(t, c.IsAlive())
	assert.False(t, c.IsBusy())
	assert.Empty(t, c.Surfaces())
	assert.NoError(t, c.Err())

	outputs := c.Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, "TEST-1", outputs[0].Name)
	assert.Equal(t, image.Pt(wltest.OutputWidth, wltest.OutputHeight), outputs[0].Size())

	for _, name := range []string{"wl_compositor", "wl_shm", "zwlr_layer_shell_v1", "wl_output", "wl_seat"} {
		found := false
		for _, req := range s.Filter("wl_registry.bind") {
			if req.Args[1] == name {
				found = true
			}
		}
		assert.True(t, found, "%v was not bound", name)
	}
}

func TestNewClientMissingGlobal(t *testing.T) {
	for _, global := range []string{"wl_compositor", "wl_shm", "zwlr_layer_shell_v1"} {
		t.Run(global, func(t *testing.T) {
			s := wltest.New(t, wltest.WithoutGlobal(global))
			_, err := NewClient(WithConn(s.Conn()))
			require.Error(t, err)

			var cerr ConnectionError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, global, cerr.Global)
			assert.ErrorIs(t, err, ErrMissingGlobal)
		})
	}
}

func TestNewClientShaderError(t *testing.T) {
	s := wltest.New(t)
	_, err := NewClient(WithConn(s.Conn()), WithShaderSource(gpu.ProgramQuadColor, "fn broken("))
	require.Error(t, err)

	var serr ShaderCompileError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, gpu.ProgramQuadColor, serr.Program)
	assert.Empty(t, s.Requests())
}

func TestCreateSurfaceAndResize(t *testing.T) {
	s, c := newTestClient(t, nil)

	var calls int
	var surface *Surface
	require.True(t, c.TryCreateSurface(SurfaceConfig{Width: 50, Height: 50}, func(v *Surface) {
		calls++
		surface = v
	}))
	assert.True(t, c.IsBusy())
	assert.Zero(t, calls)

	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)
	require.NoError(t, c.DispatchPending())

	assert.Equal(t, 1, calls)
	require.NotNil(t, surface)
	assert.True(t, surface.IsAlive())
	assert.Equal(t, StateReady, surface.State())
	assert.True(t, surface.HasFrameToken())
	assert.False(t, c.IsBusy())

	require.NoError(t, surface.SetSize(100, 10))
	outcomes := c.TryRender()
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Rendered(), "%v", outcomes[0])

	stats := c.Pipeline().Stats()
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, image.Pt(100, 10), stats.LastTarget)

	roundTrip(t, c)
	commits := s.Commits()
	require.Len(t, commits, 1)
	assert.EqualValues(t, 100, commits[0].Width)
	assert.EqualValues(t, 10, commits[0].Height)

	sizes := s.Filter("zwlr_layer_surface_v1.set_size")
	require.Len(t, sizes, 2)
	assert.Equal(t, []any{uint32(50), uint32(50)}, sizes[0].Args)
	assert.Equal(t, []any{uint32(100), uint32(10)}, sizes[1].Args)
	assert.Equal(t, 1, calls)
	assert.NoError(t, s.Err())
}

func TestBusy(t *testing.T) {
	s, c := newTestClient(t, nil)
	s.HoldConfigure(true)

	var first, second int
	require.True(t, c.TryCreateSurface(SurfaceConfig{Width: 10, Height: 10}, func(*Surface) { first++ }))
	for range 3 {
		assert.False(t, c.TryCreateSurface(SurfaceConfig{Width: 20, Height: 20}, func(*Surface) { second++ }))
		assert.True(t, c.IsBusy())
	}

	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)
	assert.True(t, c.IsBusy())
	assert.Zero(t, first)
	assert.Equal(t, 1, s.Count("zwlr_layer_shell_v1.get_layer_surface"))

	surfaces := c.Surfaces()
	require.Len(t, surfaces, 1)
	assert.Equal(t, StateConfiguring, surfaces[0].State())
	outcomes := c.TryRender()
	require.Len(t, outcomes, 1)
	assert.Equal(t, NotConfigured, outcomes[0].Reason)

	s.Configure()
	roundTrip(t, c)
	assert.Equal(t, 1, first)
	assert.Zero(t, second)
	assert.False(t, c.IsBusy())

	require.True(t, c.TryCreateSurface(SurfaceConfig{Width: 20, Height: 20}, func(*Surface) { second++ }))
	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)
	s.Configure()
	roundTrip(t, c)
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, s.Count("zwlr_layer_shell_v1.get_layer_surface"))
}

func TestFrameToken(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})

	outcomes := c.TryRender()
	require.True(t, outcomes[0].Rendered())
	assert.Equal(t, StateRendering, surface.State())
	assert.False(t, surface.HasFrameToken())

	// Without a frame-done event, nothing is submitted no matter what.
	for range 3 {
		require.NoError(t, surface.Invalidate())
		outcomes = c.TryRender()
		assert.Equal(t, RenderSkipped, outcomes[0].Result)
		assert.Equal(t, NoToken, outcomes[0].Reason)
		assert.Equal(t, NoToken, surface.DemoRender().Reason)
	}
	roundTrip(t, c)
	assert.Len(t, s.Commits(), 1)
	assert.Equal(t, 1, c.Pipeline().Stats().Draws)

	s.Vblank()
	roundTrip(t, c)
	assert.True(t, surface.HasFrameToken())
	assert.Equal(t, StateReady, surface.State())

	outcomes = c.TryRender()
	assert.True(t, outcomes[0].Rendered())
	roundTrip(t, c)
	assert.Len(t, s.Commits(), 2)
	assert.NoError(t, s.Err())
}

func TestSurfaceTryRender(t *testing.T) {
	s, c := newTestClient(t, nil)
	a := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})
	b := createSurface(t, c, SurfaceConfig{Width: 20, Height: 20})

	outcome := b.TryRender()
	require.True(t, outcome.Rendered(), "%v", outcome)
	assert.Same(t, b, outcome.Surface)
	assert.Equal(t, StateReady, a.State())
	assert.Equal(t, StateRendering, b.State())

	assert.Equal(t, NoToken, b.TryRender().Reason)
	roundTrip(t, c)
	commits := s.Commits()
	require.Len(t, commits, 1)
	assert.EqualValues(t, 20, commits[0].Width)

	s.Vblank()
	roundTrip(t, c)
	assert.Equal(t, Clean, b.TryRender().Reason)
}

func TestNoTokenIsNoop(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})
	require.True(t, c.TryRender()[0].Rendered())
	roundTrip(t, c)

	before := requests(s)
	draws := c.Pipeline().Stats().Draws

	require.NoError(t, surface.SetSize(40, 40))
	require.NoError(t, surface.SetAnchor(layershell.AnchorTop))
	outcomes := c.TryRender()
	assert.Equal(t, NoToken, outcomes[0].Reason)
	roundTrip(t, c)

	assert.Equal(t, before, requests(s))
	assert.Equal(t, draws, c.Pipeline().Stats().Draws)
	assert.Equal(t, StateRendering, surface.State())
	assert.True(t, surface.Dirty())
}

func TestGeometryBatching(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})
	require.True(t, c.TryRender()[0].Rendered())
	roundTrip(t, c)
	s.Vblank()
	roundTrip(t, c)

	sizes := s.Count("zwlr_layer_surface_v1.set_size")
	anchors := s.Count("zwlr_layer_surface_v1.set_anchor")
	margins := s.Count("zwlr_layer_surface_v1.set_margin")

	for i := range uint32(5) {
		require.NoError(t, surface.SetSize(20+i, 30+i))
	}
	require.NoError(t, surface.SetAnchor(layershell.AnchorBottom))
	require.NoError(t, surface.SetAnchor(layershell.AnchorTop|layershell.AnchorLeft))
	require.NoError(t, surface.SetMargin(Margins{Top: 1}))
	require.NoError(t, surface.SetMargin(Margins{Top: 10, Right: 5, Bottom: 5, Left: 20}))
	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)
	assert.Equal(t, sizes, s.Count("zwlr_layer_surface_v1.set_size"))

	require.True(t, c.TryRender()[0].Rendered())
	roundTrip(t, c)

	got := s.Filter("zwlr_layer_surface_v1.set_size")
	require.Len(t, got, sizes+1)
	assert.Equal(t, []any{uint32(24), uint32(34)}, got[len(got)-1].Args)

	got = s.Filter("zwlr_layer_surface_v1.set_anchor")
	require.Len(t, got, anchors+1)
	assert.Equal(t, []any{uint32(layershell.AnchorTop | layershell.AnchorLeft)}, got[len(got)-1].Args)

	// Only the margins of anchored edges are sent.
	got = s.Filter("zwlr_layer_surface_v1.set_margin")
	require.Len(t, got, margins+1)
	assert.Equal(t, []any{int32(10), int32(0), int32(0), int32(20)}, got[len(got)-1].Args)

	state := s.LayerSurfaces()[0]
	assert.EqualValues(t, 24, state.Width)
	assert.EqualValues(t, 34, state.Height)
	assert.NoError(t, s.Err())
}

func TestStretchedSurface(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{
		Height: 30,
		Anchor: layershell.AnchorTop | layershell.AnchorLeft | layershell.AnchorRight,
	})

	w, h := surface.Size()
	assert.Zero(t, w)
	assert.EqualValues(t, 30, h)
	w, h = surface.FrameSize()
	assert.EqualValues(t, wltest.OutputWidth, w)
	assert.EqualValues(t, 30, h)

	require.True(t, c.TryRender()[0].Rendered())
	roundTrip(t, c)
	commits := s.Commits()
	require.Len(t, commits, 1)
	assert.EqualValues(t, wltest.OutputWidth, commits[0].Width)
	assert.NoError(t, s.Err())
}

func TestZeroSizeSurface(t *testing.T) {
	s, c := newTestClient(t, nil)

	t.Run("Create", func(t *testing.T) {
		surface := createSurface(t, c, SurfaceConfig{})
		assert.True(t, surface.IsAlive())
		assert.True(t, c.TryRender()[0].Rendered())
		roundTrip(t, c)

		require.NoError(t, s.Err())
		assert.True(t, c.IsAlive())
		sizes := s.Filter("zwlr_layer_surface_v1.set_size")
		require.NotEmpty(t, sizes)
		assert.Equal(t, []any{uint32(1), uint32(1)}, sizes[0].Args)
	})

	t.Run("SetSize", func(t *testing.T) {
		other := c.Surfaces()[0]
		surface := createSurface(t, c, SurfaceConfig{
			Width:  10,
			Height: 10,
			Anchor: layershell.AnchorTop | layershell.AnchorLeft | layershell.AnchorRight,
		})
		assert.True(t, surface.TryRender().Rendered())
		roundTrip(t, c)
		s.Vblank()
		roundTrip(t, c)

		require.NoError(t, surface.SetSize(0, 0))
		assert.True(t, surface.TryRender().Rendered())
		roundTrip(t, c)

		require.NoError(t, s.Err())
		assert.True(t, c.IsAlive())
		assert.True(t, surface.IsAlive())
		assert.True(t, other.IsAlive())

		sizes := s.Filter("zwlr_layer_surface_v1.set_size")
		assert.Equal(t, []any{uint32(0), uint32(1)}, sizes[len(sizes)-1].Args)
		w, _ := surface.FrameSize()
		assert.EqualValues(t, wltest.OutputWidth, w)
	})
}

func TestCloseSurface(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})
	require.True(t, c.TryRender()[0].Rendered())

	require.NoError(t, surface.Close())
	require.NoError(t, surface.Close())
	assert.False(t, surface.IsAlive())
	assert.Equal(t, StateClosed, surface.State())
	assert.Empty(t, c.Surfaces())
	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)

	assert.Equal(t, 1, s.Count("zwlr_layer_surface_v1.destroy"))
	assert.Equal(t, 1, s.Count("wl_surface.destroy"))
	before := requests(s)

	assert.ErrorIs(t, surface.SetSize(20, 20), ErrSurfaceClosed)
	assert.ErrorIs(t, surface.SetAnchor(layershell.AnchorTop), ErrSurfaceClosed)
	assert.ErrorIs(t, surface.SetMargin(Margins{Top: 1}), ErrSurfaceClosed)
	assert.ErrorIs(t, surface.Invalidate(), ErrSurfaceClosed)
	assert.ErrorIs(t, surface.DemoRender().Err, ErrSurfaceClosed)
	assert.Empty(t, c.TryRender())
	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)

	assert.Equal(t, before, requests(s))

	// A late frame-done for the closed surface is harmless.
	s.Vblank()
	roundTrip(t, c)
	assert.True(t, c.IsAlive())
	assert.NoError(t, s.Err())
}

func TestCompositorClosesSurface(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})

	s.CloseLayerSurface(0)
	roundTrip(t, c)

	assert.False(t, surface.IsAlive())
	assert.Empty(t, c.Surfaces())
	assert.ErrorIs(t, surface.SetSize(1, 1), ErrSurfaceClosed)
	assert.True(t, c.IsAlive())

	roundTrip(t, c)
	assert.Equal(t, 1, s.Count("zwlr_layer_surface_v1.destroy"))
	createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})
}

func TestClosedBeforeConfigure(t *testing.T) {
	s, c := newTestClient(t, nil)
	s.HoldConfigure(true)

	var calls int
	require.True(t, c.TryCreateSurface(SurfaceConfig{Width: 10, Height: 10}, func(*Surface) { calls++ }))
	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)

	s.CloseLayerSurface(0)
	roundTrip(t, c)
	s.Configure()
	roundTrip(t, c)

	assert.Zero(t, calls)
	assert.False(t, c.IsBusy())
	assert.Empty(t, c.Surfaces())
}

func TestConnectionLost(t *testing.T) {
	s, c := newTestClient(t, nil)
	ready := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})
	s.HoldConfigure(true)

	var calls int
	require.True(t, c.TryCreateSurface(SurfaceConfig{Width: 10, Height: 10}, func(*Surface) { calls++ }))
	require.NoError(t, c.DispatchPending())
	roundTrip(t, c)

	s.Hangup()
	require.Eventually(t, func() bool {
		c.DispatchPending()
		return !c.IsAlive()
	}, 5*time.Second, 10*time.Millisecond)

	assert.Zero(t, calls)
	assert.False(t, c.IsBusy())
	assert.False(t, ready.IsAlive())
	assert.Empty(t, c.Surfaces())
	assert.Error(t, c.Err())
	assert.False(t, c.TryCreateSurface(SurfaceConfig{Width: 10, Height: 10}, func(*Surface) { calls++ }))
	assert.ErrorIs(t, ready.SetSize(1, 1), ErrSurfaceClosed)
}

func TestProtocolError(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})

	s.PostError(wl.DisplayErrorImplementation, "test error")
	require.Eventually(t, func() bool {
		c.DispatchPending()
		return !c.IsAlive()
	}, 5*time.Second, 10*time.Millisecond)

	var perr wl.ProtocolError
	require.ErrorAs(t, c.Err(), &perr)
	assert.Equal(t, "test error", perr.Message)
	assert.False(t, surface.IsAlive())
}

func TestBufferBusy(t *testing.T) {
	s, c := newTestClient(t, nil, WithBufferCount(1))
	surface := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})

	require.True(t, c.TryRender()[0].Rendered())
	roundTrip(t, c)
	s.Vblank()
	roundTrip(t, c)

	// The compositor holds on to the only buffer until the next one is
	// committed.
	require.NoError(t, surface.Invalidate())
	outcomes := c.TryRender()
	assert.Equal(t, BufferBusy, outcomes[0].Reason)
	assert.True(t, surface.HasFrameToken())

	// Resizing while the only buffer is held draws into a new pool. The
	// held buffer and its pool are destroyed only after the release that
	// the next commit causes.
	require.NoError(t, surface.SetSize(20, 20))
	assert.True(t, c.TryRender()[0].Rendered())
	assert.Zero(t, s.Count("wl_buffer.destroy"))
	roundTrip(t, c)
	roundTrip(t, c)
	assert.NoError(t, s.Err())

	assert.Equal(t, 2, s.Count("wl_shm.create_pool"))
	assert.Equal(t, 1, s.Count("wl_shm_pool.destroy"))
	assert.Zero(t, s.Count("wl_shm_pool.resize"))

	reqs := requests(s)
	lastCommit, destroyed := -1, -1
	for i, req := range reqs {
		switch req.Name() {
		case "wl_surface.commit":
			lastCommit = i
		case "wl_buffer.destroy":
			destroyed = i
		}
	}
	require.NotEqual(t, -1, destroyed)
	assert.Greater(t, destroyed, lastCommit)
}

func TestRenderFailure(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})

	errPaint := errors.New("paint failed")
	require.NoError(t, surface.SetPainter(func(*gpu.Frame) error { return errPaint }))
	outcomes := c.TryRender()
	assert.Equal(t, RenderFailed, outcomes[0].Result)
	assert.ErrorIs(t, outcomes[0].Err, errPaint)
	assert.True(t, surface.HasFrameToken())
	assert.Equal(t, StateReady, surface.State())
	roundTrip(t, c)
	assert.Empty(t, s.Commits())

	require.NoError(t, surface.SetPainter(nil))
	assert.True(t, c.TryRender()[0].Rendered())
	roundTrip(t, c)
	assert.Len(t, s.Commits(), 1)
}

func TestDemoRender(t *testing.T) {
	s, c := newTestClient(t, nil)
	surface := createSurface(t, c, SurfaceConfig{Width: 64, Height: 64})

	outcome := surface.DemoRender()
	require.True(t, outcome.Rendered(), "%v", outcome)
	assert.Equal(t, 4, c.Pipeline().Stats().Draws)
	roundTrip(t, c)
	assert.Len(t, s.Commits(), 1)

	s.Vblank()
	roundTrip(t, c)
	outcome = surface.DemoRender()
	assert.True(t, outcome.Rendered())
}

func TestContextModes(t *testing.T) {
	for _, mode := range []gpu.ContextMode{gpu.ContextShared, gpu.ContextPerSurface} {
		t.Run(mode.String(), func(t *testing.T) {
			s, c := newTestClient(t, nil, WithContextMode(mode))
			a := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})
			b := createSurface(t, c, SurfaceConfig{Width: 20, Height: 30, Anchor: layershell.AnchorBottom})

			outcomes := c.TryRender()
			require.Len(t, outcomes, 2)
			assert.Same(t, a, outcomes[0].Surface)
			assert.Same(t, b, outcomes[1].Surface)
			for _, o := range outcomes {
				assert.True(t, o.Rendered(), "%v", o)
			}

			roundTrip(t, c)
			commits := s.Commits()
			require.Len(t, commits, 2)
			assert.EqualValues(t, 10, commits[0].Width)
			assert.EqualValues(t, 30, commits[1].Height)
		})
	}
}

func TestClientClose(t *testing.T) {
	_, c := newTestClient(t, nil)
	a := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})
	b := createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.False(t, c.IsAlive())
	assert.False(t, a.IsAlive())
	assert.False(t, b.IsAlive())
	assert.ErrorIs(t, c.Err(), ErrClientClosed)
	assert.ErrorIs(t, c.DispatchPending(), ErrClientClosed)
	assert.False(t, c.TryCreateSurface(SurfaceConfig{Width: 10, Height: 10}, nil))
	assert.Nil(t, c.TryRender())
}

func TestCloseFromCallback(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, c := newTestClient(t, nil, WithLogger(logger))

	var surface *Surface
	require.True(t, c.TryCreateSurface(SurfaceConfig{Width: 10, Height: 10}, func(s *Surface) {
		surface = s
		require.NoError(t, c.Close())
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var err error
	for (surface == nil) && (ctx.Err() == nil) {
		err = c.DispatchPending()
		time.Sleep(time.Millisecond)
	}
	require.NotNil(t, surface)

	assert.ErrorIs(t, err, ErrClientClosed)
	assert.False(t, surface.IsAlive())
	assert.ErrorIs(t, c.Err(), ErrClientClosed)
	assert.NotContains(t, logs.String(), "connection lost")
	assert.Contains(t, logs.String(), "disconnected")
}

func TestKeyboardInteractivityFallback(t *testing.T) {
	s, c := newTestClient(t, []wltest.Option{wltest.WithGlobalVersion("zwlr_layer_shell_v1", 3)}, WithKeyboardInteractivity(layershell.KeyboardInteractivityOnDemand))
	createSurface(t, c, SurfaceConfig{Width: 10, Height: 10})

	reqs := s.Filter("zwlr_layer_surface_v1.set_keyboard_interactivity")
	require.Len(t, reqs, 1)
	assert.Equal(t, []any{uint32(layershell.KeyboardInteractivityNone)}, reqs[0].Args)
}
