package wltest

import (
	"context"
	"testing"
	"time"

	wl "deedles.dev/dwr/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, display *wl.Display) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, display.RoundTrip(ctx))
}

func TestGlobals(t *testing.T) {
	s := New(t, WithoutGlobal("wl_seat"))
	display := wl.Connect(s.Conn())
	defer display.Close()

	registry := display.GetRegistry()
	roundTrip(t, display)

	var names []string
	for _, inter := range registry.Globals() {
		names = append(names, inter.Name)
	}
	assert.ElementsMatch(t, []string{"wl_compositor", "wl_shm", "zwlr_layer_shell_v1", "wl_output"}, names)
	assert.Equal(t, 1, s.Count("wl_display.get_registry"))
	assert.Equal(t, 1, s.Count("wl_display.sync"))
}

func TestOutput(t *testing.T) {
	s := New(t)
	display := wl.Connect(s.Conn())
	defer display.Close()

	registry := display.GetRegistry()
	roundTrip(t, display)

	var name string
	var width, height int32
	for id, inter := range registry.Globals() {
		if wl.IsOutput(inter) {
			out := wl.BindOutput(display, id)
			out.Name = func(v string) { name = v }
			out.Mode = func(flags wl.OutputMode, w, h, refresh int32) { width, height = w, h }
		}
	}
	roundTrip(t, display)

	assert.Equal(t, "TEST-1", name)
	assert.EqualValues(t, OutputWidth, width)
	assert.EqualValues(t, OutputHeight, height)
}

func TestFrames(t *testing.T) {
	s := New(t)
	display := wl.Connect(s.Conn())
	defer display.Close()

	registry := display.GetRegistry()
	roundTrip(t, display)

	var compositor *wl.Compositor
	for id, inter := range registry.Globals() {
		if wl.IsCompositor(inter) {
			compositor = wl.BindCompositor(display, id)
		}
	}
	require.NotNil(t, compositor)

	surface := compositor.CreateSurface()
	var done int
	surface.Frame().Then(func(uint32) { done++ })
	surface.Commit()
	roundTrip(t, display)

	assert.Equal(t, 1, s.PendingFrames())
	assert.Zero(t, done)

	s.Vblank()
	roundTrip(t, display)
	assert.Equal(t, 1, done)
	assert.Zero(t, s.PendingFrames())
	assert.NoError(t, s.Err())
}

func TestHangup(t *testing.T) {
	s := New(t)
	display := wl.Connect(s.Conn())
	defer display.Close()

	display.GetRegistry()
	roundTrip(t, display)

	s.Hangup()
	require.Eventually(t, func() bool {
		display.DispatchPending()
		return !display.Alive()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPostError(t *testing.T) {
	s := New(t)
	display := wl.Connect(s.Conn())
	defer display.Close()

	var perr wl.ProtocolError
	display.Error = func(err wl.ProtocolError) { perr = err }
	display.GetRegistry()
	roundTrip(t, display)

	s.PostError(3, "broken")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := display.RoundTrip(ctx)
	require.Error(t, err)
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken", perr.Message)
	assert.False(t, display.Alive())
}
