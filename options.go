package dwr

import (
	"log/slog"
	"time"

	"deedles.dev/dwr/gpu"
	"deedles.dev/dwr/layershell"
	"deedles.dev/dwr/wire"
)

// DefaultNamespace is the layer-shell namespace used when none is
// configured.
const DefaultNamespace = "dwr"

const defaultConnectTimeout = 5 * time.Second

type options struct {
	conn           *wire.Conn
	logger         *slog.Logger
	namespace      string
	layer          layershell.Layer
	keyboard       layershell.KeyboardInteractivity
	exclusiveZone  int32
	contexts       gpu.ContextMode
	buffers        int
	connectTimeout time.Duration
	painter        gpu.Painter
	shaders        map[string]string
}

func defaultOptions() options {
	return options{
		namespace:      DefaultNamespace,
		layer:          layershell.LayerTop,
		keyboard:       layershell.KeyboardInteractivityNone,
		contexts:       gpu.ContextShared,
		buffers:        2,
		connectTimeout: defaultConnectTimeout,
		painter:        gpu.DefaultPainter(gpu.DefaultClearColor),
	}
}

// Option configures a Client.
type Option func(*options)

// WithConn makes the client use an already established connection
// instead of dialing the compositor named by the environment.
func WithConn(c *wire.Conn) Option {
	return func(o *options) {
		o.conn = c
	}
}

// WithLogger sets the logger used by the client. It defaults to the
// logger set with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithNamespace sets the layer-shell namespace of new surfaces, which
// compositors use to apply per-application rules.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithLayer sets the layer that new surfaces are placed on.
func WithLayer(layer layershell.Layer) Option {
	return func(o *options) {
		o.layer = layer
	}
}

func WithKeyboardInteractivity(k layershell.KeyboardInteractivity) Option {
	return func(o *options) {
		o.keyboard = k
	}
}

func WithExclusiveZone(zone int32) Option {
	return func(o *options) {
		o.exclusiveZone = zone
	}
}

// WithContextMode determines whether surfaces share a single rendering
// context or each get their own.
func WithContextMode(mode gpu.ContextMode) Option {
	return func(o *options) {
		o.contexts = mode
	}
}

// WithBufferCount sets the number of shared memory buffers allocated
// for each surface.
func WithBufferCount(n int) Option {
	return func(o *options) {
		o.buffers = n
	}
}

// WithConnectTimeout limits how long NewClient waits for the
// compositor.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = timeout
	}
}

// WithPainter sets the painter used for surfaces that do not have one
// of their own.
func WithPainter(painter gpu.Painter) Option {
	return func(o *options) {
		o.painter = painter
	}
}

// WithShaderSource replaces or adds a shader program. Every program is
// compiled when the client is created.
func WithShaderSource(name, source string) Option {
	return func(o *options) {
		if o.shaders == nil {
			o.shaders = gpu.DefaultSources()
		}
		o.shaders[name] = source
	}
}
