package dwr

import (
	"log/slog"

	"deedles.dev/dwr/internal/debug"
	"github.com/gogpu/gg"
)

// SetLogger sets the logger shared by every client that was not given
// one with WithLogger, by the protocol packages, and by the rendering
// backend. Passing nil disables logging.
func SetLogger(l *slog.Logger) {
	debug.SetLogger(l)
	gg.SetLogger(l)
}

// Logger returns the shared logger.
func Logger() *slog.Logger {
	return debug.Logger()
}
