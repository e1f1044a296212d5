// Package debug holds the logger shared by the protocol packages.
// Setting $WAYLAND_DEBUG to a positive number logs all wire traffic to
// stderr.
package debug

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.DiscardHandler))

	debugLevel, err := strconv.ParseInt(os.Getenv("WAYLAND_DEBUG"), 10, 0)
	if err != nil {
		return
	}
	if debugLevel > 0 {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		logger.Store(slog.New(handler))
	}
}

// Logger returns the current logger. It is never nil.
func Logger() *slog.Logger {
	return logger.Load()
}

// SetLogger replaces the current logger. Passing nil disables
// logging.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}

// Printf logs a formatted message at debug level.
func Printf(str string, args ...any) {
	l := Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(fmt.Sprintf(str, args...))
}
