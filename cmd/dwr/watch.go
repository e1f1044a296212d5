package main

import (
	"log/slog"
	"path/filepath"

	"deedles.dev/dwr/internal/config"
	"github.com/fsnotify/fsnotify"
)

// configWatcher reloads the config file whenever it changes and hands
// every version that loads successfully to the render loop.
type configWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	configs  chan *config.Config
	done     chan struct{}
}

func newConfigWatcher(filePath string) (*configWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory containing the file (more reliable for writes)
	err = watcher.Add(filepath.Dir(filePath))
	if err != nil {
		watcher.Close()
		return nil, err
	}

	cw := &configWatcher{
		watcher:  watcher,
		filePath: filePath,
		configs:  make(chan *config.Config, 1),
		done:     make(chan struct{}),
	}
	go cw.watch()

	return cw, nil
}

// Configs returns a channel that yields reloaded configs. Only the
// newest unreceived config is kept.
func (cw *configWatcher) Configs() <-chan *config.Config {
	return cw.configs
}

func (cw *configWatcher) watch() {
	filename := filepath.Base(cw.filePath)

	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			c, err := config.LoadConfig(cw.filePath)
			if err != nil {
				slog.Warn("failed to reload config", "file", cw.filePath, "error", err)
				continue
			}
			slog.Debug("config changed", "file", cw.filePath)
			cw.publish(c)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)

		case <-cw.done:
			return
		}
	}
}

func (cw *configWatcher) publish(c *config.Config) {
	select {
	case <-cw.configs:
	default:
	}
	cw.configs <- c
}

func (cw *configWatcher) Close() error {
	close(cw.done)
	return cw.watcher.Close()
}
