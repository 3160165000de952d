package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"tvbridge/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ChangeListener receives the previous and the freshly loaded config.
type ChangeListener func(prev, next *Config)

// Watcher reloads the config file on change and notifies listeners. A file
// that fails to parse or validate is ignored and the last good config stays.
type Watcher struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	current   *Config
	version   int64
	listeners []ChangeListener
}

// Watch starts watching path. It returns an error if path is empty or the
// file cannot be loaded.
func Watch(path string) (*Watcher, error) {
	w, err := newWatcher(path)
	if err != nil {
		return nil, err
	}
	w.v.OnConfigChange(func(evt fsnotify.Event) {
		if err := w.reload(); err != nil {
			logger.Errorf("config reload failed (%s): %v", evt.Name, err)
		}
	})
	w.v.WatchConfig()
	return w, nil
}

func newWatcher(path string) (*Watcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config watcher requires a file path")
	}
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Watcher{path: path, v: v, current: cfg, version: 1}, nil
}

// Current returns the last good config.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) Version() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

func (w *Watcher) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

func (w *Watcher) reload() error {
	next, err := decode(w.v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	prev := w.current
	w.current = next
	w.version++
	listeners := append([]ChangeListener(nil), w.listeners...)
	w.mu.Unlock()

	logger.Infof("Config reloaded from %s", filepath.Base(w.path))
	for _, fn := range listeners {
		func(cb ChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("config listener panic: %v", r)
				}
			}()
			cb(prev, next)
		}(fn)
	}
	return nil
}
