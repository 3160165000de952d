package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"tvbridge/internal/bridge"
	"tvbridge/internal/config"
	"tvbridge/internal/logger"
	webhookhttp "tvbridge/internal/transport/http/webhook"

	"golang.org/x/sync/errgroup"
)

// App owns the session bridge and the HTTP surface in front of it.
type App struct {
	cfg     *config.Config
	bridge  *bridge.Bridge
	http    *webhookhttp.Server
	watcher *config.Watcher
	secret  *atomic.Value
	Summary *StartupSummary
}

// NewApp builds the application without starting it. watcher may be nil
// when no config file is in use.
func NewApp(cfg *config.Config, watcher *config.Watcher) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetFormat(cfg.App.LogFormat)
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg, watcher)
}

// Run serves until ctx ends or the HTTP server fails, then stops the bridge,
// which drains queued commands and disconnects the broker session.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.bridge == nil || a.http == nil {
		return fmt.Errorf("app dependencies not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}

	a.bridge.Start()
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.http.Start(gctx); err != nil {
			return fmt.Errorf("webhook http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case <-a.bridge.Done():
			return errors.New("session bridge worker exited unexpectedly")
		}
	})
	runErr := group.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.bridge.Stop(stopCtx); err != nil {
		logger.Warnf("Session bridge stop: %v", err)
	}
	logger.Infof("tvbridge stopped")
	return runErr
}

// Bridge exposes the session bridge (for tests and embedding).
func (a *App) Bridge() *bridge.Bridge {
	if a == nil {
		return nil
	}
	return a.bridge
}

// Secret returns the webhook secret currently in force.
func (a *App) Secret() string {
	if a == nil || a.secret == nil {
		return ""
	}
	s, _ := a.secret.Load().(string)
	return s
}

// applyReload carries the settings that may change at runtime into the
// running app. Everything else needs a restart.
func (a *App) applyReload(prev, next *config.Config) {
	if next == nil {
		return
	}
	if prev == nil || prev.App.LogLevel != next.App.LogLevel {
		logger.SetLevel(next.App.LogLevel)
		logger.Infof("Log level set to %s", next.App.LogLevel)
	}
	if prev == nil || prev.Webhook.Secret != next.Webhook.Secret {
		a.secret.Store(next.Webhook.Secret)
		logger.Infof("Webhook secret updated")
	}
	if prev != nil && restartRequired(prev, next) {
		logger.Warnf("Config changes outside app.log_level and webhook.secret take effect after restart")
	}
}

func restartRequired(prev, next *config.Config) bool {
	p, n := *prev, *next
	p.App.LogLevel, n.App.LogLevel = "", ""
	p.Webhook.Secret, n.Webhook.Secret = "", ""
	return p != n
}
