//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject

package app

import (
	"context"
	"tvbridge/internal/config"
)

func buildAppWithWire(ctx context.Context, cfg *config.Config, watcher *config.Watcher) (*App, error) {
	appBuilder := provideAppBuilder(cfg, watcher)
	app, err := provideAppFromBuilder(appBuilder, ctx)
	if err != nil {
		return nil, err
	}
	return app, nil
}
