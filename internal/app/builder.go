package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"tvbridge/internal/bridge"
	"tvbridge/internal/broker"
	"tvbridge/internal/broker/alpaca"
	"tvbridge/internal/broker/paper"
	"tvbridge/internal/config"
	"tvbridge/internal/logger"
	webhookhttp "tvbridge/internal/transport/http/webhook"

	"github.com/shopspring/decimal"
)

type AppBuilder struct {
	cfg     *config.Config
	watcher *config.Watcher

	sessionFn func(config.BrokerConfig) (broker.Session, error)
	httpFn    func(*config.Config, webhookhttp.Executor, webhookhttp.SecretFunc) (*webhookhttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithSession replaces the broker session the config would select.
func WithSession(s broker.Session) AppBuilderOption {
	return func(b *AppBuilder) {
		b.sessionFn = func(config.BrokerConfig) (broker.Session, error) { return s, nil }
	}
}

func NewAppBuilder(cfg *config.Config, watcher *config.Watcher, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:       cfg,
		watcher:   watcher,
		sessionFn: buildSession,
		httpFn:    buildHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	session, err := b.sessionFn(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("building broker session failed: %w", err)
	}
	br := bridge.New(session, bridgeOptions(cfg))

	secret := &atomic.Value{}
	secret.Store(cfg.Webhook.Secret)
	secretFn := func() string {
		s, _ := secret.Load().(string)
		return s
	}

	server, err := b.httpFn(cfg, br, secretFn)
	if err != nil {
		return nil, fmt.Errorf("building http server failed: %w", err)
	}

	a := &App{
		cfg:     cfg,
		bridge:  br,
		http:    server,
		watcher: b.watcher,
		secret:  secret,
		Summary: newStartupSummary(cfg, b.watcher != nil),
	}
	if b.watcher != nil {
		b.watcher.Subscribe(a.applyReload)
	}
	return a, nil
}

func buildSession(cfg config.BrokerConfig) (broker.Session, error) {
	switch cfg.Kind {
	case config.BrokerPaper:
		logger.Infof("Broker session: paper gateway (max_quantity=%d fill_price=%g)", cfg.Paper.MaxQuantity, cfg.Paper.FillPrice)
		opts := []paper.Option{paper.WithMaxQuantity(cfg.Paper.MaxQuantity)}
		if cfg.Paper.FillPrice > 0 {
			px := decimal.NewFromFloat(cfg.Paper.FillPrice)
			opts = append(opts, paper.WithPriceSource(func(string) decimal.Decimal { return px }))
		}
		return paper.New(opts...), nil
	case config.BrokerAlpaca:
		logger.Infof("Broker session: alpaca (%s)", cfg.Alpaca.BaseURL)
		return alpaca.New(alpaca.Config{
			APIKey:    cfg.Alpaca.APIKey,
			APISecret: cfg.Alpaca.APISecret,
			BaseURL:   cfg.Alpaca.BaseURL,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported broker kind %q", cfg.Kind)
	}
}

func buildHTTPServer(cfg *config.Config, exec webhookhttp.Executor, secret webhookhttp.SecretFunc) (*webhookhttp.Server, error) {
	return webhookhttp.NewServer(webhookhttp.ServerConfig{
		Addr:     cfg.ListenAddr(),
		Executor: exec,
		Secret:   secret,
		Broker: webhookhttp.BrokerInfo{
			Host:     cfg.Broker.Host,
			Port:     cfg.Broker.Port,
			ClientID: cfg.Broker.ClientID,
		},
		RateLimit:         cfg.Webhook.RateLimit,
		Burst:             cfg.Webhook.Burst,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
	})
}

func bridgeOptions(cfg *config.Config) bridge.Options {
	settle := cfg.Bridge.OrdersSettle
	if settle == 0 {
		settle = -1
	}
	return bridge.Options{
		Currency:                cfg.Broker.Currency,
		PollInterval:            cfg.Bridge.PollInterval,
		PollTimeout:             cfg.Bridge.PollTimeout,
		OrdersSettle:            settle,
		ConnectTimeout:          cfg.Broker.ConnectTimeout,
		CommandTimeout:          cfg.Bridge.CommandTimeout,
		QueueLimit:              cfg.Bridge.QueueLimit,
		ConnectFailureThreshold: cfg.Broker.ConnectFailureThreshold,
		ConnectCooldown:         cfg.Broker.ConnectCooldown,
		SlowCommandThreshold:    cfg.Bridge.SlowCommand,
	}
}

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
}

func provideAppFromBuilder(b appBuilderDeps, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideAppBuilder(cfg *config.Config, watcher *config.Watcher) *AppBuilder {
	return NewAppBuilder(cfg, watcher)
}
