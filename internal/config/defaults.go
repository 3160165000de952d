package config

import (
	"strings"
	"time"
)

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultHTTPHost        = "0.0.0.0"
	defaultHTTPPort        = 8000
	defaultReadHeader      = 10 * time.Second
	defaultShutdown        = 15 * time.Second
	defaultWebhookBurst    = 5
	defaultBrokerKind      = BrokerPaper
	defaultBrokerHost      = "127.0.0.1"
	defaultBrokerPort      = 7497
	defaultBrokerClientID  = 1
	defaultBrokerCurrency  = "USD"
	defaultConnectTimeout  = 10 * time.Second
	defaultConnectCooldown = 30 * time.Second
	defaultAlpacaBaseURL   = "https://paper-api.alpaca.markets"
	defaultPollInterval    = 500 * time.Millisecond
	defaultPollTimeout     = 5 * time.Second
	defaultOrdersSettle    = time.Second
	defaultCommandTimeout  = 30 * time.Second
	defaultSlowCommand     = 2 * time.Second
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.HTTP.applyDefaults(keys)
	c.Webhook.applyDefaults(keys)
	c.Broker.applyDefaults(keys)
	c.Bridge.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
	)
	a.LogLevel = strings.ToLower(strings.TrimSpace(a.LogLevel))
	a.LogFormat = strings.ToLower(strings.TrimSpace(a.LogFormat))
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	if h == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("http.host", &h.Host, defaultHTTPHost),
		intFieldDefault("http.port", &h.Port, defaultHTTPPort),
		durationFieldDefault("http.read_header_timeout", &h.ReadHeaderTimeout, defaultReadHeader),
		durationFieldDefault("http.shutdown_timeout", &h.ShutdownTimeout, defaultShutdown),
	)
}

func (w *WebhookConfig) applyDefaults(keys keySet) {
	if w == nil {
		return
	}
	w.Secret = strings.TrimSpace(w.Secret)
	if w.RateLimit > 0 {
		applyFieldDefaults(keys, intFieldDefault("webhook.burst", &w.Burst, defaultWebhookBurst))
	}
}

func (b *BrokerConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("broker.kind", &b.Kind, defaultBrokerKind),
		stringFieldDefault("broker.host", &b.Host, defaultBrokerHost),
		intFieldDefault("broker.port", &b.Port, defaultBrokerPort),
		stringFieldDefault("broker.currency", &b.Currency, defaultBrokerCurrency),
		durationFieldDefault("broker.connect_timeout", &b.ConnectTimeout, defaultConnectTimeout),
		durationFieldDefault("broker.connect_cooldown", &b.ConnectCooldown, defaultConnectCooldown),
		stringFieldDefault("broker.alpaca.base_url", &b.Alpaca.BaseURL, defaultAlpacaBaseURL),
	)
	// client id 0 is a valid broker client id, so only an unset key defaults.
	if !keys.isSet("broker.client_id") && b.ClientID == 0 {
		b.ClientID = defaultBrokerClientID
	}
	b.Kind = b.NormalizedKind()
	b.Currency = strings.ToUpper(strings.TrimSpace(b.Currency))
}

func (b *BridgeConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		durationFieldDefault("bridge.poll_interval", &b.PollInterval, defaultPollInterval),
		durationFieldDefault("bridge.poll_timeout", &b.PollTimeout, defaultPollTimeout),
		durationFieldDefault("bridge.orders_settle", &b.OrdersSettle, defaultOrdersSettle),
		durationFieldDefault("bridge.command_timeout", &b.CommandTimeout, defaultCommandTimeout),
		durationFieldDefault("bridge.slow_command", &b.SlowCommand, defaultSlowCommand),
	)
}

// Helper functions

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && *target <= 0 },
		apply: func() { *target = def },
	}
}

func durationFieldDefault(key string, target *time.Duration, def time.Duration) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && *target == 0 },
		apply: func() { *target = def },
	}
}
