package config

import (
	"fmt"
	"net/url"
	"strings"

	"tvbridge/internal/logger"
)

func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.HTTP.validate(); err != nil {
		return err
	}
	if err := c.Webhook.validate(); err != nil {
		return err
	}
	if err := c.Broker.validate(); err != nil {
		return err
	}
	if err := c.Bridge.validate(); err != nil {
		return err
	}
	return nil
}

// Validate re-runs the checks Load applies, for configs built in code.
func (c *Config) Validate() error {
	return validate(c)
}

func (a *AppConfig) validate() error {
	switch a.LogLevel {
	case "debug", "info", "warn", "warning", "error", "critical":
	default:
		return fmt.Errorf("app.log_level must be one of debug/info/warning/error/critical, got %q", a.LogLevel)
	}
	switch a.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	return nil
}

func (h *HTTPConfig) validate() error {
	if err := validatePort("http.port", h.Port); err != nil {
		return err
	}
	if h.ShutdownTimeout < 0 {
		return fmt.Errorf("http.shutdown_timeout must be >= 0")
	}
	return nil
}

func (w *WebhookConfig) validate() error {
	if w.RateLimit < 0 {
		return fmt.Errorf("webhook.rate_limit must be >= 0")
	}
	if w.RateLimit > 0 && w.Burst <= 0 {
		return fmt.Errorf("webhook.burst must be > 0 when rate_limit is set")
	}
	if w.Secret == "" {
		logger.Warnf("webhook.secret is empty; /webhook accepts unauthenticated alerts")
	}
	return nil
}

func (b *BrokerConfig) validate() error {
	switch b.Kind {
	case BrokerPaper:
	case BrokerAlpaca:
		if strings.TrimSpace(b.Alpaca.APIKey) == "" || strings.TrimSpace(b.Alpaca.APISecret) == "" {
			return fmt.Errorf("broker.alpaca requires api_key and api_secret")
		}
		if _, err := url.ParseRequestURI(b.Alpaca.BaseURL); err != nil {
			return fmt.Errorf("broker.alpaca.base_url invalid: %w", err)
		}
	default:
		return fmt.Errorf("broker.kind must be %s or %s, got %q", BrokerPaper, BrokerAlpaca, b.Kind)
	}
	if strings.TrimSpace(b.Host) == "" {
		return fmt.Errorf("broker.host cannot be empty")
	}
	if err := validatePort("broker.port", b.Port); err != nil {
		return err
	}
	if b.ClientID < 0 {
		return fmt.Errorf("broker.client_id must be >= 0")
	}
	if len(b.Currency) != 3 {
		return fmt.Errorf("broker.currency must be a 3-letter code, got %q", b.Currency)
	}
	if b.ConnectTimeout <= 0 {
		return fmt.Errorf("broker.connect_timeout must be > 0")
	}
	if b.ConnectFailureThreshold < 0 {
		return fmt.Errorf("broker.connect_failure_threshold must be >= 0")
	}
	if b.Paper.MaxQuantity < 0 {
		return fmt.Errorf("broker.paper.max_quantity must be >= 0")
	}
	if b.Paper.FillPrice < 0 {
		return fmt.Errorf("broker.paper.fill_price must be >= 0")
	}
	return nil
}

func (b *BridgeConfig) validate() error {
	if b.PollInterval <= 0 {
		return fmt.Errorf("bridge.poll_interval must be > 0")
	}
	if b.PollTimeout < b.PollInterval {
		return fmt.Errorf("bridge.poll_timeout (%s) must be >= bridge.poll_interval (%s)", b.PollTimeout, b.PollInterval)
	}
	if b.OrdersSettle < 0 {
		return fmt.Errorf("bridge.orders_settle must be >= 0")
	}
	if b.CommandTimeout < b.PollTimeout {
		return fmt.Errorf("bridge.command_timeout (%s) must be >= bridge.poll_timeout (%s)", b.CommandTimeout, b.PollTimeout)
	}
	if b.QueueLimit < 0 {
		return fmt.Errorf("bridge.queue_limit must be >= 0 (0 = unbounded)")
	}
	return nil
}

func validatePort(key string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be in 1..65535, got %d", key, port)
	}
	return nil
}
