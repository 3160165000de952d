package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the full tvbridge configuration.
type Config struct {
	App     AppConfig     `toml:"app"`
	HTTP    HTTPConfig    `toml:"http"`
	Webhook WebhookConfig `toml:"webhook"`
	Broker  BrokerConfig  `toml:"broker"`
	Bridge  BridgeConfig  `toml:"bridge"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogPath   string `toml:"log_path"`
}

type HTTPConfig struct {
	Host              string        `toml:"host"`
	Port              int           `toml:"port"`
	ReadHeaderTimeout time.Duration `toml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout"`
}

type WebhookConfig struct {
	// Secret is compared against the X-Webhook-Secret header or the body's
	// "secret" field. Empty disables the check.
	Secret string `toml:"secret"`
	// RateLimit is requests per second across all callers; 0 disables it.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

type BrokerConfig struct {
	// Kind selects the session implementation: paper or alpaca.
	Kind     string `toml:"kind"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	ClientID int    `toml:"client_id"`
	Currency string `toml:"currency"`

	ConnectTimeout          time.Duration `toml:"connect_timeout"`
	ConnectFailureThreshold int           `toml:"connect_failure_threshold"`
	ConnectCooldown         time.Duration `toml:"connect_cooldown"`

	Paper  PaperConfig  `toml:"paper"`
	Alpaca AlpacaConfig `toml:"alpaca"`
}

type PaperConfig struct {
	// MaxQuantity makes the paper gateway reject larger orders; 0 means no cap.
	MaxQuantity int `toml:"max_quantity"`
	// FillPrice is the price market orders fill at; 0 reports fills at zero.
	FillPrice float64 `toml:"fill_price"`
}

type AlpacaConfig struct {
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
	BaseURL   string `toml:"base_url"`
}

type BridgeConfig struct {
	PollInterval   time.Duration `toml:"poll_interval"`
	PollTimeout    time.Duration `toml:"poll_timeout"`
	OrdersSettle   time.Duration `toml:"orders_settle"`
	CommandTimeout time.Duration `toml:"command_timeout"`
	QueueLimit     int           `toml:"queue_limit"`
	SlowCommand    time.Duration `toml:"slow_command"`
}

// ListenAddr is the HTTP bind address in host:port form.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

const (
	BrokerPaper  = "paper"
	BrokerAlpaca = "alpaca"
)

func (b BrokerConfig) NormalizedKind() string {
	return strings.ToLower(strings.TrimSpace(b.Kind))
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}
