package config

import (
	"gopkg.in/yaml.v3"
)

const redactedMark = "******"

// Redacted returns a copy with secrets masked.
func (c *Config) Redacted() Config {
	out := *c
	out.Webhook.Secret = mask(out.Webhook.Secret)
	out.Broker.Alpaca.APIKey = mask(out.Broker.Alpaca.APIKey)
	out.Broker.Alpaca.APISecret = mask(out.Broker.Alpaca.APISecret)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redactedMark
}

type summaryView struct {
	App struct {
		Env       string `yaml:"env"`
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
		LogPath   string `yaml:"log_path,omitempty"`
	} `yaml:"app"`
	HTTP struct {
		Listen          string `yaml:"listen"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"http"`
	Webhook struct {
		Secret    string  `yaml:"secret"`
		RateLimit float64 `yaml:"rate_limit"`
		Burst     int     `yaml:"burst,omitempty"`
	} `yaml:"webhook"`
	Broker struct {
		Kind                    string `yaml:"kind"`
		Host                    string `yaml:"host"`
		Port                    int    `yaml:"port"`
		ClientID                int    `yaml:"client_id"`
		Currency                string `yaml:"currency"`
		ConnectTimeout          string `yaml:"connect_timeout"`
		ConnectFailureThreshold int    `yaml:"connect_failure_threshold"`
		ConnectCooldown         string `yaml:"connect_cooldown"`
		AlpacaBaseURL           string `yaml:"alpaca_base_url,omitempty"`
		AlpacaAPIKey            string `yaml:"alpaca_api_key,omitempty"`
	} `yaml:"broker"`
	Bridge struct {
		PollInterval   string `yaml:"poll_interval"`
		PollTimeout    string `yaml:"poll_timeout"`
		OrdersSettle   string `yaml:"orders_settle"`
		CommandTimeout string `yaml:"command_timeout"`
		QueueLimit     int    `yaml:"queue_limit"`
	} `yaml:"bridge"`
}

// SummaryYAML renders the redacted effective configuration.
func (c *Config) SummaryYAML() (string, error) {
	r := c.Redacted()
	var v summaryView
	v.App.Env = r.App.Env
	v.App.LogLevel = r.App.LogLevel
	v.App.LogFormat = r.App.LogFormat
	v.App.LogPath = r.App.LogPath
	v.HTTP.Listen = r.ListenAddr()
	v.HTTP.ShutdownTimeout = r.HTTP.ShutdownTimeout.String()
	v.Webhook.Secret = r.Webhook.Secret
	if v.Webhook.Secret == "" {
		v.Webhook.Secret = "(disabled)"
	}
	v.Webhook.RateLimit = r.Webhook.RateLimit
	v.Webhook.Burst = r.Webhook.Burst
	v.Broker.Kind = r.Broker.Kind
	v.Broker.Host = r.Broker.Host
	v.Broker.Port = r.Broker.Port
	v.Broker.ClientID = r.Broker.ClientID
	v.Broker.Currency = r.Broker.Currency
	v.Broker.ConnectTimeout = r.Broker.ConnectTimeout.String()
	v.Broker.ConnectFailureThreshold = r.Broker.ConnectFailureThreshold
	v.Broker.ConnectCooldown = r.Broker.ConnectCooldown.String()
	if r.Broker.Kind == BrokerAlpaca {
		v.Broker.AlpacaBaseURL = r.Broker.Alpaca.BaseURL
		v.Broker.AlpacaAPIKey = r.Broker.Alpaca.APIKey
	}
	v.Bridge.PollInterval = r.Bridge.PollInterval.String()
	v.Bridge.PollTimeout = r.Bridge.PollTimeout.String()
	v.Bridge.OrdersSettle = r.Bridge.OrdersSettle.String()
	v.Bridge.CommandTimeout = r.Bridge.CommandTimeout.String()
	v.Bridge.QueueLimit = r.Bridge.QueueLimit

	raw, err := yaml.Marshal(&v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
