package app

import (
	"fmt"
	"strings"

	"tvbridge/internal/config"
)

type StartupSummary struct {
	Listen    string
	Broker    BrokerSummary
	Bridge    BridgeSummary
	Webhook   WebhookSummary
	HotReload bool
	// Effective holds the redacted configuration as YAML.
	Effective string
}

type BrokerSummary struct {
	Kind     string
	Endpoint string
	ClientID int
	Currency string
}

type BridgeSummary struct {
	PollInterval string
	PollTimeout  string
	QueueLimit   int
}

type WebhookSummary struct {
	SecretSet bool
	RateLimit string
}

func newStartupSummary(cfg *config.Config, hotReload bool) *StartupSummary {
	s := &StartupSummary{
		Listen: cfg.ListenAddr(),
		Broker: BrokerSummary{
			Kind:     cfg.Broker.Kind,
			Endpoint: fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
			ClientID: cfg.Broker.ClientID,
			Currency: cfg.Broker.Currency,
		},
		Bridge: BridgeSummary{
			PollInterval: cfg.Bridge.PollInterval.String(),
			PollTimeout:  cfg.Bridge.PollTimeout.String(),
			QueueLimit:   cfg.Bridge.QueueLimit,
		},
		Webhook: WebhookSummary{
			SecretSet: cfg.Webhook.Secret != "",
			RateLimit: "off",
		},
		HotReload: hotReload,
	}
	if cfg.Broker.Kind == config.BrokerAlpaca {
		s.Broker.Endpoint = cfg.Broker.Alpaca.BaseURL
	}
	if cfg.Webhook.RateLimit > 0 {
		s.Webhook.RateLimit = fmt.Sprintf("%g/s burst %d", cfg.Webhook.RateLimit, cfg.Webhook.Burst)
	}
	if y, err := cfg.SummaryYAML(); err == nil {
		s.Effective = y
	}
	return s
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	title := "TVBRIDGE STARTUP SUMMARY"
	fmt.Printf("%*s\n", 40+len(title)/2, title)
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("[HTTP]")
	fmt.Printf("  Listen:       %s\n", s.Listen)
	fmt.Printf("  Secret:       %s\n", onOff(s.Webhook.SecretSet))
	fmt.Printf("  Rate limit:   %s\n", s.Webhook.RateLimit)
	fmt.Println()

	fmt.Println("[BROKER]")
	fmt.Printf("  Kind:         %s\n", s.Broker.Kind)
	fmt.Printf("  Endpoint:     %s\n", s.Broker.Endpoint)
	fmt.Printf("  Client ID:    %d\n", s.Broker.ClientID)
	fmt.Printf("  Currency:     %s\n", s.Broker.Currency)
	fmt.Println()

	fmt.Println("[SESSION BRIDGE]")
	fmt.Printf("  Poll:         every %s, up to %s\n", s.Bridge.PollInterval, s.Bridge.PollTimeout)
	queue := "unbounded"
	if s.Bridge.QueueLimit > 0 {
		queue = fmt.Sprintf("%d", s.Bridge.QueueLimit)
	}
	fmt.Printf("  Queue limit:  %s\n", queue)
	fmt.Printf("  Hot reload:   %s\n", onOff(s.HotReload))
	fmt.Println()

	if s.Effective != "" {
		fmt.Println("[EFFECTIVE CONFIG]")
		fmt.Println("  " + strings.ReplaceAll(strings.TrimRight(s.Effective, "\n"), "\n", "\n  "))
	}
	fmt.Println(strings.Repeat("=", 80))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
