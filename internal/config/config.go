package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvConfigPath names the variable consulted when no --config flag is given.
const EnvConfigPath = "TVBRIDGE_CONFIG"

// envBindings maps config keys to the environment names operators already
// use, after the TVBRIDGE_ form. The first name that is set wins.
var envBindings = map[string][]string{
	"app.env":                          nil,
	"app.log_level":                    {"LOG_LEVEL"},
	"app.log_format":                   nil,
	"app.log_path":                     {"LOG_PATH"},
	"http.host":                        {"HTTP_HOST", "FLASK_HOST"},
	"http.port":                        {"HTTP_PORT", "FLASK_PORT"},
	"http.read_header_timeout":         nil,
	"http.shutdown_timeout":            nil,
	"webhook.secret":                   {"WEBHOOK_SECRET"},
	"webhook.rate_limit":               nil,
	"webhook.burst":                    nil,
	"broker.kind":                      nil,
	"broker.host":                      {"IB_HOST"},
	"broker.port":                      {"IB_PORT"},
	"broker.client_id":                 {"IB_CLIENT_ID"},
	"broker.currency":                  nil,
	"broker.connect_timeout":           nil,
	"broker.connect_failure_threshold": nil,
	"broker.connect_cooldown":          nil,
	"broker.paper.max_quantity":        nil,
	"broker.paper.fill_price":          nil,
	"broker.alpaca.api_key":            {"APCA_API_KEY_ID"},
	"broker.alpaca.api_secret":         {"APCA_API_SECRET_KEY"},
	"broker.alpaca.base_url":           {"APCA_API_BASE_URL"},
	"bridge.poll_interval":             nil,
	"bridge.poll_timeout":              nil,
	"bridge.orders_settle":             nil,
	"bridge.command_timeout":           nil,
	"bridge.queue_limit":               nil,
	"bridge.slow_command":              nil,
}

func envNames(key string) []string {
	primary := "TVBRIDGE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return append([]string{primary}, envBindings[key]...)
}

// ResolvePath returns the explicit path, or the one named by TVBRIDGE_CONFIG.
func ResolvePath(flagPath string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(EnvConfigPath))
}

// Load reads the optional YAML file at path, overlays the environment, fills
// defaults and validates. An empty path means environment only.
func Load(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	for key := range envBindings {
		args := append([]string{key}, envNames(key)...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("binding env for %s failed: %w", key, err)
		}
	}
	if path == "" {
		return v, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(abs)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", abs, err)
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func collectSettingsKeys(settings map[string]any, dest keySet) {
	if dest == nil || len(settings) == 0 {
		return
	}
	flattenConfigKeys("", settings, dest)
}

func flattenConfigKeys(prefix string, node any, dest keySet) {
	switch val := node.(type) {
	case map[string]any:
		for k, v := range val {
			next := strings.ToLower(strings.TrimSpace(k))
			if next == "" {
				continue
			}
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenConfigKeys(next, v, dest)
		}
	default:
		if prefix != "" {
			dest.mark(prefix)
		}
	}
}
