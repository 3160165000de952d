package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// clearEnv blanks every variable Load consults; viper treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvConfigPath, "")
	for key := range envBindings {
		for _, name := range envNames(key) {
			t.Setenv(name, "")
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tvbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "text", cfg.App.LogFormat)
	assert.Equal(t, "0.0.0.0:8000", cfg.ListenAddr())
	assert.Equal(t, BrokerPaper, cfg.Broker.Kind)
	assert.Equal(t, "127.0.0.1", cfg.Broker.Host)
	assert.Equal(t, 7497, cfg.Broker.Port)
	assert.Equal(t, 1, cfg.Broker.ClientID)
	assert.Equal(t, "USD", cfg.Broker.Currency)
	assert.Equal(t, 10*time.Second, cfg.Broker.ConnectTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Bridge.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Bridge.PollTimeout)
	assert.Equal(t, time.Second, cfg.Bridge.OrdersSettle)
	assert.Zero(t, cfg.Bridge.QueueLimit)
	assert.Empty(t, cfg.Webhook.Secret)
}

func TestLoadLegacyEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("IB_HOST", "gateway.local")
	t.Setenv("IB_PORT", "4002")
	t.Setenv("IB_CLIENT_ID", "7")
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("FLASK_HOST", "127.0.0.1")
	t.Setenv("FLASK_PORT", "9000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gateway.local", cfg.Broker.Host)
	assert.Equal(t, 4002, cfg.Broker.Port)
	assert.Equal(t, 7, cfg.Broker.ClientID)
	assert.Equal(t, "s3cret", cfg.Webhook.Secret)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr())
}

func TestHTTPEnvWinsOverFlaskEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLASK_PORT", "9000")
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTP.Port)
}

func TestClientIDZeroIsKept(t *testing.T) {
	clearEnv(t)
	t.Setenv("IB_CLIENT_ID", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Broker.ClientID)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
app:
  log_level: warning
broker:
  host: 10.0.0.5
  port: 4001
  connect_failure_threshold: 3
bridge:
  poll_timeout: 8s
  queue_limit: 16
webhook:
  rate_limit: 2.5
`)
	t.Setenv("IB_PORT", "4002")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warning", cfg.App.LogLevel)
	assert.Equal(t, "10.0.0.5", cfg.Broker.Host)
	assert.Equal(t, 4002, cfg.Broker.Port, "env overrides file")
	assert.Equal(t, 3, cfg.Broker.ConnectFailureThreshold)
	assert.Equal(t, 8*time.Second, cfg.Bridge.PollTimeout)
	assert.Equal(t, 16, cfg.Bridge.QueueLimit)
	assert.InDelta(t, 2.5, cfg.Webhook.RateLimit, 1e-9)
	assert.Equal(t, 5, cfg.Webhook.Burst)
}

func TestPrefixedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TVBRIDGE_BRIDGE_QUEUE_LIMIT", "4")
	t.Setenv("TVBRIDGE_BROKER_PORT", "4100")
	t.Setenv("IB_PORT", "4002")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Bridge.QueueLimit)
	assert.Equal(t, 4100, cfg.Broker.Port)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/tvbridge.yaml")
	assert.Equal(t, "/tmp/x.yaml", ResolvePath(" /tmp/x.yaml "))
	assert.Equal(t, "/etc/tvbridge.yaml", ResolvePath(""))
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "app.log_level"},
		{"bad port", map[string]string{"IB_PORT": "70000"}, "broker.port"},
		{"bad kind", map[string]string{"TVBRIDGE_BROKER_KIND": "ib"}, "broker.kind"},
		{"alpaca without keys", map[string]string{"TVBRIDGE_BROKER_KIND": "alpaca"}, "api_key"},
		{"poll timeout below interval", map[string]string{"TVBRIDGE_BRIDGE_POLL_TIMEOUT": "100ms"}, "bridge.poll_timeout"},
		{"negative queue", map[string]string{"TVBRIDGE_BRIDGE_QUEUE_LIMIT": "-1"}, "bridge.queue_limit"},
		{"negative paper fill price", map[string]string{"TVBRIDGE_BROKER_PAPER_FILL_PRICE": "-2.5"}, "broker.paper.fill_price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRedactedSummary(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEBHOOK_SECRET", "hunter2")

	cfg, err := Load("")
	require.NoError(t, err)

	out, err := cfg.SummaryYAML()
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")

	var parsed map[string]map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, redactedMark, parsed["webhook"]["secret"])
	assert.Equal(t, "0.0.0.0:8000", parsed["http"]["listen"])
	assert.Equal(t, "paper", parsed["broker"]["kind"])
	assert.Equal(t, "hunter2", cfg.Webhook.Secret, "redaction copies")
}

func TestWatcherReload(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "app:\n  log_level: info\nwebhook:\n  secret: one\n")

	w, err := newWatcher(path)
	require.NoError(t, err)
	assert.Equal(t, "one", w.Current().Webhook.Secret)

	var prev, next *Config
	w.Subscribe(func(p, n *Config) { prev, next = p, n })

	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: debug\nwebhook:\n  secret: two\n"), 0o600))
	require.NoError(t, w.v.ReadInConfig())
	require.NoError(t, w.reload())

	require.NotNil(t, next)
	assert.Equal(t, "one", prev.Webhook.Secret)
	assert.Equal(t, "two", next.Webhook.Secret)
	assert.Equal(t, "debug", w.Current().App.LogLevel)
	assert.GreaterOrEqual(t, w.Version(), int64(2))
}

func TestWatcherKeepsLastGoodConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "broker:\n  port: 4001\n")

	w, err := newWatcher(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("broker:\n  port: 0\n"), 0o600))
	require.NoError(t, w.v.ReadInConfig())
	assert.Error(t, w.reload())
	assert.Equal(t, 4001, w.Current().Broker.Port)
}
