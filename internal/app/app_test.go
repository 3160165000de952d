package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tvbridge/internal/broker"
	"tvbridge/internal/broker/paper"
	"tvbridge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "test", LogLevel: "error", LogFormat: "text"},
		HTTP: config.HTTPConfig{Host: "127.0.0.1", Port: 0, ReadHeaderTimeout: time.Second, ShutdownTimeout: 2 * time.Second},
		Webhook: config.WebhookConfig{
			Secret: "s3cret",
		},
		Broker: config.BrokerConfig{
			Kind:                    config.BrokerPaper,
			Host:                    "127.0.0.1",
			Port:                    7497,
			ClientID:                1,
			Currency:                "USD",
			ConnectTimeout:          time.Second,
			ConnectFailureThreshold: 3,
			ConnectCooldown:         time.Second,
		},
		Bridge: config.BridgeConfig{
			PollInterval:   10 * time.Millisecond,
			PollTimeout:    200 * time.Millisecond,
			OrdersSettle:   0,
			CommandTimeout: 2 * time.Second,
			SlowCommand:    time.Second,
		},
	}
}

func buildTestApp(t *testing.T, cfg *config.Config, session broker.Session) *App {
	t.Helper()
	a, err := NewAppBuilder(cfg, nil, WithSession(session)).Build(context.Background())
	require.NoError(t, err)
	a.bridge.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.bridge.Stop(ctx)
	})
	return a
}

func postJSON(t *testing.T, h http.Handler, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhookPlacesOrderThroughPaperGateway(t *testing.T) {
	a := buildTestApp(t, testConfig(), paper.New())
	h := a.http.Handler()

	rec := postJSON(t, h, "/webhook", map[string]any{
		"symbol":   "aapl",
		"action":   "buy",
		"quantity": "10",
		"secret":   "s3cret",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(1), out["order_id"])
	assert.Equal(t, "AAPL", out["symbol"])
	assert.Equal(t, "BUY", out["action"])
	assert.Equal(t, "Order 1 submitted successfully", out["message"])
	connected, err := a.bridge.IsConnected(context.Background())
	require.NoError(t, err)
	assert.True(t, connected)
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	a := buildTestApp(t, testConfig(), paper.New())
	rec := postJSON(t, a.http.Handler(), "/webhook", map[string]any{
		"symbol": "AAPL", "action": "BUY", "quantity": 1, "secret": "nope",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, a.bridge.Executed())
}

func TestReloadSwapsSecret(t *testing.T) {
	cfg := testConfig()
	a := buildTestApp(t, cfg, paper.New())

	next := *cfg
	next.Webhook.Secret = "rotated"
	a.applyReload(cfg, &next)
	assert.Equal(t, "rotated", a.Secret())

	body := map[string]any{"symbol": "AAPL", "action": "SELL", "quantity": 2}
	rec := postJSON(t, a.http.Handler(), "/webhook", body, map[string]string{"X-Webhook-Secret": "s3cret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = postJSON(t, a.http.Handler(), "/webhook", body, map[string]string{"X-Webhook-Secret": "rotated"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRestartRequired(t *testing.T) {
	cfg := testConfig()
	next := *cfg
	next.App.LogLevel = "debug"
	next.Webhook.Secret = "x"
	assert.False(t, restartRequired(cfg, &next))
	next.Broker.Port = 4002
	assert.True(t, restartRequired(cfg, &next))
}

func TestBridgeOptionsFromConfig(t *testing.T) {
	cfg := testConfig()
	opts := bridgeOptions(cfg)
	assert.Equal(t, time.Duration(-1), opts.OrdersSettle)
	assert.Equal(t, "USD", opts.Currency)
	assert.Equal(t, 10*time.Millisecond, opts.PollInterval)

	cfg.Bridge.OrdersSettle = 500 * time.Millisecond
	assert.Equal(t, 500*time.Millisecond, bridgeOptions(cfg).OrdersSettle)
}

func TestBuildSessionKinds(t *testing.T) {
	s, err := buildSession(config.BrokerConfig{Kind: config.BrokerPaper})
	require.NoError(t, err)
	assert.IsType(t, &paper.Gateway{}, s)

	s, err = buildSession(config.BrokerConfig{
		Kind:   config.BrokerAlpaca,
		Alpaca: config.AlpacaConfig{APIKey: "k", APISecret: "s", BaseURL: "https://paper-api.alpaca.markets"},
	})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = buildSession(config.BrokerConfig{Kind: "ib"})
	assert.Error(t, err)
}

func TestPaperFillPriceFromConfig(t *testing.T) {
	s, err := buildSession(config.BrokerConfig{Kind: config.BrokerPaper, Paper: config.PaperConfig{FillPrice: 101.5}})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))

	tr, err := s.PlaceOrder(ctx, broker.Stock("AAPL", "SMART", "USD"), broker.MarketOrder(broker.ActionBuy, 3))
	require.NoError(t, err)
	require.NoError(t, s.Wait(ctx, 0))

	_, _, avg := tr.Fills()
	assert.Equal(t, "101.5", avg.String())
	assert.Equal(t, broker.StatusFilled, tr.Status())
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	session := paper.New()
	a, err := NewAppBuilder(cfg, nil, WithSession(session)).Build(context.Background())
	require.NoError(t, err)
	a.Summary = nil

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	_, err = a.bridge.Connect(context.Background())
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, session.IsConnected())
}
