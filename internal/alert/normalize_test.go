package alert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_MarketDefaults(t *testing.T) {
	intent, err := Normalize(map[string]any{"action": "buy", "symbol": "aapl", "quantity": 100})
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, intent.Action())
	assert.Equal(t, "AAPL", intent.Symbol())
	assert.Equal(t, 100, intent.Quantity())
	assert.Equal(t, OrderTypeMarket, intent.OrderType())
	assert.Equal(t, "SMART", intent.Exchange())
	_, hasLimit := intent.LimitPrice()
	_, hasStop := intent.StopPrice()
	assert.False(t, hasLimit)
	assert.False(t, hasStop)
	assert.True(t, intent.Valid())
}

func TestNormalize_NullOrderTypeDefaultsToMarket(t *testing.T) {
	intent, err := Normalize(map[string]any{"action": "SELL", "symbol": "AAPL", "quantity": 1, "orderType": nil})
	require.NoError(t, err)
	assert.Equal(t, OrderTypeMarket, intent.OrderType())
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := map[string]any{"action": "SELL", "symbol": "msft", "quantity": "5", "orderType": "limit", "limitPrice": 410.5, "exchange": "nasdaq"}
	a, err := Normalize(raw)
	require.NoError(t, err)
	b, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())

	price, ok := a.LimitPrice()
	require.True(t, ok)
	assert.Equal(t, "410.5", price.String())
	assert.Equal(t, "NASDAQ", a.Exchange())
}

func TestNormalize_Failures(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		kind error
	}{
		{"missing action", map[string]any{"symbol": "AAPL", "quantity": 1}, ErrMissingField},
		{"blank symbol", map[string]any{"action": "BUY", "symbol": "  ", "quantity": 1}, ErrMissingField},
		{"zero quantity", map[string]any{"action": "BUY", "symbol": "AAPL", "quantity": 0}, ErrInvalidQuantity},
		{"negative quantity", map[string]any{"action": "BUY", "symbol": "AAPL", "quantity": -3}, ErrInvalidQuantity},
		{"fractional quantity", map[string]any{"action": "BUY", "symbol": "AAPL", "quantity": 1.5}, ErrInvalidQuantity},
		{"missing quantity", map[string]any{"action": "BUY", "symbol": "AAPL"}, ErrInvalidQuantity},
		{"bad action", map[string]any{"action": "HOLD", "symbol": "AAPL", "quantity": 1}, ErrInvalidAction},
		{"bad order type", map[string]any{"action": "BUY", "symbol": "AAPL", "quantity": 1, "orderType": "TRAIL"}, ErrInvalidOrderType},
		{"empty order type", map[string]any{"action": "BUY", "symbol": "AAPL", "quantity": 1, "orderType": ""}, ErrInvalidOrderType},
		{"limit without price", map[string]any{"action": "BUY", "symbol": "AAPL", "quantity": 10, "orderType": "LIMIT"}, ErrMissingPrice},
		{"limit with null price", map[string]any{"action": "BUY", "symbol": "AAPL", "quantity": 10, "orderType": "LIMIT", "limitPrice": nil}, ErrMissingPrice},
		{"stop without price", map[string]any{"action": "SELL", "symbol": "AAPL", "quantity": 10, "orderType": "STOP", "limitPrice": 10}, ErrMissingPrice},
		{"stop with junk price", map[string]any{"action": "SELL", "symbol": "AAPL", "quantity": 10, "orderType": "STOP", "stopPrice": "abc"}, ErrInvalidPrice},
		{"negative limit", map[string]any{"action": "SELL", "symbol": "AAPL", "quantity": 10, "orderType": "LIMIT", "limitPrice": -1}, ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent, err := Normalize(tc.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
			assert.False(t, intent.Valid())

			var nerr *NormalizationError
			require.True(t, errors.As(err, &nerr))
			assert.NotEmpty(t, nerr.KindName())
		})
	}
}

func TestNormalize_RuleOrder(t *testing.T) {
	// quantity is checked before action validity
	_, err := Normalize(map[string]any{"action": "HOLD", "symbol": "AAPL", "quantity": 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// action validity is checked before order type
	_, err = Normalize(map[string]any{"action": "HOLD", "symbol": "AAPL", "quantity": 1, "orderType": "TRAIL"})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestNormalize_SnakeCaseAliases(t *testing.T) {
	intent, err := Normalize(map[string]any{
		"action": "sell", "symbol": "tsla", "quantity": 2,
		"order_type": "stop", "stop_price": "199.95",
	})
	require.NoError(t, err)
	assert.Equal(t, OrderTypeStop, intent.OrderType())
	price, ok := intent.StopPrice()
	require.True(t, ok)
	assert.Equal(t, "199.95", price.String())
}

func TestNormalize_IgnoresIrrelevantPrice(t *testing.T) {
	intent, err := Normalize(map[string]any{"action": "BUY", "symbol": "AAPL", "quantity": 1, "limitPrice": 100})
	require.NoError(t, err)
	_, ok := intent.LimitPrice()
	assert.False(t, ok)
}
