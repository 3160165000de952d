package paper

import (
	"context"
	"testing"

	"tvbridge/internal/broker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayLifecycle(t *testing.T) {
	ctx := context.Background()
	g := New(WithPriceSource(func(string) decimal.Decimal { return decimal.NewFromInt(100) }))

	_, err := g.PlaceOrder(ctx, broker.Stock("AAPL", "SMART", "USD"), broker.MarketOrder(broker.ActionBuy, 5))
	assert.ErrorIs(t, err, broker.ErrNotConnected)

	require.NoError(t, g.Connect(ctx))
	require.NoError(t, g.Connect(ctx))
	assert.True(t, g.IsConnected())

	mkt, err := g.PlaceOrder(ctx, broker.Stock("AAPL", "SMART", "USD"), broker.MarketOrder(broker.ActionBuy, 5))
	require.NoError(t, err)
	lmt, err := g.PlaceOrder(ctx, broker.Stock("MSFT", "SMART", "USD"), broker.LimitOrder(broker.ActionSell, 3, decimal.NewFromInt(400)))
	require.NoError(t, err)
	assert.Equal(t, 1, mkt.OrderID())
	assert.Equal(t, 2, lmt.OrderID())
	assert.Equal(t, broker.StatusPendingSubmit, mkt.Status())

	require.NoError(t, g.Wait(ctx, 0))
	assert.Equal(t, broker.StatusFilled, mkt.Status())
	assert.Equal(t, broker.StatusSubmitted, lmt.Status())
	filled, remaining, avg := mkt.Fills()
	assert.True(t, filled.Equal(decimal.NewFromInt(5)))
	assert.True(t, remaining.IsZero())
	assert.True(t, avg.Equal(decimal.NewFromInt(100)))

	open, err := g.OpenTrades(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, 2, open[0].OrderID())
}

func TestGatewayMaxQuantityRejects(t *testing.T) {
	ctx := context.Background()
	g := New(WithMaxQuantity(10))
	require.NoError(t, g.Connect(ctx))

	tr, err := g.PlaceOrder(ctx, broker.Stock("AAPL", "SMART", "USD"), broker.MarketOrder(broker.ActionBuy, 11))
	require.NoError(t, err)
	require.NoError(t, g.Wait(ctx, 0))
	assert.Equal(t, broker.StatusInactive, tr.Status())
	assert.Contains(t, tr.LastMessage(), "exceeds paper limit")
}

func TestGatewayDropBreaksWait(t *testing.T) {
	ctx := context.Background()
	g := New()
	require.NoError(t, g.Connect(ctx))
	g.Drop()
	err := g.Wait(ctx, 0)
	assert.ErrorIs(t, err, broker.ErrConnectionLost)
	assert.True(t, broker.IsConnectionLost(err))
}
