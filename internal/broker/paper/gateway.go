// Package paper implements an in-memory broker session for local runs and
// tests. Market orders fill on the first Wait after submission; limit and stop
// orders rest as Submitted until cancelled.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tvbridge/internal/broker"
	"tvbridge/internal/logger"

	"github.com/shopspring/decimal"
)

// Compile-time interface check.
var _ broker.Session = (*Gateway)(nil)

// RejectRule returns a non-empty reason to reject an order.
type RejectRule func(contract broker.Contract, order broker.Order) string

// PriceSource returns the fill price for a market order.
type PriceSource func(symbol string) decimal.Decimal

type Option func(*Gateway)

func WithRejectRule(rule RejectRule) Option {
	return func(g *Gateway) { g.reject = rule }
}

func WithPriceSource(src PriceSource) Option {
	return func(g *Gateway) { g.price = src }
}

// WithMaxQuantity rejects orders above limit as Inactive. Zero means no limit.
func WithMaxQuantity(limit int) Option {
	return func(g *Gateway) {
		if limit <= 0 {
			return
		}
		g.reject = func(_ broker.Contract, o broker.Order) string {
			if o.Quantity > limit {
				return fmt.Sprintf("Order quantity %d exceeds paper limit %d", o.Quantity, limit)
			}
			return ""
		}
	}
}

// Gateway is a paper broker. The mutex only protects inspection from test
// goroutines; the bridge still drives it from one goroutine.
type Gateway struct {
	mu        sync.Mutex
	connected bool
	nextID    int
	trades    []*broker.Trade
	reject    RejectRule
	price     PriceSource
}

func New(opts ...Option) *Gateway {
	g := &Gateway{nextID: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func (g *Gateway) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		g.connected = true
		logger.Debugf("paper gateway: connected (next order id %d)", g.nextID)
	}
	return nil
}

func (g *Gateway) Disconnect() error {
	g.mu.Lock()
	g.connected = false
	g.mu.Unlock()
	return nil
}

func (g *Gateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

// Drop simulates the transport going away underneath the session.
func (g *Gateway) Drop() {
	g.mu.Lock()
	g.connected = false
	g.mu.Unlock()
}

func (g *Gateway) PlaceOrder(ctx context.Context, contract broker.Contract, order broker.Order) (*broker.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	if order.Quantity <= 0 {
		return nil, fmt.Errorf("paper gateway: invalid quantity %d", order.Quantity)
	}
	trade := broker.NewTrade(g.nextID, contract, order)
	g.nextID++
	g.trades = append(g.trades, trade)
	return trade, nil
}

func (g *Gateway) OpenTrades(ctx context.Context) ([]*broker.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	out := make([]*broker.Trade, 0, len(g.trades))
	for _, tr := range g.trades {
		if tr.Status().Open() {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (g *Gateway) Wait(ctx context.Context, d time.Duration) error {
	if d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return broker.ErrConnectionLost
	}
	for _, tr := range g.trades {
		if tr.Status().Transient() {
			g.acknowledge(tr)
		}
	}
	return nil
}

func (g *Gateway) acknowledge(tr *broker.Trade) {
	order := tr.Order()
	if g.reject != nil {
		if reason := g.reject(tr.Contract(), order); reason != "" {
			tr.SetStatus(broker.StatusInactive, reason)
			return
		}
	}
	if order.OrderType != broker.OrderTypeMarket {
		tr.SetStatus(broker.StatusSubmitted, "")
		return
	}
	px := decimal.Zero
	if g.price != nil {
		px = g.price(tr.Contract().Symbol)
	}
	qty := decimal.NewFromInt(int64(order.Quantity))
	tr.SetFills(qty, decimal.Zero, px)
	tr.SetStatus(broker.StatusFilled, "")
}
