// Package broker defines the stateful broker session the bridge drives and the
// order/trade types exchanged with it.
//
// A Session is not safe for concurrent use. Callers must drive it from a
// single goroutine; internal/bridge is the only package that does so.
package broker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Session is a single-client, connection-oriented broker link.
type Session interface {
	// Connect opens the link. Calling Connect on a connected session is a no-op.
	Connect(ctx context.Context) error

	// Disconnect closes the link. Errors are informational; the session is
	// considered disconnected afterwards either way.
	Disconnect() error

	// IsConnected reports whether the link is currently up.
	IsConnected() bool

	// PlaceOrder submits an order and returns a handle whose status is
	// updated as the broker acknowledges it.
	PlaceOrder(ctx context.Context, contract Contract, order Order) (*Trade, error)

	// OpenTrades requests every open order known to the broker, in the
	// broker's own order.
	OpenTrades(ctx context.Context) ([]*Trade, error)

	// Wait lets the session process inbound broker messages for d, updating
	// any live Trade handles. It returns early with an error if the link
	// breaks or ctx ends.
	Wait(ctx context.Context, d time.Duration) error
}

// Contract identifies the instrument.
type Contract struct {
	Symbol   string `json:"symbol"`
	SecType  string `json:"sec_type"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}

// Stock builds an equity contract.
func Stock(symbol, exchange, currency string) Contract {
	return Contract{Symbol: symbol, SecType: "STK", Exchange: exchange, Currency: currency}
}

type OrderType string

const (
	OrderTypeMarket OrderType = "MKT"
	OrderTypeLimit  OrderType = "LMT"
	OrderTypeStop   OrderType = "STP"
)

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

const DefaultTimeInForce = "DAY"

// Order is the broker-side order request.
type Order struct {
	Action      Action           `json:"action"`
	Quantity    int              `json:"quantity"`
	OrderType   OrderType        `json:"order_type"`
	LimitPrice  *decimal.Decimal `json:"limit_price,omitempty"`
	StopPrice   *decimal.Decimal `json:"stop_price,omitempty"`
	TimeInForce string           `json:"tif"`
}

func MarketOrder(action Action, qty int) Order {
	return Order{Action: action, Quantity: qty, OrderType: OrderTypeMarket, TimeInForce: DefaultTimeInForce}
}

func LimitOrder(action Action, qty int, price decimal.Decimal) Order {
	return Order{Action: action, Quantity: qty, OrderType: OrderTypeLimit, LimitPrice: &price, TimeInForce: DefaultTimeInForce}
}

func StopOrder(action Action, qty int, stop decimal.Decimal) Order {
	return Order{Action: action, Quantity: qty, OrderType: OrderTypeStop, StopPrice: &stop, TimeInForce: DefaultTimeInForce}
}

// OrderStatus mirrors the broker's order status strings.
type OrderStatus string

const (
	StatusPendingSubmit OrderStatus = "PendingSubmit"
	StatusPreSubmitted  OrderStatus = "PreSubmitted"
	StatusSubmitted     OrderStatus = "Submitted"
	StatusFilled        OrderStatus = "Filled"
	StatusPendingCancel OrderStatus = "PendingCancel"
	StatusCancelled     OrderStatus = "Cancelled"
	StatusApiCancelled  OrderStatus = "ApiCancelled"
	StatusInactive      OrderStatus = "Inactive"
)

// Transient reports whether the broker has not yet acknowledged the order.
func (s OrderStatus) Transient() bool {
	return s == StatusPendingSubmit || s == StatusPreSubmitted
}

// Rejected reports a terminal status in which the order will never work.
func (s OrderStatus) Rejected() bool {
	return s == StatusCancelled || s == StatusApiCancelled || s == StatusInactive
}

// Open reports whether the order can still be filled.
func (s OrderStatus) Open() bool {
	return s != StatusFilled && !s.Rejected()
}
