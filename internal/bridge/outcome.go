package bridge

import (
	"errors"

	"tvbridge/internal/broker"
)

var (
	// ErrQueueFull is returned by Submit when a bounded queue is at capacity.
	ErrQueueFull = errors.New("bridge queue full")
	// ErrStopped is returned once the bridge no longer accepts commands.
	ErrStopped = errors.New("bridge stopped")
	// ErrNotConnected wraps connect failures seen while preparing a command.
	ErrNotConnected = errors.New("not connected to broker")
	// ErrCommandFailed wraps panics and unexpected failures inside the worker.
	ErrCommandFailed = errors.New("bridge command failed")
	// ErrUnknownCommand answers commands whose kind has no registered handler.
	ErrUnknownCommand = errors.New("unknown bridge command")
)

type ErrorKind string

const (
	KindNotConnected   ErrorKind = "NotConnected"
	KindBrokerRejected ErrorKind = "BrokerRejected"
	KindAmbiguous      ErrorKind = "AmbiguousOutcome"
	KindInternal       ErrorKind = "InternalError"
)

// ConnectionLostWarning accompanies a success whose real outcome is unknown.
const ConnectionLostWarning = "connection lost after submission — verify with broker"

// TradeOutcome is the result of one order execution.
type TradeOutcome struct {
	Success   bool               `json:"success"`
	OrderID   *int               `json:"order_id,omitempty"`
	Symbol    string             `json:"symbol,omitempty"`
	Action    string             `json:"action,omitempty"`
	Quantity  int                `json:"quantity,omitempty"`
	OrderType string             `json:"order_type,omitempty"`
	Status    broker.OrderStatus `json:"status,omitempty"`
	Message   string             `json:"message,omitempty"`
	Error     string             `json:"error,omitempty"`
	Warning   string             `json:"warning,omitempty"`
	ErrorKind ErrorKind          `json:"error_kind,omitempty"`
}

// Ambiguous reports a submission whose fate must be checked with the broker.
func (o TradeOutcome) Ambiguous() bool {
	return o.Success && o.Warning != ""
}

// OrderSummary describes one open order.
type OrderSummary struct {
	OrderID      int                `json:"order_id"`
	Symbol       string             `json:"symbol"`
	Action       string             `json:"action"`
	Quantity     int                `json:"quantity"`
	OrderType    string             `json:"order_type"`
	Status       broker.OrderStatus `json:"status"`
	Filled       float64            `json:"filled"`
	Remaining    float64            `json:"remaining"`
	AvgFillPrice float64            `json:"avg_fill_price"`
}

func summarize(tr *broker.Trade) OrderSummary {
	order := tr.Order()
	filled, remaining, avg := tr.Fills()
	return OrderSummary{
		OrderID:      tr.OrderID(),
		Symbol:       tr.Contract().Symbol,
		Action:       string(order.Action),
		Quantity:     order.Quantity,
		OrderType:    string(order.OrderType),
		Status:       tr.Status(),
		Filled:       filled.InexactFloat64(),
		Remaining:    remaining.InexactFloat64(),
		AvgFillPrice: avg.InexactFloat64(),
	}
}

// errorKindOf maps worker errors that never reached the broker.
func errorKindOf(err error) ErrorKind {
	if errors.Is(err, ErrNotConnected) {
		return KindNotConnected
	}
	return KindInternal
}
