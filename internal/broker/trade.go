package broker

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// TradeLogEntry is one status transition reported by the broker.
type TradeLogEntry struct {
	Time    time.Time   `json:"time"`
	Status  OrderStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// Trade is the live handle of a submitted order. Sessions mutate it as broker
// messages arrive; readers get consistent copies.
type Trade struct {
	mu           sync.RWMutex
	orderID      int
	contract     Contract
	order        Order
	status       OrderStatus
	filled       decimal.Decimal
	remaining    decimal.Decimal
	avgFillPrice decimal.Decimal
	log          []TradeLogEntry
}

// NewTrade starts a trade in PendingSubmit with the full quantity remaining.
func NewTrade(orderID int, contract Contract, order Order) *Trade {
	now := time.Now()
	return &Trade{
		orderID:   orderID,
		contract:  contract,
		order:     order,
		status:    StatusPendingSubmit,
		remaining: decimal.NewFromInt(int64(order.Quantity)),
		log:       []TradeLogEntry{{Time: now, Status: StatusPendingSubmit}},
	}
}

func (t *Trade) OrderID() int       { return t.orderID }
func (t *Trade) Contract() Contract { return t.contract }
func (t *Trade) Order() Order       { return t.order }

func (t *Trade) Status() OrderStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Log returns a copy of the status log.
func (t *Trade) Log() []TradeLogEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TradeLogEntry, len(t.log))
	copy(out, t.log)
	return out
}

// LastMessage returns the most recent non-empty log message.
func (t *Trade) LastMessage() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.log) - 1; i >= 0; i-- {
		if t.log[i].Message != "" {
			return t.log[i].Message
		}
	}
	return ""
}

// Fills returns filled quantity, remaining quantity and average fill price.
func (t *Trade) Fills() (filled, remaining, avgPrice decimal.Decimal) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.filled, t.remaining, t.avgFillPrice
}

// SetStatus records a status transition. Repeating the current status with
// no message does not grow the log.
func (t *Trade) SetStatus(status OrderStatus, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if status == t.status && message == "" {
		return
	}
	t.status = status
	t.log = append(t.log, TradeLogEntry{Time: time.Now(), Status: status, Message: message})
}

// SetFills overwrites the fill counters with the broker's latest view.
func (t *Trade) SetFills(filled, remaining, avgPrice decimal.Decimal) {
	t.mu.Lock()
	t.filled = filled
	t.remaining = remaining
	t.avgFillPrice = avgPrice
	t.mu.Unlock()
}
