// Package alpaca adapts Alpaca's trading REST API to the broker.Session
// contract. Alpaca order ids are UUIDs; the session hands out local integer
// ids and keeps the mapping for the life of the process.
package alpaca

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tvbridge/internal/broker"
	"tvbridge/internal/logger"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compile-time interface check.
var _ broker.Session = (*Session)(nil)

// tradingAPI is the subset of *alpacaapi.Client the session uses.
type tradingAPI interface {
	GetAccount() (*alpacaapi.Account, error)
	PlaceOrder(req alpacaapi.PlaceOrderRequest) (*alpacaapi.Order, error)
	GetOrder(orderID string) (*alpacaapi.Order, error)
	GetOrders(req alpacaapi.GetOrdersRequest) ([]alpacaapi.Order, error)
}

// Config holds credentials and the trading endpoint.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

type Session struct {
	api tradingAPI

	mu        sync.Mutex
	connected bool
	accountID string
	nextID    int
	trades    map[int]*broker.Trade
	remoteIDs map[int]string
	localIDs  map[string]int
	order     []int
}

// New builds a session backed by the Alpaca REST client.
func New(cfg Config) *Session {
	client := alpacaapi.NewClient(alpacaapi.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})
	return newSession(client)
}

func newSession(api tradingAPI) *Session {
	return &Session{
		api:       api,
		nextID:    1,
		trades:    make(map[int]*broker.Trade),
		remoteIDs: make(map[int]string),
		localIDs:  make(map[string]int),
	}
}

// Connect verifies credentials and reachability with an account lookup.
func (s *Session) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.IsConnected() {
		return nil
	}
	acct, err := s.api.GetAccount()
	if err != nil {
		return fmt.Errorf("alpaca connect: %w", err)
	}
	s.mu.Lock()
	s.connected = true
	if acct != nil {
		s.accountID = acct.ID
	}
	s.mu.Unlock()
	logger.Infof("alpaca: session established account=%s", s.accountID)
	return nil
}

func (s *Session) Disconnect() error {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return nil
}

func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Session) PlaceOrder(ctx context.Context, contract broker.Contract, order broker.Order) (*broker.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.IsConnected() {
		return nil, broker.ErrNotConnected
	}
	req, err := buildOrderRequest(contract, order)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	localID := s.nextID
	s.nextID++
	s.mu.Unlock()
	req.ClientOrderID = fmt.Sprintf("tvbridge-%d-%s", localID, uuid.NewString()[:8])

	trade := broker.NewTrade(localID, contract, order)
	remote, err := s.api.PlaceOrder(req)
	if err != nil {
		return nil, s.classify("place order", err)
	}
	s.track(localID, remote.ID, trade)
	applyRemote(trade, remote)
	return trade, nil
}

func (s *Session) OpenTrades(ctx context.Context) ([]*broker.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.IsConnected() {
		return nil, broker.ErrNotConnected
	}
	remote, err := s.api.GetOrders(alpacaapi.GetOrdersRequest{
		Status:    "open",
		Limit:     500,
		Direction: "asc",
	})
	if err != nil {
		return nil, s.classify("list orders", err)
	}
	out := make([]*broker.Trade, 0, len(remote))
	for i := range remote {
		out = append(out, s.adopt(&remote[i]))
	}
	return out, nil
}

// Wait sleeps for d and then refreshes every non-terminal trade.
func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	if d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	if !s.IsConnected() {
		return broker.ErrConnectionLost
	}
	for _, id := range s.liveIDs() {
		s.mu.Lock()
		remoteID, trade := s.remoteIDs[id], s.trades[id]
		s.mu.Unlock()
		remote, err := s.api.GetOrder(remoteID)
		if err != nil {
			return s.classifyAfterSubmit("refresh order", err)
		}
		applyRemote(trade, remote)
	}
	return nil
}

func (s *Session) liveIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.order))
	for _, id := range s.order {
		if s.trades[id].Status().Open() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Session) track(localID int, remoteID string, trade *broker.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades[localID] = trade
	s.remoteIDs[localID] = remoteID
	s.localIDs[remoteID] = localID
	s.order = append(s.order, localID)
}

// adopt returns the tracked trade for an Alpaca order, creating one for
// orders placed outside this process.
func (s *Session) adopt(remote *alpacaapi.Order) *broker.Trade {
	s.mu.Lock()
	localID, ok := s.localIDs[remote.ID]
	var trade *broker.Trade
	if ok {
		trade = s.trades[localID]
	} else {
		localID = s.nextID
		s.nextID++
	}
	s.mu.Unlock()
	if trade == nil {
		trade = broker.NewTrade(localID, broker.Stock(remote.Symbol, "", ""), orderFromRemote(remote))
		s.track(localID, remote.ID, trade)
	}
	applyRemote(trade, remote)
	return trade
}

// classify marks the session disconnected on transport failures and wraps
// them with broker.ErrConnectionLost. API rejections pass through unchanged.
func (s *Session) classify(op string, err error) error {
	var apiErr *alpacaapi.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("alpaca %s: %w", op, err)
	}
	if broker.IsConnectionLost(err) {
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		logger.Warnf("alpaca: transport failure during %s: %v", op, err)
		return fmt.Errorf("alpaca %s: %w: %v", op, broker.ErrConnectionLost, err)
	}
	return fmt.Errorf("alpaca %s: %w", op, err)
}

// classifyAfterSubmit is classify for calls made once an order is live at
// Alpaca. Any transport failure there leaves the order state unknown, so only
// API errors pass through.
func (s *Session) classifyAfterSubmit(op string, err error) error {
	var apiErr *alpacaapi.APIError
	if errors.As(err, &apiErr) || broker.IsConnectionLost(err) {
		return s.classify(op, err)
	}
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	logger.Warnf("alpaca: broker unreachable during %s: %v", op, err)
	return fmt.Errorf("alpaca %s: %w: %v", op, broker.ErrConnectionLost, err)
}

func buildOrderRequest(contract broker.Contract, order broker.Order) (alpacaapi.PlaceOrderRequest, error) {
	qty := decimal.NewFromInt(int64(order.Quantity))
	req := alpacaapi.PlaceOrderRequest{
		Symbol:      strings.ToUpper(contract.Symbol),
		Qty:         &qty,
		TimeInForce: alpacaapi.Day,
	}
	switch order.Action {
	case broker.ActionBuy:
		req.Side = alpacaapi.Buy
	case broker.ActionSell:
		req.Side = alpacaapi.Sell
	default:
		return req, fmt.Errorf("alpaca: unsupported action %q", order.Action)
	}
	switch order.OrderType {
	case broker.OrderTypeMarket:
		req.Type = alpacaapi.Market
	case broker.OrderTypeLimit:
		req.Type = alpacaapi.Limit
		req.LimitPrice = order.LimitPrice
	case broker.OrderTypeStop:
		req.Type = alpacaapi.Stop
		req.StopPrice = order.StopPrice
	default:
		return req, fmt.Errorf("alpaca: unsupported order type %q", order.OrderType)
	}
	return req, nil
}

func orderFromRemote(remote *alpacaapi.Order) broker.Order {
	o := broker.Order{
		Action:      broker.ActionBuy,
		TimeInForce: strings.ToUpper(string(remote.TimeInForce)),
		LimitPrice:  remote.LimitPrice,
		StopPrice:   remote.StopPrice,
	}
	if remote.Side == alpacaapi.Sell {
		o.Action = broker.ActionSell
	}
	if remote.Qty != nil {
		o.Quantity = int(remote.Qty.IntPart())
	}
	switch remote.Type {
	case alpacaapi.Limit:
		o.OrderType = broker.OrderTypeLimit
	case alpacaapi.Stop:
		o.OrderType = broker.OrderTypeStop
	default:
		o.OrderType = broker.OrderTypeMarket
	}
	return o
}

func applyRemote(trade *broker.Trade, remote *alpacaapi.Order) {
	if trade == nil || remote == nil {
		return
	}
	status, msg := mapStatus(remote.Status)
	filled := remote.FilledQty
	remaining := decimal.Zero
	if remote.Qty != nil {
		remaining = remote.Qty.Sub(filled)
	}
	avg := decimal.Zero
	if remote.FilledAvgPrice != nil {
		avg = *remote.FilledAvgPrice
	}
	trade.SetFills(filled, remaining, avg)
	trade.SetStatus(status, msg)
}

// mapStatus translates Alpaca order states onto broker statuses.
func mapStatus(status string) (broker.OrderStatus, string) {
	switch strings.ToLower(status) {
	case "pending_new":
		return broker.StatusPendingSubmit, ""
	case "accepted", "accepted_for_bidding":
		return broker.StatusPreSubmitted, ""
	case "filled":
		return broker.StatusFilled, ""
	case "pending_cancel":
		return broker.StatusPendingCancel, ""
	case "canceled", "expired", "replaced":
		return broker.StatusCancelled, "alpaca status " + status
	case "rejected", "suspended":
		return broker.StatusInactive, "alpaca status " + status
	default:
		return broker.StatusSubmitted, ""
	}
}
