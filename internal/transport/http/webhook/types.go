package webhookhttp

import (
	"context"

	"tvbridge/internal/alert"
	"tvbridge/internal/bridge"
)

// Executor is the slice of the session bridge the HTTP layer needs.
type Executor interface {
	PlaceOrder(ctx context.Context, intent alert.OrderIntent) (bridge.TradeOutcome, error)
	Connect(ctx context.Context) (bridge.Result, error)
	Disconnect(ctx context.Context) (bridge.Result, error)
	IsConnected(ctx context.Context) (bool, error)
	ListOpenOrders(ctx context.Context) ([]bridge.OrderSummary, error)
}

// BrokerInfo is echoed by /status.
type BrokerInfo struct {
	Host     string
	Port     int
	ClientID int
}

// SecretFunc returns the current webhook secret; empty disables the check.
type SecretFunc func() string

type HealthResponse struct {
	Status      string `json:"status"`
	IBConnected bool   `json:"ib_connected"`
	Timestamp   string `json:"timestamp"`
}

type StatusResponse struct {
	Connected bool   `json:"connected"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	ClientID  int    `json:"client_id"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind,omitempty"`
	Field     string `json:"field,omitempty"`
}

type OrdersResponse struct {
	Success bool                  `json:"success"`
	Orders  []bridge.OrderSummary `json:"orders"`
	Count   int                   `json:"count"`
	Error   string                `json:"error,omitempty"`
}
