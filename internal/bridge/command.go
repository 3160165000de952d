package bridge

import (
	"context"
	"time"

	"tvbridge/internal/alert"
	"tvbridge/internal/logger"

	"github.com/google/uuid"
)

type CommandKind string

const (
	CmdConnect        CommandKind = "connect"
	CmdDisconnect     CommandKind = "disconnect"
	CmdPlaceOrder     CommandKind = "place_order"
	CmdListOpenOrders CommandKind = "list_open_orders"
	CmdIsConnected    CommandKind = "is_connected"
)

// Command is one unit of work for the bridge worker. It is consumed exactly
// once and answered exactly once on its reply channel.
type Command struct {
	ID          string
	Kind        CommandKind
	Intent      alert.OrderIntent
	SubmittedAt time.Time

	reply chan Result
}

func NewCommand(kind CommandKind) Command {
	return Command{
		ID:    uuid.NewString(),
		Kind:  kind,
		reply: make(chan Result, 1),
	}
}

func NewPlaceOrderCommand(intent alert.OrderIntent) Command {
	cmd := NewCommand(CmdPlaceOrder)
	cmd.Intent = intent
	return cmd
}

// Result is what the worker hands back for a command. Which fields are set
// depends on Kind.
type Result struct {
	CommandID string
	Kind      CommandKind
	Connected bool
	Message   string
	Outcome   *TradeOutcome
	Orders    []OrderSummary
	Err       error
}

// Pending is the caller's handle on a submitted command.
type Pending struct {
	cmd   Command
	reply <-chan Result
}

func (p *Pending) ID() string { return p.cmd.ID }

func (p *Pending) Kind() CommandKind { return p.cmd.Kind }

// Wait blocks the calling goroutine until the worker answers or ctx ends.
// Giving up on the wait does not cancel the command.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-p.reply:
		return res, nil
	case <-ctx.Done():
		logger.Debugf("Bridge: caller stopped waiting for %s %s: %v", p.Kind(), p.ID(), ctx.Err())
		return Result{CommandID: p.ID(), Kind: p.Kind()}, ctx.Err()
	}
}
