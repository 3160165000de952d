package bridge

import (
	"context"

	"tvbridge/internal/broker"
	"tvbridge/internal/pkg/circuit"
)

// CommandHandler runs one kind of command on the worker goroutine.
type CommandHandler interface {
	Kind() CommandKind
	Handle(ctx *HandlerContext, cmd Command) Result
}

// HandlerContext carries the worker-owned session state. Only the worker
// goroutine ever holds one, so nothing in it is locked.
type HandlerContext struct {
	bridge  *Bridge
	session broker.Session
	opts    Options
	breaker *circuit.CircuitBreaker
	state   ConnState
}

func newHandlerContext(b *Bridge) *HandlerContext {
	return &HandlerContext{
		bridge:  b,
		session: b.session,
		opts:    b.opts,
		breaker: b.breaker,
		state:   StateDisconnected,
	}
}

// commandContext bounds the session calls made for one command.
func (c *HandlerContext) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.bridge.ctx, c.opts.CommandTimeout)
}
