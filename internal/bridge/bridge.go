// Package bridge serializes all work on a broker session through a single
// worker goroutine. Callers submit commands and wait on the reply; the
// session itself is never touched from any other goroutine.
package bridge

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"tvbridge/internal/alert"
	"tvbridge/internal/broker"
	"tvbridge/internal/logger"
	"tvbridge/internal/pkg/circuit"
)

type Bridge struct {
	session  broker.Session
	opts     Options
	queue    *commandQueue
	registry *HandlerRegistry
	breaker  *circuit.CircuitBreaker

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}

	executed atomic.Uint64
}

func New(session broker.Session, opts Options) *Bridge {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	registry := NewHandlerRegistry()
	registry.RegisterDefaultHandlers()
	return &Bridge{
		session:  session,
		opts:     opts,
		queue:    newCommandQueue(opts.QueueLimit),
		registry: registry,
		breaker:  circuit.NewCircuitBreaker("broker-connect", opts.ConnectFailureThreshold, opts.ConnectCooldown),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Registry exposes the handler table so callers can add or override kinds
// before Start.
func (b *Bridge) Registry() *HandlerRegistry { return b.registry }

func (b *Bridge) Options() Options { return b.opts }

// Start launches the worker. Calling it more than once has no effect.
func (b *Bridge) Start() {
	b.startOnce.Do(func() {
		go b.run()
	})
}

// Stop refuses new commands, lets the worker finish what is queued, then
// disconnects the session. If ctx ends first, queued commands are answered
// with ErrStopped and Stop returns ctx's error once the worker is gone.
func (b *Bridge) Stop(ctx context.Context) error {
	b.stopOnce.Do(func() {
		logger.Infof("Bridge: stopping, %d command(s) queued", b.queue.len())
		b.queue.close()
	})
	b.Start()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
	}

	dropped := b.queue.abandon()
	for _, cmd := range dropped {
		cmd.reply <- Result{CommandID: cmd.ID, Kind: cmd.Kind, Err: ErrStopped}
	}
	if len(dropped) > 0 {
		logger.Warnf("Bridge: shutdown deadline hit, abandoned %d queued command(s)", len(dropped))
	}
	b.cancel()
	<-b.done
	return ctx.Err()
}

// Done is closed after the worker has exited.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// Pending reports how many commands are waiting for the worker.
func (b *Bridge) Pending() int { return b.queue.len() }

// Executed reports how many commands the worker has finished.
func (b *Bridge) Executed() uint64 { return b.executed.Load() }

// Submit enqueues cmd without blocking.
func (b *Bridge) Submit(cmd Command) (*Pending, error) {
	if cmd.reply == nil {
		cmd.reply = make(chan Result, 1)
	}
	if cmd.ID == "" {
		cmd.ID = NewCommand(cmd.Kind).ID
	}
	cmd.SubmittedAt = time.Now()
	if err := b.queue.push(cmd); err != nil {
		return nil, err
	}
	return &Pending{cmd: cmd, reply: cmd.reply}, nil
}

// Do submits cmd and waits for its result.
func (b *Bridge) Do(ctx context.Context, cmd Command) (Result, error) {
	p, err := b.Submit(cmd)
	if err != nil {
		return Result{CommandID: cmd.ID, Kind: cmd.Kind}, err
	}
	return p.Wait(ctx)
}

func (b *Bridge) Connect(ctx context.Context) (Result, error) {
	res, err := b.Do(ctx, NewCommand(CmdConnect))
	if err != nil {
		return res, err
	}
	return res, res.Err
}

// Disconnect always succeeds once the worker has run it.
func (b *Bridge) Disconnect(ctx context.Context) (Result, error) {
	return b.Do(ctx, NewCommand(CmdDisconnect))
}

func (b *Bridge) IsConnected(ctx context.Context) (bool, error) {
	res, err := b.Do(ctx, NewCommand(CmdIsConnected))
	if err != nil {
		return false, err
	}
	return res.Connected, res.Err
}

// PlaceOrder runs the execution protocol for intent. The error is only set
// when the command never produced an outcome (queue full, stopped, ctx done).
func (b *Bridge) PlaceOrder(ctx context.Context, intent alert.OrderIntent) (TradeOutcome, error) {
	res, err := b.Do(ctx, NewPlaceOrderCommand(intent))
	if err != nil {
		return TradeOutcome{}, err
	}
	if res.Outcome != nil {
		return *res.Outcome, nil
	}
	out := TradeOutcome{
		Symbol:    intent.Symbol(),
		Action:    string(intent.Action()),
		Quantity:  intent.Quantity(),
		OrderType: string(intent.OrderType()),
		ErrorKind: KindInternal,
		Error:     "order execution failed",
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
		out.ErrorKind = errorKindOf(res.Err)
	}
	return out, nil
}

func (b *Bridge) ListOpenOrders(ctx context.Context) ([]OrderSummary, error) {
	res, err := b.Do(ctx, NewCommand(CmdListOpenOrders))
	if err != nil {
		return []OrderSummary{}, err
	}
	if res.Orders == nil {
		res.Orders = []OrderSummary{}
	}
	return res.Orders, res.Err
}

func (b *Bridge) run() {
	defer close(b.done)
	logger.Infof("Bridge: worker started (queue_limit=%d)", b.opts.QueueLimit)

	hctx := newHandlerContext(b)
	for {
		cmd, ok := b.queue.next()
		if !ok {
			break
		}
		b.handleCommand(hctx, cmd)
	}

	hctx.disconnect()
	b.cancel()
	logger.Infof("Bridge: worker stopped after %d command(s)", b.executed.Load())
}

// handleCommand runs one command and always answers it. A panic in a
// handler becomes a failed result; the worker keeps going.
func (b *Bridge) handleCommand(hctx *HandlerContext, cmd Command) {
	var res Result
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Bridge: panic handling %s %s: %v\n%s", cmd.Kind, cmd.ID, r, debug.Stack())
			res = Result{Err: fmt.Errorf("%w: panic: %v", ErrCommandFailed, r)}
		}
		res.CommandID = cmd.ID
		res.Kind = cmd.Kind
		b.executed.Add(1)
		cmd.reply <- res

		if dur := time.Since(start); dur > b.opts.SlowCommandThreshold {
			logger.Warnf("Bridge: slow command %s took %v (queued %v)", cmd.Kind, dur, start.Sub(cmd.SubmittedAt))
		}
	}()

	handler, ok := b.registry.Get(cmd.Kind)
	if !ok {
		logger.Warnf("Bridge: no handler registered for command kind %q", cmd.Kind)
		res = Result{Err: fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Kind)}
		return
	}
	res = handler.Handle(hctx, cmd)
	if res.Err != nil {
		logger.Errorf("Bridge: %s failed: %v", cmd.Kind, res.Err)
	}
}
