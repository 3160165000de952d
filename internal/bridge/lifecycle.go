package bridge

import (
	"context"
	"fmt"
	"time"

	"tvbridge/internal/logger"
)

// ConnState is the worker's view of the broker link.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

func (c *HandlerContext) setState(to ConnState) {
	if c.state == to {
		return
	}
	logger.Debugf("Bridge: session %s -> %s", c.state, to)
	c.state = to
}

// connect opens the session unless it is already up. Implicit connects are
// subject to the breaker; explicit ones always try.
func (c *HandlerContext) connect(explicit bool) error {
	if c.session.IsConnected() {
		c.setState(StateConnected)
		return nil
	}
	c.setState(StateDisconnected)
	if !explicit && !c.breaker.Allow() {
		return fmt.Errorf("%w: connect attempts suspended for %s after repeated failures",
			ErrNotConnected, c.breaker.RetryAfter().Round(time.Second))
	}

	c.setState(StateConnecting)
	ctx, cancel := context.WithTimeout(c.bridge.ctx, c.opts.ConnectTimeout)
	defer cancel()
	if err := c.session.Connect(ctx); err != nil {
		c.setState(StateDisconnected)
		c.breaker.RecordFailure()
		logger.Errorf("Bridge: failed to connect broker session: %v", err)
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	if !c.session.IsConnected() {
		c.setState(StateDisconnected)
		c.breaker.RecordFailure()
		return fmt.Errorf("%w: session did not come up", ErrNotConnected)
	}
	c.breaker.RecordSuccess()
	c.setState(StateConnected)
	logger.Infof("Bridge: broker session connected")
	return nil
}

// disconnect is best effort. The state ends Disconnected even when the
// session call fails or panics.
func (c *HandlerContext) disconnect() {
	defer c.setState(StateDisconnected)
	if !c.session.IsConnected() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("Bridge: disconnect panicked (ignored): %v", r)
		}
	}()
	if err := c.session.Disconnect(); err != nil {
		logger.Warnf("Bridge: disconnect failed (ignored): %v", err)
		return
	}
	logger.Infof("Bridge: broker session disconnected")
}

// connected asks the session and folds the answer into the cached state.
func (c *HandlerContext) connected() bool {
	if c.session.IsConnected() {
		c.setState(StateConnected)
		return true
	}
	if c.state != StateDisconnected {
		logger.Warnf("Bridge: broker session dropped")
	}
	c.setState(StateDisconnected)
	return false
}

func (c *HandlerContext) ensureConnected() error {
	if c.connected() {
		return nil
	}
	return c.connect(false)
}
