package bridge

import (
	"fmt"

	"tvbridge/internal/broker"
	"tvbridge/internal/logger"
)

// openOrders lists the session's open trades. A session that cannot be
// brought up yields an empty list rather than an error.
func (c *HandlerContext) openOrders() ([]OrderSummary, error) {
	if err := c.ensureConnected(); err != nil {
		logger.Warnf("Bridge: open orders requested while disconnected: %v", err)
		return []OrderSummary{}, nil
	}

	ctx, cancel := c.commandContext()
	defer cancel()

	trades, err := c.session.OpenTrades(ctx)
	if err != nil {
		if broker.IsConnectionLost(err) {
			c.connected()
		}
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	if c.opts.OrdersSettle > 0 {
		if err := c.session.Wait(ctx, c.opts.OrdersSettle); err != nil {
			logger.Warnf("Bridge: settle after open orders request interrupted: %v", err)
		}
	}

	out := make([]OrderSummary, 0, len(trades))
	for _, tr := range trades {
		if tr == nil {
			continue
		}
		out = append(out, summarize(tr))
	}
	return out, nil
}
