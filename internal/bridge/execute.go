package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tvbridge/internal/alert"
	"tvbridge/internal/broker"
	"tvbridge/internal/logger"
)

// executeOrder places one order and reports what the broker made of it. It
// never retries: a lost link after submission is reported, not repeated.
func (c *HandlerContext) executeOrder(intent alert.OrderIntent) TradeOutcome {
	if !intent.Valid() {
		return TradeOutcome{Error: "invalid order intent", ErrorKind: KindInternal}
	}
	base := TradeOutcome{
		Symbol:    intent.Symbol(),
		Action:    string(intent.Action()),
		Quantity:  intent.Quantity(),
		OrderType: string(intent.OrderType()),
	}

	if err := c.ensureConnected(); err != nil {
		return failed(base, err.Error(), KindNotConnected)
	}

	contract, order, err := buildOrder(intent, c.opts)
	if err != nil {
		return failed(base, err.Error(), KindInternal)
	}

	ctx, cancel := c.commandContext()
	defer cancel()

	trade, err := c.session.PlaceOrder(ctx, contract, order)
	if err != nil {
		if lostAfterSubmit(err) {
			return c.ambiguousOutcome(base, nil, err)
		}
		logger.Errorf("Bridge: error placing %s: %v", intent, err)
		return failed(base, err.Error(), KindInternal)
	}
	if trade == nil {
		return failed(base, "broker returned no trade handle", KindInternal)
	}
	logger.Infof("Order placed: %s %d %s (%s) id=%d",
		intent.Action(), intent.Quantity(), intent.Symbol(), intent.OrderType(), trade.OrderID())

	if err := c.awaitAck(ctx, trade); err != nil {
		if lostAfterSubmit(err) || errors.Is(err, context.Canceled) {
			return c.ambiguousOutcome(base, trade, err)
		}
		logger.Errorf("Bridge: error while polling order %d: %v", trade.OrderID(), err)
		return failed(withTrade(base, trade), err.Error(), KindInternal)
	}
	if !c.session.IsConnected() {
		return c.ambiguousOutcome(base, trade, nil)
	}

	out := withTrade(base, trade)
	if out.Status.Rejected() {
		out.Error = fmt.Sprintf("Order %s: %s", out.Status, trade.LastMessage())
		out.ErrorKind = KindBrokerRejected
		logger.Warnf("Bridge: order %d rejected: %s", trade.OrderID(), out.Error)
		return out
	}
	out.Success = true
	out.Message = fmt.Sprintf("Order %d submitted successfully", trade.OrderID())
	return out
}

// awaitAck lets the session process updates until the order leaves its
// transient states or the poll window closes.
func (c *HandlerContext) awaitAck(ctx context.Context, trade *broker.Trade) error {
	deadline := time.Now().Add(c.opts.PollTimeout)
	for trade.Status().Transient() {
		left := time.Until(deadline)
		if left <= 0 {
			return nil
		}
		if err := c.session.Wait(ctx, min(c.opts.PollInterval, left)); err != nil {
			return err
		}
	}
	return nil
}

func (c *HandlerContext) ambiguousOutcome(base TradeOutcome, trade *broker.Trade, cause error) TradeOutcome {
	c.connected()
	out := base
	if trade != nil {
		out = withTrade(base, trade)
		out.Message = fmt.Sprintf("Order %d sent; outcome unconfirmed", trade.OrderID())
	} else {
		out.Message = "Order sent; outcome unconfirmed"
	}
	out.Success = true
	out.Warning = ConnectionLostWarning
	out.ErrorKind = KindAmbiguous
	if cause != nil {
		out.Error = cause.Error()
	}
	logger.Warnf("Bridge: %s %d %s: %s (cause: %v)", base.Action, base.Quantity, base.Symbol, ConnectionLostWarning, cause)
	return out
}

// lostAfterSubmit treats a timed out submission like a dropped link: the
// order may have reached the broker.
func lostAfterSubmit(err error) bool {
	return broker.IsConnectionLost(err) || errors.Is(err, context.DeadlineExceeded)
}

func buildOrder(intent alert.OrderIntent, opts Options) (broker.Contract, broker.Order, error) {
	contract := broker.Stock(intent.Symbol(), intent.Exchange(), opts.Currency)
	action := broker.Action(intent.Action())

	var order broker.Order
	switch intent.OrderType() {
	case alert.OrderTypeMarket:
		order = broker.MarketOrder(action, intent.Quantity())
	case alert.OrderTypeLimit:
		price, ok := intent.LimitPrice()
		if !ok {
			return contract, order, errors.New("limit order without limit price")
		}
		order = broker.LimitOrder(action, intent.Quantity(), price)
	case alert.OrderTypeStop:
		price, ok := intent.StopPrice()
		if !ok {
			return contract, order, errors.New("stop order without stop price")
		}
		order = broker.StopOrder(action, intent.Quantity(), price)
	default:
		return contract, order, fmt.Errorf("unsupported order type %q", intent.OrderType())
	}
	order.TimeInForce = opts.TimeInForce
	return contract, order, nil
}

func withTrade(base TradeOutcome, trade *broker.Trade) TradeOutcome {
	id := trade.OrderID()
	base.OrderID = &id
	base.Status = trade.Status()
	return base
}

func failed(base TradeOutcome, msg string, kind ErrorKind) TradeOutcome {
	base.Success = false
	base.Error = msg
	base.ErrorKind = kind
	return base
}
