package alert

import (
	"strings"

	"tvbridge/internal/pkg/convert"

	"github.com/shopspring/decimal"
)

// Normalize validates a raw alert and canonicalizes it into an OrderIntent.
// Rules run in a fixed order and the first failure is returned:
// required fields, quantity, action, order type, type-specific price.
// Both camelCase and snake_case keys are accepted for the optional fields.
func Normalize(raw map[string]any) (OrderIntent, error) {
	action := strings.ToUpper(convert.String(raw["action"]))
	symbol := strings.ToUpper(convert.String(raw["symbol"]))
	if action == "" {
		return OrderIntent{}, fail(ErrMissingField, "action", "Missing required field: action")
	}
	if symbol == "" {
		return OrderIntent{}, fail(ErrMissingField, "symbol", "Missing required field: symbol")
	}

	qty, ok := convert.Int(raw["quantity"])
	if !ok || qty <= 0 {
		return OrderIntent{}, fail(ErrInvalidQuantity, "quantity", "quantity must be a positive integer, got %v", raw["quantity"])
	}

	switch Action(action) {
	case ActionBuy, ActionSell:
	default:
		return OrderIntent{}, fail(ErrInvalidAction, "action", "Invalid action: %s. Must be BUY or SELL", action)
	}

	orderType := OrderTypeMarket
	if v, ok := lookup(raw, "orderType", "order_type"); ok {
		orderType = OrderType(strings.ToUpper(convert.String(v)))
	}
	switch orderType {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop:
	default:
		return OrderIntent{}, fail(ErrInvalidOrderType, "orderType", "Invalid orderType: %s", orderType)
	}

	intent := OrderIntent{
		action:    Action(action),
		symbol:    symbol,
		quantity:  qty,
		orderType: orderType,
		exchange:  DefaultExchange,
	}

	switch orderType {
	case OrderTypeLimit:
		price, err := requirePrice(raw, "limitPrice", "limit_price")
		if err != nil {
			return OrderIntent{}, err
		}
		intent.limitPrice = &price
	case OrderTypeStop:
		price, err := requirePrice(raw, "stopPrice", "stop_price")
		if err != nil {
			return OrderIntent{}, err
		}
		intent.stopPrice = &price
	}

	if v, ok := lookup(raw, "exchange"); ok {
		if ex := strings.ToUpper(convert.String(v)); ex != "" {
			intent.exchange = ex
		}
	}
	return intent, nil
}

// requirePrice treats absent, null, empty and zero the same way: the price
// was not supplied.
func requirePrice(raw map[string]any, keys ...string) (decimal.Decimal, error) {
	field := keys[0]
	v, ok := lookup(raw, keys...)
	if !ok || convert.String(v) == "" {
		return decimal.Zero, fail(ErrMissingPrice, field, "%s required for %s orders", field, priceOwner(field))
	}
	price, ok := convert.Decimal(v)
	if !ok {
		return decimal.Zero, fail(ErrInvalidPrice, field, "%s must be numeric, got %v", field, v)
	}
	if price.IsZero() {
		return decimal.Zero, fail(ErrMissingPrice, field, "%s required for %s orders", field, priceOwner(field))
	}
	if price.IsNegative() {
		return decimal.Zero, fail(ErrInvalidPrice, field, "%s must be positive, got %s", field, price)
	}
	return price, nil
}

func priceOwner(field string) string {
	if field == "stopPrice" {
		return string(OrderTypeStop)
	}
	return string(OrderTypeLimit)
}

// lookup returns the first key present in raw with a non-nil value. A key that
// is present but null still counts as absent.
func lookup(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
