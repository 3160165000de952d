// Package alert turns inbound webhook alerts into validated order intents.
package alert

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeStop   OrderType = "STOP"
)

const DefaultExchange = "SMART"

// OrderIntent is a normalized trade instruction. The zero value is not a valid
// intent; values only come out of Normalize and cannot be modified afterwards.
type OrderIntent struct {
	action     Action
	symbol     string
	quantity   int
	orderType  OrderType
	limitPrice *decimal.Decimal
	stopPrice  *decimal.Decimal
	exchange   string
}

func (o OrderIntent) Action() Action       { return o.action }
func (o OrderIntent) Symbol() string       { return o.symbol }
func (o OrderIntent) Quantity() int        { return o.quantity }
func (o OrderIntent) OrderType() OrderType { return o.orderType }
func (o OrderIntent) Exchange() string     { return o.exchange }

// LimitPrice is set only for LIMIT intents.
func (o OrderIntent) LimitPrice() (decimal.Decimal, bool) {
	if o.limitPrice == nil {
		return decimal.Zero, false
	}
	return *o.limitPrice, true
}

// StopPrice is set only for STOP intents.
func (o OrderIntent) StopPrice() (decimal.Decimal, bool) {
	if o.stopPrice == nil {
		return decimal.Zero, false
	}
	return *o.stopPrice, true
}

// Valid reports whether the intent came out of Normalize.
func (o OrderIntent) Valid() bool {
	return o.action != "" && o.symbol != "" && o.quantity > 0 && o.orderType != ""
}

func (o OrderIntent) String() string {
	s := fmt.Sprintf("%s %d %s (%s) on %s", o.action, o.quantity, o.symbol, o.orderType, o.exchange)
	if o.limitPrice != nil {
		s += " limit=" + o.limitPrice.String()
	}
	if o.stopPrice != nil {
		s += " stop=" + o.stopPrice.String()
	}
	return s
}

type intentJSON struct {
	Action     Action           `json:"action"`
	Symbol     string           `json:"symbol"`
	Quantity   int              `json:"quantity"`
	OrderType  OrderType        `json:"order_type"`
	LimitPrice *decimal.Decimal `json:"limit_price,omitempty"`
	StopPrice  *decimal.Decimal `json:"stop_price,omitempty"`
	Exchange   string           `json:"exchange"`
}

func (o OrderIntent) MarshalJSON() ([]byte, error) {
	return json.Marshal(intentJSON{
		Action:     o.action,
		Symbol:     o.symbol,
		Quantity:   o.quantity,
		OrderType:  o.orderType,
		LimitPrice: o.limitPrice,
		StopPrice:  o.stopPrice,
		Exchange:   o.exchange,
	})
}
