package bridge

import (
	"strings"
	"time"

	"tvbridge/internal/broker"
)

const (
	defaultCurrency       = "USD"
	defaultPollInterval   = 500 * time.Millisecond
	defaultPollTimeout    = 5 * time.Second
	defaultOrdersSettle   = time.Second
	defaultConnectTimeout = 10 * time.Second
	defaultCommandTimeout = 30 * time.Second
	defaultSlowCommand    = 2 * time.Second
)

// Options tunes the bridge. Zero values fall back to defaults.
type Options struct {
	// Currency and TimeInForce are stamped on every broker order.
	Currency    string
	TimeInForce string

	// PollInterval and PollTimeout bound the wait for the broker to
	// acknowledge a submitted order.
	PollInterval time.Duration
	PollTimeout  time.Duration

	// OrdersSettle is how long the session may process updates after an
	// open-orders request before results are read. Negative skips it.
	OrdersSettle time.Duration

	ConnectTimeout time.Duration
	// CommandTimeout caps the context handed to the session for one command.
	CommandTimeout time.Duration

	// QueueLimit rejects submissions with ErrQueueFull once this many
	// commands are waiting. Zero keeps the queue unbounded.
	QueueLimit int

	// ConnectFailureThreshold consecutive failures suspend implicit connects
	// for ConnectCooldown. Zero disables the breaker.
	ConnectFailureThreshold int
	ConnectCooldown         time.Duration

	SlowCommandThreshold time.Duration
}

func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Currency) == "" {
		o.Currency = defaultCurrency
	}
	o.Currency = strings.ToUpper(strings.TrimSpace(o.Currency))
	if strings.TrimSpace(o.TimeInForce) == "" {
		o.TimeInForce = broker.DefaultTimeInForce
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = defaultPollTimeout
	}
	if o.OrdersSettle < 0 {
		o.OrdersSettle = 0
	} else if o.OrdersSettle == 0 {
		o.OrdersSettle = defaultOrdersSettle
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = defaultCommandTimeout
	}
	if o.CommandTimeout < o.PollTimeout {
		o.CommandTimeout = o.PollTimeout + o.PollInterval
	}
	if o.QueueLimit < 0 {
		o.QueueLimit = 0
	}
	if o.ConnectFailureThreshold < 0 {
		o.ConnectFailureThreshold = 0
	}
	if o.ConnectCooldown <= 0 {
		o.ConnectCooldown = 30 * time.Second
	}
	if o.SlowCommandThreshold <= 0 {
		o.SlowCommandThreshold = defaultSlowCommand
	}
	return o
}
