package alert

import (
	"errors"
	"fmt"
)

// Kinds of normalization failure. NormalizationError unwraps to one of these.
var (
	ErrMissingField     = errors.New("missing field")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidAction    = errors.New("invalid action")
	ErrInvalidOrderType = errors.New("invalid order type")
	ErrMissingPrice     = errors.New("missing price")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidPayload   = errors.New("invalid payload")
)

// NormalizationError reports why an alert could not become an OrderIntent.
type NormalizationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *NormalizationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Field)
	}
	return fmt.Sprint(e.Kind)
}

func (e *NormalizationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// KindName returns a stable identifier such as "MissingField".
func (e *NormalizationError) KindName() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ErrMissingField:
		return "MissingField"
	case ErrInvalidQuantity:
		return "InvalidQuantity"
	case ErrInvalidAction:
		return "InvalidAction"
	case ErrInvalidOrderType:
		return "InvalidOrderType"
	case ErrMissingPrice:
		return "MissingPrice"
	case ErrInvalidPrice:
		return "InvalidPrice"
	case ErrInvalidPayload:
		return "InvalidPayload"
	default:
		return "NormalizationError"
	}
}

func fail(kind error, field, format string, args ...any) *NormalizationError {
	return &NormalizationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}
