package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload([]byte(`{"action":"BUY","symbol":"AAPL","quantity":100,"secret":"s3"}`))
	require.NoError(t, err)
	assert.Equal(t, "s3", p.Secret)
	assert.Equal(t, "BUY", p.Fields["action"])
	assert.Equal(t, float64(100), p.Fields["quantity"])

	intent, err := Normalize(p.Fields)
	require.NoError(t, err)
	assert.Equal(t, 100, intent.Quantity())
}

func TestParsePayload_Rejects(t *testing.T) {
	bodies := map[string]string{
		"empty":       "",
		"not json":    "BUY AAPL 100",
		"array":       `[{"action":"BUY"}]`,
		"number":      `42`,
		"typed field": `{"action":1,"symbol":"AAPL","quantity":1}`,
		"bool qty":    `{"action":"BUY","symbol":"AAPL","quantity":true}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePayload([]byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestParsePayload_TypeErrorNamesField(t *testing.T) {
	_, err := ParsePayload([]byte(`{"action":"BUY","symbol":["AAPL"],"quantity":1}`))
	var nerr *NormalizationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "symbol", nerr.Field)
	assert.Equal(t, "InvalidPayload", nerr.KindName())
}
