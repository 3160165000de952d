package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{100, 100, true},
		{float64(10), 10, true},
		{10.5, 0, false},
		{"42", 42, true},
		{" 7.0 ", 7, true},
		{"abc", 0, false},
		{json.Number("12"), 12, true},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := Int(tc.in)
		assert.Equal(t, tc.ok, ok, "input %#v", tc.in)
		assert.Equal(t, tc.want, got, "input %#v", tc.in)
	}
}

func TestDecimal(t *testing.T) {
	d, ok := Decimal(150.25)
	assert.True(t, ok)
	assert.Equal(t, "150.25", d.String())

	d, ok = Decimal("99.5")
	assert.True(t, ok)
	assert.Equal(t, "99.5", d.String())

	_, ok = Decimal("nope")
	assert.False(t, ok)
	_, ok = Decimal(nil)
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	assert.Equal(t, "", String(nil))
	assert.Equal(t, "buy", String("  buy "))
	assert.Equal(t, "12", String(12))
}
