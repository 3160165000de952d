package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "héé...", Truncate("héééé", 3))
}

func TestPreview(t *testing.T) {
	body := "{\n  \"symbol\": \"AAPL\",\n\t\"action\": \"BUY\"\n}"
	assert.Equal(t, `{ "symbol": "AAPL", "action": "BUY" }`, Preview(body, 100))
	assert.Equal(t, `{ "symbol"...`, Preview(body, 10))
}
