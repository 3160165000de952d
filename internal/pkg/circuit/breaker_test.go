package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAndRecovers(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cb := NewCircuitBreaker("connect", 2, 10*time.Second)
	cb.SetClock(func() time.Time { return now })
	cb.SetStateChangeHandler(func(string, State, State) {})

	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
	assert.Equal(t, 10*time.Second, cb.RetryAfter())

	now = now.Add(11 * time.Second)
	assert.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(11 * time.Second)
	assert.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker("connect", 0, time.Second)
	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	assert.True(t, cb.Allow())
	assert.False(t, cb.Enabled())
	assert.Equal(t, StateClosed, cb.State())
}
