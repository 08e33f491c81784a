package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker(t *testing.T) {
	t.Parallel()

	t.Run("trips at the threshold, not below", func(t *testing.T) {
		t.Parallel()

		b := NewBreaker(0.20)
		b.Observe(0.15)
		assert.Equal(t, BreakerActive, b.State())

		b.Observe(0.22)
		assert.Equal(t, BreakerHalted, b.State())
		assert.True(t, b.Halted())
	})

	t.Run("exact threshold trips", func(t *testing.T) {
		t.Parallel()

		b := NewBreaker(0.20)
		b.Observe(0.20)
		assert.True(t, b.Halted())
	})

	t.Run("stays halted when drawdown recovers", func(t *testing.T) {
		t.Parallel()

		b := NewBreaker(0.20)
		b.Observe(0.25)
		require.True(t, b.Halted())

		b.Observe(0.05)
		assert.True(t, b.Halted(), "recovery is manual only")
	})

	t.Run("callback fires exactly once per trip", func(t *testing.T) {
		t.Parallel()

		b := NewBreaker(0.20)
		var trips int
		var seen float64
		b.OnTrip(func(dd float64) {
			trips++
			seen = dd
		})

		b.Observe(0.21)
		b.Observe(0.30)
		b.Observe(0.40)

		assert.Equal(t, 1, trips)
		assert.Equal(t, 0.21, seen)
	})

	t.Run("rearm returns to active", func(t *testing.T) {
		t.Parallel()

		b := NewBreaker(0.20)
		b.Observe(0.25)
		require.True(t, b.Halted())

		b.Rearm()
		assert.Equal(t, BreakerActive, b.State())

		// And it can trip again.
		b.Observe(0.25)
		assert.True(t, b.Halted())
	})
}

func TestBreakerThroughStore(t *testing.T) {
	t.Parallel()

	breaker := NewBreaker(0.20)
	s := NewStore(10_000, 3, breaker)

	// 15% down: still trading.
	require.NoError(t, s.Reserve(testPosition("p1", "BTC/USDT", 1000)))
	_, ok := s.Release("p1", 85, -1500, 0, StateClosedStopLoss)
	require.True(t, ok)
	assert.False(t, breaker.Halted())

	// 22% down from peak: halted.
	require.NoError(t, s.Reserve(testPosition("p2", "ETH/USDT", 1000)))
	_, ok = s.Release("p2", 93, -700, 0, StateClosedStopLoss)
	require.True(t, ok)
	assert.True(t, breaker.Halted())
}
