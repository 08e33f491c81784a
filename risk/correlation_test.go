package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelation(t *testing.T) {
	t.Parallel()

	a := []float64{0.01, -0.02, 0.03, 0.005, -0.01}

	t.Run("identical series", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 1.0, Correlation(a, a), 1e-9)
	})

	t.Run("inverted series", func(t *testing.T) {
		t.Parallel()

		b := make([]float64, len(a))
		for i, v := range a {
			b[i] = -v
		}
		assert.InDelta(t, -1.0, Correlation(a, b), 1e-9)
	})

	t.Run("flat series", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, Correlation(a, []float64{0.5, 0.5, 0.5, 0.5, 0.5}))
	})

	t.Run("too few samples", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, Correlation([]float64{0.1}, []float64{0.2}))
	})

	t.Run("aligns on the most recent samples", func(t *testing.T) {
		t.Parallel()

		// The longer series carries extra history at the head; the shared
		// window is the common tail, so the overlap is exact.
		assert.InDelta(t, 1.0, Correlation(a, a[2:]), 1e-9)

		// A strictly increasing series against its own tail: head-aligned
		// windows would be shifted and imperfect, tail alignment is exact.
		trend := []float64{0.01, 0.02, 0.03, 0.04, 0.05, 0.06}
		assert.InDelta(t, 1.0, Correlation(trend, trend[1:]), 1e-9)
	})
}

func TestMaxAbsCorrelation(t *testing.T) {
	t.Parallel()

	candidate := []float64{0.01, -0.02, 0.03, 0.005, -0.01}
	inverted := make([]float64, len(candidate))
	for i, v := range candidate {
		inverted[i] = -v
	}

	pair, corr := MaxAbsCorrelation(candidate, map[string][]float64{
		"ETH/USDT": {0.5, 0.5, 0.5, 0.5, 0.5}, // flat, corr 0
		"SOL/USDT": inverted,
	})

	assert.Equal(t, "SOL/USDT", pair)
	assert.InDelta(t, -1.0, corr, 1e-9)
}
