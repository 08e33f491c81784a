package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	t.Parallel()

	t.Run("half kelly clamped to risk ceiling", func(t *testing.T) {
		t.Parallel()

		// W=0.55, R=100/80=1.25: f* = 0.55 - 0.45/1.25 = 0.19
		res := Size(SizingInputs{
			WinRate:      0.55,
			AvgWin:       100,
			AvgLoss:      80,
			Capital:      10_000,
			RiskPerTrade: 0.02,
			Trades:       30,
		})

		assert.True(t, res.Viable)
		assert.InDelta(t, 0.19, res.KellyFull, 1e-9)
		assert.InDelta(t, 0.095, res.KellyHalf, 1e-9)
		assert.InDelta(t, 0.02, res.Fraction, 1e-9)
		assert.InDelta(t, 200, res.SizeUSD, 1e-9)
	})

	t.Run("no clamp when half kelly is under the ceiling", func(t *testing.T) {
		t.Parallel()

		res := Size(SizingInputs{
			WinRate:      0.55,
			AvgWin:       100,
			AvgLoss:      80,
			Capital:      10_000,
			RiskPerTrade: 0.20,
			Trades:       30,
		})

		assert.True(t, res.Viable)
		assert.InDelta(t, 0.095, res.Fraction, 1e-9)
		assert.InDelta(t, 950, res.SizeUSD, 1e-9)
	})

	t.Run("insufficient history yields zero", func(t *testing.T) {
		t.Parallel()

		res := Size(SizingInputs{
			WinRate:      0.9,
			AvgWin:       100,
			AvgLoss:      50,
			Capital:      10_000,
			RiskPerTrade: 0.02,
			Trades:       MinTradeHistory - 1,
		})

		assert.False(t, res.Viable)
		assert.Zero(t, res.SizeUSD)
	})

	t.Run("negative edge yields zero", func(t *testing.T) {
		t.Parallel()

		// W=0.30, R=1: f* = 0.30 - 0.70 = -0.40
		res := Size(SizingInputs{
			WinRate:      0.30,
			AvgWin:       50,
			AvgLoss:      50,
			Capital:      10_000,
			RiskPerTrade: 0.02,
			Trades:       40,
		})

		assert.False(t, res.Viable)
		assert.Zero(t, res.SizeUSD)
		assert.InDelta(t, -0.40, res.KellyFull, 1e-9)
	})

	t.Run("degenerate inputs yield zero", func(t *testing.T) {
		t.Parallel()

		assert.False(t, Size(SizingInputs{Capital: 0, AvgWin: 1, AvgLoss: 1, Trades: 20}).Viable)
		assert.False(t, Size(SizingInputs{Capital: 100, AvgWin: 1, AvgLoss: 0, Trades: 20}).Viable)
	})
}
