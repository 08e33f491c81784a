package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/signal"
)

func newTestJournal(t *testing.T) *SQLite {
	t.Helper()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestDecisionRoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)

	d := gate.TradeDecision{
		ID:              "dec-1",
		Outcome:         gate.Approved,
		Pair:            "BTC/USDT",
		Direction:       signal.Long,
		Confidence:      75,
		SignalID:        "sig-1",
		PositionSizeUSD: 200,
		PositionSizePct: 2,
		Entry: gate.EntryPlan{
			Method: "market",
			Price:  50_000,
			Orders: []gate.ChildOrder{{Type: "MARKET", Price: 50_000, SizePct: 100}},
		},
		StopLoss: gate.StopLoss{Price: 49_000, Pct: 2, Type: "STOP_MARKET"},
		TakeProfit: []gate.TakeProfitLevel{
			{Level: 1, Price: 52_500, SizePct: 50},
			{Level: 2, Price: 53_500, SizePct: 30},
			{Level: 3, Price: 55_000, SizePct: 20},
		},
		RiskReward: 2.5,
		Reasoning:  "half-kelly 0.0950 clamped to 0.0200",
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, j.RecordDecision(d))

	got, err := j.GetDecision("dec-1")
	require.NoError(t, err)
	assert.Equal(t, d, got, "the stored plan reproduces the decision exactly")
}

func TestGetDecisionMissing(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	_, err := j.GetDecision("nope")
	assert.Error(t, err)
}

func TestListDecisionsBetween(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"d1", "d2", "d3"} {
		require.NoError(t, j.RecordDecision(gate.TradeDecision{
			ID:        id,
			Outcome:   gate.Rejected,
			Pair:      "BTC/USDT",
			Direction: signal.Long,
			Reason:    gate.ReasonLowConfidence,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := j.ListDecisionsBetween(base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2, "range end is exclusive")
	assert.Equal(t, "d1", got[0].ID)
	assert.Equal(t, "d2", got[1].ID)
}

func TestRecordTradeAndList(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	opened := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	trade := portfolio.ClosedTrade{
		PositionID: "p1",
		Pair:       "BTC/USDT",
		Side:       portfolio.SideLong,
		EntryPrice: 100.1,
		ExitPrice:  105.2,
		Quantity:   10,
		PnL:        51,
		Fees:       0.8,
		State:      portfolio.StateClosedTakeProfit,
		OpenedAt:   opened,
		ClosedAt:   opened.Add(2 * time.Hour),
	}
	require.NoError(t, j.RecordTrade(trade))

	got, err := j.ListTradesBetween(opened, opened.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, trade, got[0])
}

func TestListSignals(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, j.RecordSignal(signal.Signal{
			ID:         string(rune('a' + i)),
			Pair:       "ETH/USDT",
			Direction:  signal.Short,
			Confidence: 70,
			Time:       base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, j.RecordSignal(signal.Signal{
		ID: "other", Pair: "BTC/USDT", Direction: signal.Long, Time: base,
	}))

	got, err := j.ListSignals("ETH/USDT", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "e", got[0].ID, "newest first")
	assert.Equal(t, "ETH/USDT", got[0].Pair)
}
