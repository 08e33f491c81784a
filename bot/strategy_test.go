package bot

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskgate/exchange/paper"
	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/market"
	"github.com/rustyeddy/riskgate/metrics"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/rustyeddy/riskgate/signal"
)

func newStrategyLoop(source signal.Source, engine *paper.Engine, store *portfolio.Store, queue *Queue) *StrategyLoop {
	breaker := portfolio.NewBreaker(0.20)
	evaluator := risk.NewEvaluator(engine, risk.Params{RiskPerTrade: 0.02, VarConfidence: 0.95}, zerolog.Nop())
	g := gate.New(gate.Params{
		MaxPositions:    3,
		MinConfidence:   60,
		MinRiskReward:   2.0,
		MaxCorrelation:  0.7,
		MaxSlippageBps:  200,
		MaxExposurePct:  0.60,
		MaxTradesPerDay: 100, // the seasoned history all closes "today"
		MaxLossStreak:   3,
	}, breaker, zerolog.Nop())

	return NewStrategyLoop(30*time.Minute, []string{"BTC/USDT"},
		source, evaluator, g, store, queue, journal.Nop{}, metrics.New(), zerolog.Nop())
}

// seasonedStore builds a store whose realized history makes Kelly sizing
// viable.
func seasonedStore(t *testing.T) *portfolio.Store {
	t.Helper()

	s := portfolio.NewStore(10_000, 5, nil)
	pnls := []float64{100, 110, -80, 95, -75, 120, 105, -85, 90, 100, 115, -70}
	for i, pnl := range pnls {
		p := testOpenPosition(i)
		require.NoError(t, s.Reserve(p))
		_, ok := s.Release(p.ID, 100, pnl, 0, portfolio.StateClosedManual)
		require.True(t, ok)
	}
	return s
}

func testOpenPosition(i int) portfolio.Position {
	return portfolio.Position{
		ID:         string(rune('a' + i)),
		Pair:       "XRP/USDT",
		Side:       portfolio.SideLong,
		EntryPrice: 100,
		Quantity:   1,
		InitialQty: 1,
		Size:       100,
		State:      portfolio.StateOpen,
		OpenedAt:   time.Now(),
	}
}

func marketData(engine *paper.Engine) {
	candles := make([]market.Candle, 200)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = market.Candle{
			Open: 100, High: 101, Low: 99, Close: 100,
			Time: base.Add(time.Duration(i) * time.Hour),
		}
	}
	engine.SetCandles("BTC/USDT", candles)
	engine.SetOrderBook(market.OrderBook{
		Pair: "BTC/USDT",
		Bids: []market.Level{{Price: 99.9, Qty: 1000}},
		Asks: []market.Level{{Price: 100.1, Qty: 1000}},
	})
}

func TestStrategyTickPublishesDecision(t *testing.T) {
	t.Parallel()

	engine := paper.New(nil)
	marketData(engine)
	queue := NewQueue()
	source := signal.NewFixed(signal.Signal{Pair: "BTC/USDT", Direction: signal.Long, Confidence: 80})

	loop := newStrategyLoop(source, engine, seasonedStore(t), queue)
	loop.tick(context.Background())

	out := queue.Drain()
	require.Len(t, out, 1)
	d := out[0]
	assert.True(t, d.Approved(), "rejected: %s (%s)", d.Reason, d.Reasoning)
	assert.Equal(t, "BTC/USDT", d.Pair)
	assert.Greater(t, d.PositionSizeUSD, 0.0)
}

func TestStrategyTickNoSignal(t *testing.T) {
	t.Parallel()

	engine := paper.New(nil)
	marketData(engine)
	queue := NewQueue()

	loop := newStrategyLoop(signal.NewFixed(), engine, seasonedStore(t), queue)
	loop.tick(context.Background())

	assert.Zero(t, queue.Len(), "no signal, no decision")
}

func TestStrategyTickRejectionStillPublished(t *testing.T) {
	t.Parallel()

	// No market data seeded: the assessment comes back INSUFFICIENT_DATA
	// and the gate rejects, but the decision is still recorded and queued.
	engine := paper.New(nil)
	queue := NewQueue()
	source := signal.NewFixed(signal.Signal{Pair: "BTC/USDT", Direction: signal.Long, Confidence: 80})

	loop := newStrategyLoop(source, engine, seasonedStore(t), queue)
	loop.tick(context.Background())

	out := queue.Drain()
	require.Len(t, out, 1)
	assert.Equal(t, gate.Rejected, out[0].Outcome)
	assert.Equal(t, gate.ReasonInsufficientData, out[0].Reason)
}
