package risk

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/market"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/signal"
)

// MarketData is the slice of the exchange connector the evaluator needs.
type MarketData interface {
	Klines(ctx context.Context, pair, interval string, limit int) ([]market.Candle, error)
	OrderBook(ctx context.Context, pair string, depth int) (market.OrderBook, error)
}

const (
	varLookback  = 200 // hourly candles for the VaR distribution
	corrLookback = 50  // hourly candles for pairwise correlation
	atrPeriod    = 14
	atrMultiple  = 2.0 // stop distance in ATRs
)

// Params bound what the evaluator recommends.
type Params struct {
	RiskPerTrade  float64
	VarConfidence float64
}

// Evaluator computes a full Assessment for a candidate signal. It is
// stateless apart from its collaborators and safe for concurrent calls.
type Evaluator struct {
	data MarketData
	p    Params
	log  zerolog.Logger
}

func NewEvaluator(data MarketData, p Params, log zerolog.Logger) *Evaluator {
	return &Evaluator{data: data, p: p, log: log.With().Str("component", "risk").Logger()}
}

// Evaluate produces the assessment for sig against the given snapshot.
// Missing market data never fails: the assessment comes back flagged
// INSUFFICIENT_DATA and the gate rejects it.
func (e *Evaluator) Evaluate(ctx context.Context, sig signal.Signal, snap portfolio.Snapshot) Assessment {
	candles, err := e.data.Klines(ctx, sig.Pair, "1h", varLookback)
	if err != nil {
		e.log.Warn().Err(err).Str("pair", sig.Pair).Msg("klines unavailable")
		return insufficient(sig.Pair, fmt.Sprintf("klines: %v", err))
	}
	returns := market.Returns(candles)

	sizing := Size(SizingInputs{
		WinRate:      snap.Stats.WinRate,
		AvgWin:       snap.Stats.AvgWin,
		AvgLoss:      snap.Stats.AvgLoss,
		Capital:      snap.Capital,
		RiskPerTrade: e.p.RiskPerTrade,
		Trades:       snap.Stats.Trades,
	})

	a := Assessment{
		Pair:       sig.Pair,
		SizeUSD:    sizing.SizeUSD,
		SizePct:    sizing.Fraction,
		KellyFull:  sizing.KellyFull,
		KellyHalf:  sizing.KellyHalf,
		SizeViable: sizing.Viable,
		Confidence: e.p.VarConfidence,
	}

	vr, err := HistoricalVaR(returns, sizing.SizeUSD, e.p.VarConfidence)
	if err != nil {
		return insufficient(sig.Pair, err.Error())
	}
	a.VaRUSD, a.VaRPct = vr.VaRUSD, vr.VaRPct
	a.CVaRUSD, a.CVaRPct = vr.CVaRUSD, vr.CVaRPct

	a.StopDistance = atrMultiple * atr(candles, atrPeriod)

	// Correlation against every open position's pair.
	book := make(map[string][]float64, len(snap.Positions))
	for _, pos := range snap.Positions {
		if pos.Pair == sig.Pair {
			continue
		}
		pc, err := e.data.Klines(ctx, pos.Pair, "1h", corrLookback)
		if err != nil {
			return insufficient(sig.Pair, fmt.Sprintf("klines %s: %v", pos.Pair, err))
		}
		book[pos.Pair] = market.Returns(pc)
	}
	tail := returns
	if len(tail) > corrLookback {
		tail = tail[len(tail)-corrLookback:]
	}
	a.CorrelatedPair, a.MaxCorrelation = MaxAbsCorrelation(tail, book)

	ob, err := e.data.OrderBook(ctx, sig.Pair, 100)
	if err != nil {
		e.log.Warn().Err(err).Str("pair", sig.Pair).Msg("orderbook unavailable")
		return insufficient(sig.Pair, fmt.Sprintf("orderbook: %v", err))
	}
	slip := EstimateSlippage(ob, sizing.SizeUSD, sig.Direction == signal.Long)
	a.EntryPrice = ob.Mid()
	a.SlippageBps = slip.SlippageBps
	a.SpreadBps = slip.SpreadBps
	a.Liquidity = slip.Liquidity

	return a
}

// atr is the average true range over the last period candles.
func atr(candles []market.Candle, period int) float64 {
	if len(candles) < 2 {
		return 0
	}
	start := len(candles) - period
	if start < 1 {
		start = 1
	}

	var sum float64
	var n int
	for i := start; i < len(candles); i++ {
		tr := candles[i].High - candles[i].Low
		if d := abs(candles[i].High - candles[i-1].Close); d > tr {
			tr = d
		}
		if d := abs(candles[i].Low - candles[i-1].Close); d > tr {
			tr = d
		}
		sum += tr
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
