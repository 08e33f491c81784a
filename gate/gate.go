// Package gate combines a signal, a risk assessment and circuit-breaker
// status into the terminal TradeDecision. It only recommends: portfolio
// state changes happen on confirmed execution, never here.
package gate

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/pkg/id"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/rustyeddy/riskgate/signal"
)

// Take-profit ladder shape: multiples of the stop distance and the share of
// the position closed at each rung. Shares sum to 100.
var (
	ladderMultiples = [3]float64{2.5, 3.5, 5.0}
	ladderSizes     = [3]float64{50, 30, 20}
)

// Params are the gate's configured thresholds.
type Params struct {
	MaxPositions    int
	MinConfidence   float64
	MinRiskReward   float64
	MaxCorrelation  float64
	MaxSlippageBps  float64
	MaxExposurePct  float64
	MaxTradesPerDay int
	MaxLossStreak   int
}

// Gate is deterministic and side-effect-free: same inputs, same decision.
type Gate struct {
	p       Params
	breaker *portfolio.Breaker
	log     zerolog.Logger
}

func New(p Params, breaker *portfolio.Breaker, log zerolog.Logger) *Gate {
	return &Gate{p: p, breaker: breaker, log: log.With().Str("component", "gate").Logger()}
}

// Decide runs the check chain in order and short-circuits on the first
// failure. Each failure maps to a distinct rejection reason.
func (g *Gate) Decide(sig signal.Signal, a risk.Assessment, snap portfolio.Snapshot) TradeDecision {
	d := TradeDecision{
		ID:         id.New(),
		Pair:       sig.Pair,
		Direction:  sig.Direction,
		Confidence: sig.Confidence,
		SignalID:   sig.ID,
		Assessment: a,
		CreatedAt:  time.Now().UTC(),
	}

	if reason, why := g.check(sig, a, snap); reason != "" {
		d.Outcome = Rejected
		d.Reason = reason
		d.Reasoning = why
		g.log.Info().Str("pair", sig.Pair).Str("reason", string(reason)).Msg("rejected")
		return d
	}

	g.buildPlan(&d, sig, a)
	d.Outcome = Approved
	d.Reasoning = fmt.Sprintf(
		"half-kelly %.4f clamped to %.4f; VaR95 $%.2f; max corr %.2f vs %s; slippage %.1fbps (%s book)",
		a.KellyHalf, a.SizePct, a.VaRUSD, a.MaxCorrelation, orNone(a.CorrelatedPair), a.SlippageBps, a.Liquidity,
	)
	g.log.Info().Str("pair", sig.Pair).Float64("size_usd", d.PositionSizeUSD).
		Float64("rr", d.RiskReward).Msg("approved")
	return d
}

func (g *Gate) check(sig signal.Signal, a risk.Assessment, snap portfolio.Snapshot) (Reason, string) {
	// 1. breaker
	if g.breaker.Halted() {
		return ReasonCircuitBreaker, fmt.Sprintf("circuit breaker HALTED at %.1f%% drawdown", snap.Drawdown*100)
	}

	// 2. slots, plus the per-pair and cadence throttles
	if len(snap.Positions) >= g.p.MaxPositions {
		return ReasonMaxPositions, fmt.Sprintf("%d/%d position slots used", len(snap.Positions), g.p.MaxPositions)
	}
	for _, p := range snap.Positions {
		if p.Pair == sig.Pair {
			return ReasonPairOpen, fmt.Sprintf("position %s already open for %s", p.ID, sig.Pair)
		}
	}
	if snap.Stats.TradesToday >= g.p.MaxTradesPerDay {
		return ReasonDailyLimit, fmt.Sprintf("%d trades today (limit %d)", snap.Stats.TradesToday, g.p.MaxTradesPerDay)
	}
	if snap.Stats.ConsecutiveLosses >= g.p.MaxLossStreak {
		return ReasonLossStreak, fmt.Sprintf("%d consecutive losses", snap.Stats.ConsecutiveLosses)
	}

	// 3. direction and confidence
	if sig.Direction == signal.Neutral {
		return ReasonNoDirection, "signal direction is NEUTRAL"
	}
	if sig.Confidence < g.p.MinConfidence {
		return ReasonLowConfidence, fmt.Sprintf("confidence %.0f below minimum %.0f", sig.Confidence, g.p.MinConfidence)
	}

	// 4. data completeness
	if a.InsufficientData {
		return ReasonInsufficientData, "assessment flagged INSUFFICIENT_DATA: " + a.DataNote
	}

	// 5. concentration
	if math.Abs(a.MaxCorrelation) >= g.p.MaxCorrelation {
		return ReasonHighCorrelation,
			fmt.Sprintf("correlation %.2f with %s at/above ceiling %.2f", a.MaxCorrelation, a.CorrelatedPair, g.p.MaxCorrelation)
	}

	// 6. size and capital fit
	if !a.SizeViable || a.SizeUSD <= 0 {
		return ReasonZeroSize, "recommended size is zero"
	}
	if a.SizeUSD > snap.Available {
		return ReasonInsufficientCapital,
			fmt.Sprintf("size $%.2f exceeds available $%.2f", a.SizeUSD, snap.Available)
	}
	if snap.Capital > 0 && (snap.Reserved+a.SizeUSD)/snap.Capital > g.p.MaxExposurePct {
		return ReasonMaxExposure,
			fmt.Sprintf("exposure would reach %.0f%% (cap %.0f%%)",
				(snap.Reserved+a.SizeUSD)/snap.Capital*100, g.p.MaxExposurePct*100)
	}

	// 7. risk/reward
	if a.StopDistance <= 0 || a.EntryPrice <= 0 {
		return ReasonInsufficientData, "no volatility estimate for stop placement"
	}
	rr := nearestRungMultiple()
	if rr < g.p.MinRiskReward {
		return ReasonLowRiskReward, fmt.Sprintf("risk/reward %.2f below minimum %.2f", rr, g.p.MinRiskReward)
	}

	// 8. slippage: hard cap, then erosion of the ratio
	if a.SlippageBps > g.p.MaxSlippageBps {
		return ReasonSlippage, fmt.Sprintf("slippage %.1fbps exceeds cap %.0fbps", a.SlippageBps, g.p.MaxSlippageBps)
	}
	if adj := adjustedRR(a, rr); adj < g.p.MinRiskReward {
		return ReasonSlippage,
			fmt.Sprintf("slippage %.1fbps erodes risk/reward to %.2f (minimum %.2f)", a.SlippageBps, adj, g.p.MinRiskReward)
	}

	return "", ""
}

// adjustedRR shifts the entry by the estimated slippage and recomputes the
// ratio against the nearest take-profit rung.
func adjustedRR(a risk.Assessment, rr float64) float64 {
	slip := a.EntryPrice * a.SlippageBps / 10_000
	riskDist := a.StopDistance + slip
	rewardDist := rr*a.StopDistance - slip
	if riskDist <= 0 {
		return 0
	}
	return rewardDist / riskDist
}

// buildPlan fills the entry, stop and take-profit ladder on an approved
// decision. Ladder percentages sum to exactly 100 by construction.
func (g *Gate) buildPlan(d *TradeDecision, sig signal.Signal, a risk.Assessment) {
	entry := a.EntryPrice
	dir := 1.0
	if sig.Direction == signal.Short {
		dir = -1.0
	}

	stop := entry - dir*a.StopDistance
	d.StopLoss = StopLoss{
		Price: stop,
		Pct:   a.StopDistance / entry * 100,
		Type:  "STOP_MARKET",
	}

	d.TakeProfit = make([]TakeProfitLevel, 0, len(ladderMultiples))
	for i, mult := range ladderMultiples {
		d.TakeProfit = append(d.TakeProfit, TakeProfitLevel{
			Level:   i + 1,
			Price:   entry + dir*mult*a.StopDistance,
			SizePct: ladderSizes[i],
		})
	}

	d.Entry = EntryPlan{
		Method: "market",
		Price:  entry,
		Orders: []ChildOrder{{Type: "MARKET", Price: entry, SizePct: 100}},
	}
	d.PositionSizeUSD = a.SizeUSD
	d.PositionSizePct = a.SizePct * 100

	// Realized ratio from the plan itself: nearest rung distance over the
	// stop distance.
	nearest := math.Abs(d.TakeProfit[0].Price - entry)
	for _, tp := range d.TakeProfit[1:] {
		if dist := math.Abs(tp.Price - entry); dist < nearest {
			nearest = dist
		}
	}
	d.RiskReward = nearest / a.StopDistance
}

// nearestRungMultiple is the reward distance of the closest ladder rung in
// stop-distance units, which is the plan's realized risk/reward before
// slippage.
func nearestRungMultiple() float64 {
	m := ladderMultiples[0]
	for _, v := range ladderMultiples[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
