package gate

import (
	"time"

	"github.com/rustyeddy/riskgate/risk"
	"github.com/rustyeddy/riskgate/signal"
)

// Outcome is the terminal decision state.
type Outcome string

const (
	Approved Outcome = "APPROVED"
	Rejected Outcome = "REJECTED"
)

// Reason enumerates why a decision was rejected. Every rejected decision
// carries exactly one; there is no "rejected, no reason".
type Reason string

const (
	ReasonCircuitBreaker      Reason = "CIRCUIT_BREAKER_HALTED"
	ReasonMaxPositions        Reason = "MAX_POSITIONS"
	ReasonPairOpen            Reason = "PAIR_ALREADY_OPEN"
	ReasonDailyLimit          Reason = "DAILY_TRADE_LIMIT"
	ReasonLossStreak          Reason = "CONSECUTIVE_LOSSES"
	ReasonNoDirection         Reason = "NO_DIRECTION"
	ReasonLowConfidence       Reason = "LOW_CONFIDENCE"
	ReasonInsufficientData    Reason = "INSUFFICIENT_DATA"
	ReasonHighCorrelation     Reason = "HIGH_CORRELATION"
	ReasonZeroSize            Reason = "ZERO_SIZE"
	ReasonInsufficientCapital Reason = "INSUFFICIENT_CAPITAL"
	ReasonMaxExposure         Reason = "MAX_EXPOSURE"
	ReasonLowRiskReward       Reason = "LOW_RISK_REWARD"
	ReasonSlippage            Reason = "SLIPPAGE"
)

// ChildOrder is one slice of the entry plan.
type ChildOrder struct {
	Type    string  `json:"type"` // "MARKET"
	Price   float64 `json:"price"`
	SizePct float64 `json:"size_pct"`
}

// EntryPlan describes how to get into the position.
type EntryPlan struct {
	Method string       `json:"method"` // "market"
	Price  float64      `json:"price"`
	Orders []ChildOrder `json:"orders"`
}

// StopLoss is the protective exit.
type StopLoss struct {
	Price float64 `json:"price"`
	Pct   float64 `json:"pct"` // distance from entry, percent
	Type  string  `json:"type"`
}

// TakeProfitLevel is one rung of the exit ladder. SizePct values across a
// ladder sum to exactly 100.
type TakeProfitLevel struct {
	Level   int     `json:"level"`
	Price   float64 `json:"price"`
	SizePct float64 `json:"size_pct"`
}

// TradeDecision is the terminal, immutable output of the gate and the unit
// of hand-off between the strategy and execution loops.
type TradeDecision struct {
	ID         string           `json:"id"`
	Outcome    Outcome          `json:"decision"`
	Pair       string           `json:"pair"`
	Direction  signal.Direction `json:"direction"`
	Confidence float64          `json:"confidence"`
	SignalID   string           `json:"signal_id"`

	PositionSizeUSD float64 `json:"position_size_usd"`
	PositionSizePct float64 `json:"position_size_pct"`

	Entry      EntryPlan         `json:"entry"`
	StopLoss   StopLoss          `json:"stop_loss"`
	TakeProfit []TakeProfitLevel `json:"take_profit"`
	RiskReward float64           `json:"risk_reward_ratio"`

	Assessment risk.Assessment `json:"assessment"`
	Reasoning  string          `json:"reasoning"`
	Reason     Reason          `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Approved reports whether the decision cleared every check.
func (d TradeDecision) Approved() bool { return d.Outcome == Approved }
