package portfolio

import "time"

// Side is the position direction.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// State is the position lifecycle state. Closed states are terminal.
type State string

const (
	StatePendingEntry State = "PENDING_ENTRY"
	StateOpen         State = "OPEN"

	StateClosedTakeProfit State = "CLOSED_BY_TAKE_PROFIT"
	StateClosedStopLoss   State = "CLOSED_BY_STOP_LOSS"
	StateClosedManual     State = "CLOSED_MANUAL"
	StateClosedEmergency  State = "CLOSED_EMERGENCY"
)

// Terminal reports whether s is a closed (archival) state.
func (s State) Terminal() bool {
	switch s {
	case StateClosedTakeProfit, StateClosedStopLoss, StateClosedManual, StateClosedEmergency:
		return true
	}
	return false
}

// TakeProfit is one rung of a position's exit ladder. SizePct is the share
// of the original quantity to close at this level; across a ladder the
// percentages sum to 100.
type TakeProfit struct {
	Level   int     `json:"level"`
	Price   float64 `json:"price"`
	SizePct float64 `json:"size_pct"`
	Filled  bool    `json:"filled,omitempty"`
}

// Position is a live exposure. Created by the execution loop on a confirmed
// fill and mutated only by it.
type Position struct {
	ID          string       `json:"id"`
	Pair        string       `json:"pair"`
	Side        Side         `json:"side"`
	EntryPrice  float64      `json:"entry_price"`
	Quantity    float64      `json:"quantity"`    // remaining base quantity
	InitialQty  float64      `json:"initial_qty"` // quantity at open
	Size        float64      `json:"size"`        // remaining reserved notional, USD
	StopLoss    float64      `json:"stop_loss"`
	TakeProfits []TakeProfit `json:"take_profits"`
	State       State        `json:"state"`
	OpenedAt    time.Time    `json:"opened_at"`
	DecisionID  string       `json:"decision_id,omitempty"`
}

// ClosedTrade is the archival record of a fully closed position.
type ClosedTrade struct {
	PositionID string    `json:"position_id"`
	Pair       string    `json:"pair"`
	Side       Side      `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Quantity   float64   `json:"quantity"`
	PnL        float64   `json:"pnl"` // net of fees
	Fees       float64   `json:"fees"`
	State      State     `json:"state"`
	OpenedAt   time.Time `json:"opened_at"`
	ClosedAt   time.Time `json:"closed_at"`
}
