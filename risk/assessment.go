// Package risk turns a signal plus a portfolio snapshot into a bounded,
// sized assessment. Everything here is computation over inputs the caller
// supplies or fetches through MarketData; nothing mutates portfolio state.
package risk

// Liquidity is the coarse orderbook depth classification.
type Liquidity string

const (
	LiquidityThin   Liquidity = "THIN"
	LiquidityNormal Liquidity = "NORMAL"
	LiquidityDeep   Liquidity = "DEEP"
)

// Assessment is the full risk picture for one candidate trade. Computed
// fresh per decision and embedded into the TradeDecision; never stored on
// its own.
type Assessment struct {
	Pair string `json:"pair"`

	// Sizing
	SizeUSD    float64 `json:"size_usd"`
	SizePct    float64 `json:"size_pct"` // fraction of capital, post-clamp
	KellyFull  float64 `json:"kelly_full"`
	KellyHalf  float64 `json:"kelly_half"`
	SizeViable bool    `json:"size_viable"`

	// Tail risk at Confidence
	Confidence float64 `json:"confidence"`
	VaRUSD     float64 `json:"var_usd"`
	VaRPct     float64 `json:"var_pct"` // % of position notional
	CVaRUSD    float64 `json:"cvar_usd"`
	CVaRPct    float64 `json:"cvar_pct"`

	// Concentration
	MaxCorrelation float64 `json:"max_correlation"`
	CorrelatedPair string  `json:"correlated_pair,omitempty"`

	// Execution cost
	EntryPrice  float64   `json:"entry_price"` // book mid at evaluation time
	SlippageBps float64   `json:"slippage_bps"`
	SpreadBps   float64   `json:"spread_bps"`
	Liquidity   Liquidity `json:"liquidity"`

	// Volatility-derived stop distance (price units), used by the gate to
	// place the stop at entry -/+ this distance.
	StopDistance float64 `json:"stop_distance"`

	// Fail-conservative flag: set when any market input was missing. The
	// gate treats it as an automatic reject.
	InsufficientData bool   `json:"insufficient_data,omitempty"`
	DataNote         string `json:"data_note,omitempty"`
}

// insufficient builds the conservative assessment returned when a market
// input is unavailable.
func insufficient(pair, note string) Assessment {
	return Assessment{Pair: pair, InsufficientData: true, DataNote: note}
}
