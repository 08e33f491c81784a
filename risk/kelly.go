package risk

// MinTradeHistory is the realized-trade count below which Kelly sizing is
// considered undefined and the recommendation is zero.
const MinTradeHistory = 10

type SizingInputs struct {
	WinRate      float64 // 0..1
	AvgWin       float64 // USD, positive
	AvgLoss      float64 // USD, positive
	Capital      float64
	RiskPerTrade float64 // hard ceiling on the recommended fraction
	Trades       int     // realized trade count behind WinRate
}

type SizingResult struct {
	KellyFull float64
	KellyHalf float64
	Fraction  float64 // half-Kelly clamped to RiskPerTrade
	SizeUSD   float64
	Viable    bool
}

// Size computes the Kelly-criterion position size. Full Kelly is
// f* = W - (1-W)/R with R = AvgWin/AvgLoss; half-Kelly is recommended and
// then clamped to RiskPerTrade regardless of what Kelly suggests.
//
// A non-positive R, a non-positive Kelly fraction, or too little trade
// history yields a zero recommendation with Viable=false, never an error.
func Size(in SizingInputs) SizingResult {
	if in.Capital <= 0 || in.AvgLoss <= 0 || in.AvgWin <= 0 || in.Trades < MinTradeHistory {
		return SizingResult{}
	}

	w := in.WinRate
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}

	r := in.AvgWin / in.AvgLoss
	full := w - (1-w)/r
	if full <= 0 {
		return SizingResult{KellyFull: full}
	}

	half := full / 2
	fraction := half
	if fraction > in.RiskPerTrade {
		fraction = in.RiskPerTrade
	}

	return SizingResult{
		KellyFull: full,
		KellyHalf: half,
		Fraction:  fraction,
		SizeUSD:   in.Capital * fraction,
		Viable:    true,
	}
}
