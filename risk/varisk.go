package risk

import (
	"errors"
	"math"
	"sort"
)

// minVaRSamples is the minimum number of period returns required before a
// historical-simulation VaR is considered meaningful.
const minVaRSamples = 50

var errVaRHistory = errors.New("risk: insufficient history for VaR")

type VaRResult struct {
	VaRUSD  float64
	VaRPct  float64 // % of notional
	CVaRUSD float64
	CVaRPct float64
}

// HistoricalVaR estimates 1-day VaR and CVaR over notional from hourly
// returns. When the series covers at least five full days, returns are
// compounded into daily buckets and the empirical percentile is taken over
// those; otherwise the hourly percentile is scaled by sqrt(24).
func HistoricalVaR(hourly []float64, notional, confidence float64) (VaRResult, error) {
	if len(hourly) < minVaRSamples {
		return VaRResult{}, errVaRHistory
	}

	daily := make([]float64, 0, len(hourly)/24)
	for i := 0; i+24 <= len(hourly); i += 24 {
		var sum float64
		for _, r := range hourly[i : i+24] {
			sum += r
		}
		daily = append(daily, sum)
	}

	var varRet, cvarRet float64
	if len(daily) >= 5 {
		varRet = percentile(daily, 1-confidence)
		cvarRet = tailMean(daily, 1-confidence)
	} else {
		scale := math.Sqrt(24)
		varRet = percentile(hourly, 1-confidence) * scale
		cvarRet = tailMean(hourly, 1-confidence) * scale
	}

	return VaRResult{
		VaRUSD:  math.Abs(varRet) * notional,
		VaRPct:  math.Abs(varRet) * 100,
		CVaRUSD: math.Abs(cvarRet) * notional,
		CVaRPct: math.Abs(cvarRet) * 100,
	}, nil
}

// percentile returns the empirical p-quantile (0..1) of xs.
func percentile(xs []float64, p float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// tailMean returns the mean of the worst p fraction of xs (the CVaR tail).
func tailMean(xs []float64, p float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	cutoff := int(float64(len(sorted)) * p)
	if cutoff < 1 {
		cutoff = 1
	}

	var sum float64
	for _, v := range sorted[:cutoff] {
		sum += v
	}
	return sum / float64(cutoff)
}
