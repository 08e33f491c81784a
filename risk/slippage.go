package risk

import "github.com/rustyeddy/riskgate/market"

// Depth notional thresholds for the coarse liquidity classification,
// measured over the widest (2%) band. The narrower bands are subsets of
// it, so the wide band alone is the total visible depth near the mid.
const (
	classifyBandPct = 0.02

	deepDepthUSD   = 1_000_000
	normalDepthUSD = 100_000
)

type SlippageResult struct {
	AvgFillPrice float64
	SlippageBps  float64
	SpreadBps    float64
	Liquidity    Liquidity
	Filled       bool // whether visible depth could absorb the full size
}

// EstimateSlippage simulates walking the live book with notional USD,
// accumulating volume level by level until filled, and compares the
// volume-weighted fill price against the mid. buySide walks the asks
// (entering long), otherwise the bids.
func EstimateSlippage(ob market.OrderBook, notional float64, buySide bool) SlippageResult {
	mid := ob.Mid()
	if mid == 0 || notional <= 0 {
		return SlippageResult{Liquidity: LiquidityThin}
	}

	levels := ob.Asks
	if !buySide {
		levels = ob.Bids
	}

	wantQty := notional / mid
	var filledQty, cost float64
	for _, lv := range levels {
		take := lv.Qty
		if filledQty+take > wantQty {
			take = wantQty - filledQty
		}
		cost += take * lv.Price
		filledQty += take
		if filledQty >= wantQty {
			break
		}
	}

	res := SlippageResult{
		SpreadBps: ob.SpreadBps(),
		Liquidity: classifyDepth(ob),
		Filled:    filledQty >= wantQty,
	}
	if filledQty == 0 {
		res.AvgFillPrice = mid
		return res
	}

	res.AvgFillPrice = cost / filledQty
	slip := (res.AvgFillPrice - mid) / mid
	if !buySide {
		slip = -slip
	}
	res.SlippageBps = slip * 10_000
	return res
}

func classifyDepth(ob market.OrderBook) Liquidity {
	depth := ob.DepthWithin(classifyBandPct)
	switch {
	case depth > deepDepthUSD:
		return LiquidityDeep
	case depth > normalDepthUSD:
		return LiquidityNormal
	default:
		return LiquidityThin
	}
}
