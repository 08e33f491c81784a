package market

import "time"

// Level is one price level of an orderbook side.
type Level struct {
	Price float64
	Qty   float64
}

// OrderBook is a depth snapshot. Bids are sorted descending by price,
// asks ascending, as delivered by the exchange.
type OrderBook struct {
	Pair string
	Bids []Level
	Asks []Level
	Time time.Time
}

// BestBid returns the top bid price, or 0 if the book is empty.
func (ob OrderBook) BestBid() float64 {
	if len(ob.Bids) == 0 {
		return 0
	}
	return ob.Bids[0].Price
}

// BestAsk returns the top ask price, or 0 if the book is empty.
func (ob OrderBook) BestAsk() float64 {
	if len(ob.Asks) == 0 {
		return 0
	}
	return ob.Asks[0].Price
}

// Mid returns the midpoint of the top of book, or 0 when either side is empty.
func (ob OrderBook) Mid() float64 {
	bid, ask := ob.BestBid(), ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}

// SpreadBps returns the top-of-book spread in basis points.
func (ob OrderBook) SpreadBps() float64 {
	bid, ask := ob.BestBid(), ob.BestAsk()
	if bid == 0 {
		return 0
	}
	return (ask - bid) / bid * 10_000
}

// DepthWithin sums notional (price*qty) on both sides within pct of the mid.
// pct is fractional: 0.01 means within one percent.
func (ob OrderBook) DepthWithin(pct float64) float64 {
	mid := ob.Mid()
	if mid == 0 {
		return 0
	}
	lower := mid * (1 - pct)
	upper := mid * (1 + pct)

	var depth float64
	for _, b := range ob.Bids {
		if b.Price < lower {
			break
		}
		depth += b.Price * b.Qty
	}
	for _, a := range ob.Asks {
		if a.Price > upper {
			break
		}
		depth += a.Price * a.Qty
	}
	return depth
}
