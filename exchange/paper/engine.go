// Package paper is an in-process connector that fills market orders at the
// latest cached quote. It backs dry-run mode and the loop tests.
package paper

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/riskgate/exchange"
	"github.com/rustyeddy/riskgate/market"
	"github.com/rustyeddy/riskgate/pkg/id"
)

type Engine struct {
	mu      sync.Mutex
	ticks   *market.TickStore
	candles map[string][]market.Candle
	books   map[string]market.OrderBook
	fills   []exchange.Fill

	// FailNextOrders makes the next n PlaceMarketOrder calls fail, for
	// exercising entry-retry paths.
	failOrders int
}

func New(ticks *market.TickStore) *Engine {
	if ticks == nil {
		ticks = market.NewTickStore()
	}
	return &Engine{
		ticks:   ticks,
		candles: make(map[string][]market.Candle),
		books:   make(map[string]market.OrderBook),
	}
}

// SetTick seeds the current quote for a pair.
func (e *Engine) SetTick(t market.Tick) { e.ticks.Set(t) }

// SetCandles seeds kline history served by Klines.
func (e *Engine) SetCandles(pair string, cs []market.Candle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candles[pair] = cs
}

// SetOrderBook seeds the depth snapshot served by OrderBook.
func (e *Engine) SetOrderBook(ob market.OrderBook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.books[ob.Pair] = ob
}

// FailNextOrders makes the next n order placements return ErrOrderRejected.
func (e *Engine) FailNextOrders(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failOrders = n
}

// Fills returns every confirmed fill so far.
func (e *Engine) Fills() []exchange.Fill {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]exchange.Fill(nil), e.fills...)
}

func (e *Engine) CurrentPrice(ctx context.Context, pair string) (float64, error) {
	t, err := e.ticks.Get(pair)
	if err != nil {
		return 0, err
	}
	return t.Mid(), nil
}

func (e *Engine) Klines(ctx context.Context, pair, interval string, limit int) ([]market.Candle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs, ok := e.candles[pair]
	if !ok {
		return nil, market.ErrNoPrice
	}
	if len(cs) > limit {
		cs = cs[len(cs)-limit:]
	}
	return append([]market.Candle(nil), cs...), nil
}

func (e *Engine) OrderBook(ctx context.Context, pair string, depth int) (market.OrderBook, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ob, ok := e.books[pair]
	if !ok {
		return market.OrderBook{}, market.ErrNoPrice
	}
	return ob, nil
}

// PlaceMarketOrder fills immediately at the current quote: buys at ask,
// sells at bid.
func (e *Engine) PlaceMarketOrder(ctx context.Context, req exchange.OrderRequest) (exchange.Fill, error) {
	e.mu.Lock()
	if e.failOrders > 0 {
		e.failOrders--
		e.mu.Unlock()
		return exchange.Fill{}, exchange.ErrOrderRejected
	}
	e.mu.Unlock()

	t, err := e.ticks.Get(req.Pair)
	if err != nil {
		return exchange.Fill{}, err
	}

	price := t.Ask
	if req.Side == exchange.Sell {
		price = t.Bid
	}

	fill := exchange.Fill{
		OrderID:  id.New(),
		Pair:     req.Pair,
		Side:     req.Side,
		Quantity: req.Quantity,
		AvgPrice: price,
		Time:     time.Now(),
	}

	e.mu.Lock()
	e.fills = append(e.fills, fill)
	e.mu.Unlock()
	return fill, nil
}
