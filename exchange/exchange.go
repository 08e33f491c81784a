// Package exchange defines the connector consumed by the loops. Concrete
// implementations live in the binance and paper subpackages.
package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/riskgate/market"
)

// OrderSide is the exchange-facing order direction.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderRequest is a market order. ReduceOnly marks closes so a close can
// never accidentally open exposure the other way.
type OrderRequest struct {
	Pair       string
	Side       OrderSide
	Quantity   float64
	ReduceOnly bool
}

// Fill is a confirmed execution.
type Fill struct {
	OrderID  string
	Pair     string
	Side     OrderSide
	Quantity float64
	AvgPrice float64
	Time     time.Time
}

// ErrOrderRejected reports a terminal (non-transient) order failure.
var ErrOrderRejected = errors.New("exchange: order rejected")

// Connector is the full exchange surface. All operations may fail
// transiently; implementations retry with backoff internally and callers
// treat returned errors as exhausted.
type Connector interface {
	CurrentPrice(ctx context.Context, pair string) (float64, error)
	Klines(ctx context.Context, pair, interval string, limit int) ([]market.Candle, error)
	OrderBook(ctx context.Context, pair string, depth int) (market.OrderBook, error)
	PlaceMarketOrder(ctx context.Context, req OrderRequest) (Fill, error)
}
