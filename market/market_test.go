package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	t.Parallel()

	candles := []Candle{
		{Close: 100},
		{Close: 110},
		{Close: 99},
	}
	rets := Returns(candles)
	require.Len(t, rets, 2)
	assert.InDelta(t, 0.10, rets[0], 1e-9)
	assert.InDelta(t, -0.10, rets[1], 1e-9)

	assert.Nil(t, Returns([]Candle{{Close: 100}}))
	assert.Nil(t, Returns(nil))
}

func TestOrderBook(t *testing.T) {
	t.Parallel()

	ob := OrderBook{
		Pair: "BTC/USDT",
		Bids: []Level{{Price: 99, Qty: 2}, {Price: 95, Qty: 5}},
		Asks: []Level{{Price: 101, Qty: 3}, {Price: 106, Qty: 5}},
	}

	assert.Equal(t, 99.0, ob.BestBid())
	assert.Equal(t, 101.0, ob.BestAsk())
	assert.Equal(t, 100.0, ob.Mid())
	assert.InDelta(t, 202.02, ob.SpreadBps(), 0.01)

	// Within 2% of mid: the 99 bid and 101 ask qualify, the outer levels
	// do not.
	assert.InDelta(t, 99*2+101*3, ob.DepthWithin(0.02), 1e-9)

	empty := OrderBook{}
	assert.Zero(t, empty.Mid())
	assert.Zero(t, empty.DepthWithin(0.01))
}

func TestTickStore(t *testing.T) {
	t.Parallel()

	s := NewTickStore()

	_, err := s.Get("BTC/USDT")
	assert.ErrorIs(t, err, ErrNoPrice)

	tick := Tick{Pair: "BTC/USDT", Bid: 99.9, Ask: 100.1, Time: time.Now()}
	s.Set(tick)

	got, err := s.Get("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, tick, got)
	assert.InDelta(t, 100.0, got.Mid(), 1e-9)
	assert.InDelta(t, 0.2, got.Spread(), 1e-9)
}
