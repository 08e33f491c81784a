package signal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	f := NewFixed(
		Signal{Pair: "BTC/USDT", Direction: Long, Confidence: 80},
		Signal{Pair: "BTC/USDT", Direction: Short, Confidence: 65},
	)

	first, err := f.Next(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, Long, first.Direction)
	assert.NotEmpty(t, first.ID, "an ID is stamped when the caller omits one")
	assert.False(t, first.Time.IsZero())

	second, err := f.Next(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, Short, second.Direction)

	_, err = f.Next(ctx, "BTC/USDT")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = f.Next(ctx, "ETH/USDT")
	assert.ErrorIs(t, err, ErrUnavailable)

	f.Push(Signal{Pair: "ETH/USDT", Direction: Long, Confidence: 70})
	s, err := f.Next(ctx, "ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, "ETH/USDT", s.Pair)
}
