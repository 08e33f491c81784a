// Package signal defines the directional signal consumed by the strategy
// loop. Signal generation itself lives behind the Source interface; this
// module only carries the contract.
package signal

import (
	"context"
	"errors"
	"time"
)

// Direction is the signal's directional bias.
type Direction string

const (
	Long    Direction = "LONG"
	Short   Direction = "SHORT"
	Neutral Direction = "NEUTRAL"
)

// Signal is one directional call for a pair. Immutable once created.
type Signal struct {
	ID         string    `json:"id"`
	Pair       string    `json:"pair"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"` // 0-100
	Rationale  string    `json:"rationale"`
	Time       time.Time `json:"time"`
}

// ErrUnavailable is returned by a Source when it cannot produce a signal
// for the pair this tick. The strategy loop treats it as "no decision".
var ErrUnavailable = errors.New("signal: unavailable")

// Source produces at most one Signal per pair per strategy tick.
type Source interface {
	Next(ctx context.Context, pair string) (Signal, error)
}
