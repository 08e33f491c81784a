package market

import (
	"errors"
	"sync"
	"time"
)

// Tick is a single bid/ask quote for a pair.
type Tick struct {
	Pair string
	Bid  float64
	Ask  float64
	Time time.Time
}

func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}

var ErrNoPrice = errors.New("market: no price for pair")

// TickStore caches the latest tick per pair. Safe for concurrent use;
// the websocket stream writes, the execution loop reads.
type TickStore struct {
	mu    sync.RWMutex
	ticks map[string]Tick
}

func NewTickStore() *TickStore {
	return &TickStore{ticks: make(map[string]Tick)}
}

func (s *TickStore) Set(t Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks[t.Pair] = t
}

func (s *TickStore) Get(pair string) (Tick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.ticks[pair]
	if !ok {
		return Tick{}, ErrNoPrice
	}
	return t, nil
}
