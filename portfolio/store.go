// Package portfolio owns the single source of truth for capital and open
// positions. All mutation goes through Reserve/Reduce/Release, which apply
// fully or not at all; readers get point-in-time snapshots.
package portfolio

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrInsufficientCapital = errors.New("portfolio: insufficient unreserved capital")
	ErrMaxPositions        = errors.New("portfolio: position slots exhausted")
	ErrPositionNotFound    = errors.New("portfolio: position not found")
)

// Snapshot is a read-only copy of portfolio state, handed to the risk
// evaluator and decision gate.
type Snapshot struct {
	Capital        float64
	InitialCapital float64
	PeakCapital    float64
	Reserved       float64
	Available      float64 // Capital - Reserved
	Drawdown       float64
	Positions      []Position
	Stats          Stats
}

// Stats summarizes realized trade history.
type Stats struct {
	Trades            int
	Wins              int
	WinRate           float64
	AvgWin            float64
	AvgLoss           float64 // positive number
	ProfitFactor      float64
	TotalPnL          float64
	ConsecutiveLosses int
	TradesToday       int
}

// Store holds capital and open positions behind one mutex.
type Store struct {
	mu           sync.Mutex
	capital      float64
	initial      float64
	peak         float64
	maxPositions int
	positions    map[string]*Position
	closed       []ClosedTrade
	breaker      *Breaker

	now func() time.Time // test hook
}

func NewStore(initialCapital float64, maxPositions int, breaker *Breaker) *Store {
	return &Store{
		capital:      initialCapital,
		initial:      initialCapital,
		peak:         initialCapital,
		maxPositions: maxPositions,
		positions:    make(map[string]*Position),
		breaker:      breaker,
		now:          time.Now,
	}
}

// Reserve atomically admits a position, failing if the notional does not fit
// within unreserved capital or no slot is free. The position must already be
// OPEN (reservation happens on confirmed fill, not at decision time).
func (s *Store) Reserve(p Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.positions) >= s.maxPositions {
		return ErrMaxPositions
	}
	if p.Size > s.capital-s.reservedLocked() {
		return ErrInsufficientCapital
	}

	cp := p
	s.positions[p.ID] = &cp
	return nil
}

// Reduce realizes a partial close: qty comes off the position, the
// proportional reservation is freed, and pnl (net of fees) is credited.
// The position stays OPEN.
func (s *Store) Reduce(id string, qty, pnl float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.positions[id]
	if !ok {
		return ErrPositionNotFound
	}
	if qty >= p.Quantity {
		qty = p.Quantity
	}
	frac := qty / p.Quantity
	p.Size -= p.Size * frac
	p.Quantity -= qty

	s.creditLocked(pnl)
	return nil
}

// Release fully closes a position: the reservation is freed, realized pnl is
// credited, and the trade is archived. Releasing an unknown or already
// archived position is a no-op so a double close can never double-credit.
// The archived trade is returned when a release actually happened.
func (s *Store) Release(id string, exitPrice, pnl, fees float64, state State) (ClosedTrade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.positions[id]
	if !ok {
		return ClosedTrade{}, false
	}
	delete(s.positions, id)

	s.creditLocked(pnl)
	s.closed = append(s.closed, ClosedTrade{
		PositionID: p.ID,
		Pair:       p.Pair,
		Side:       p.Side,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   p.Quantity,
		PnL:        pnl,
		Fees:       fees,
		State:      state,
		OpenedAt:   p.OpenedAt,
		ClosedAt:   s.now(),
	})
	return s.closed[len(s.closed)-1], true
}

// MarkTakeProfit flags one ladder level as filled on an open position.
func (s *Store) MarkTakeProfit(id string, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.positions[id]
	if !ok {
		return
	}
	for i := range p.TakeProfits {
		if p.TakeProfits[i].Level == level {
			p.TakeProfits[i].Filled = true
		}
	}
}

// ResetCapital sets capital and peak to amount and re-arms the breaker.
// External control operation; not called by either loop.
func (s *Store) ResetCapital(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.capital = amount
	s.initial = amount
	s.peak = amount
	if s.breaker != nil {
		s.breaker.Rearm()
	}
}

// Drawdown returns the current peak-to-capital decline as a fraction of peak.
func (s *Store) Drawdown() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawdownLocked()
}

// Snapshot returns a consistent read-only copy of the portfolio.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := make([]Position, 0, len(s.positions))
	for _, p := range s.positions {
		cp := *p
		cp.TakeProfits = append([]TakeProfit(nil), p.TakeProfits...)
		positions = append(positions, cp)
	}

	reserved := s.reservedLocked()
	return Snapshot{
		Capital:        s.capital,
		InitialCapital: s.initial,
		PeakCapital:    s.peak,
		Reserved:       reserved,
		Available:      s.capital - reserved,
		Drawdown:       s.drawdownLocked(),
		Positions:      positions,
		Stats:          s.statsLocked(),
	}
}

// Position returns a copy of one open position.
func (s *Store) Position(id string) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.positions[id]
	if !ok {
		return Position{}, false
	}
	cp := *p
	cp.TakeProfits = append([]TakeProfit(nil), p.TakeProfits...)
	return cp, true
}

// creditLocked applies realized pnl and ratchets the peak.
func (s *Store) creditLocked(pnl float64) {
	s.capital += pnl
	if s.capital > s.peak {
		s.peak = s.capital
	}
	if s.breaker != nil {
		s.breaker.Observe(s.drawdownLocked())
	}
}

func (s *Store) reservedLocked() float64 {
	var sum float64
	for _, p := range s.positions {
		sum += p.Size
	}
	return sum
}

func (s *Store) drawdownLocked() float64 {
	if s.peak <= 0 || s.capital >= s.peak {
		return 0
	}
	return (s.peak - s.capital) / s.peak
}

func (s *Store) statsLocked() Stats {
	st := Stats{Trades: len(s.closed)}

	var winSum, lossSum float64
	var losses int
	today := s.now().Truncate(24 * time.Hour)

	for _, t := range s.closed {
		st.TotalPnL += t.PnL
		if t.PnL > 0 {
			st.Wins++
			winSum += t.PnL
		} else {
			losses++
			lossSum += -t.PnL
		}
		if !t.ClosedAt.Before(today) {
			st.TradesToday++
		}
	}

	// Consecutive losses counted from the most recent close backwards.
	for i := len(s.closed) - 1; i >= 0; i-- {
		if s.closed[i].PnL >= 0 {
			break
		}
		st.ConsecutiveLosses++
	}

	if st.Trades > 0 {
		st.WinRate = float64(st.Wins) / float64(st.Trades)
	}
	if st.Wins > 0 {
		st.AvgWin = winSum / float64(st.Wins)
	}
	if losses > 0 {
		st.AvgLoss = lossSum / float64(losses)
	}
	if lossSum > 0 {
		st.ProfitFactor = winSum / lossSum
	}
	return st
}
