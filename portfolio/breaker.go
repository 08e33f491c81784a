package portfolio

import "sync"

// BreakerState is the circuit breaker's flag consulted by the decision gate.
type BreakerState string

const (
	BreakerActive BreakerState = "ACTIVE"
	BreakerHalted BreakerState = "HALTED"
)

// Breaker trips to HALTED the moment drawdown reaches the threshold.
// Recovery is manual only: once halted it stays halted until Rearm, even if
// drawdown later falls back under the threshold. A bounce that merely dips
// below the line is not a reason to resume risk-taking.
type Breaker struct {
	mu        sync.Mutex
	threshold float64
	state     BreakerState
	onTrip    func(drawdown float64)
}

func NewBreaker(threshold float64) *Breaker {
	return &Breaker{threshold: threshold, state: BreakerActive}
}

// OnTrip registers a callback fired once per trip. It runs on the path of
// the mutation that tripped the breaker; keep it non-blocking.
func (b *Breaker) OnTrip(fn func(drawdown float64)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrip = fn
}

// Observe feeds the latest drawdown. Called by the store after every
// capital-affecting event.
func (b *Breaker) Observe(drawdown float64) {
	b.mu.Lock()
	if b.state == BreakerHalted || drawdown < b.threshold {
		b.mu.Unlock()
		return
	}
	b.state = BreakerHalted
	fn := b.onTrip
	b.mu.Unlock()

	if fn != nil {
		fn(drawdown)
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Halted() bool {
	return b.State() == BreakerHalted
}

// Rearm returns the breaker to ACTIVE. Wired to the capital-reset control
// operation only.
func (b *Breaker) Rearm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerActive
}
