package signal

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/riskgate/pkg/id"
)

// Fixed replays a canned list of signals per pair, one per call, then
// reports ErrUnavailable. It exists to wire the loops in paper trading and
// tests; a real strategy plugs in behind the same Source interface.
type Fixed struct {
	mu      sync.Mutex
	pending map[string][]Signal
}

func NewFixed(signals ...Signal) *Fixed {
	f := &Fixed{pending: make(map[string][]Signal)}
	for _, s := range signals {
		f.pending[s.Pair] = append(f.pending[s.Pair], s)
	}
	return f
}

// Push appends a signal to the replay list for its pair.
func (f *Fixed) Push(s Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[s.Pair] = append(f.pending[s.Pair], s)
}

// Next pops the oldest pending signal for pair, stamping an ID and time
// if the caller left them zero.
func (f *Fixed) Next(_ context.Context, pair string) (Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := f.pending[pair]
	if len(q) == 0 {
		return Signal{}, ErrUnavailable
	}
	s := q[0]
	f.pending[pair] = q[1:]

	if s.ID == "" {
		s.ID = id.New()
	}
	if s.Time.IsZero() {
		s.Time = time.Now()
	}
	return s, nil
}
