package bot

import (
	"sync"

	"github.com/rustyeddy/riskgate/gate"
)

// Queue is the single-producer/single-consumer hand-off between the
// strategy and execution loops. Decisions are consumed in publication
// order, with at most one pending decision per pair: a newer decision for
// a pair supersedes the one still waiting, in place.
type Queue struct {
	mu    sync.Mutex
	items []gate.TradeDecision
}

func NewQueue() *Queue {
	return &Queue{}
}

// Publish enqueues d, replacing any pending decision for the same pair.
func (q *Queue) Publish(d gate.TradeDecision) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.items {
		if q.items[i].Pair == d.Pair {
			q.items[i] = d
			return
		}
	}
	q.items = append(q.items, d)
}

// Drain removes and returns everything pending, oldest slot first.
func (q *Queue) Drain() []gate.TradeDecision {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
