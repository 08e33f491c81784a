// Package bot runs the two schedulers: a low-frequency strategy loop that
// produces decisions and a high-frequency execution loop that acts on them.
package bot

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/metrics"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/rustyeddy/riskgate/signal"
)

// StrategyLoop pulls one signal per tracked pair each tick, evaluates risk
// against a fresh portfolio snapshot, runs the gate, and publishes the
// decision. It reads portfolio state and writes only to the queue and
// journal.
type StrategyLoop struct {
	interval  time.Duration
	pairs     []string
	source    signal.Source
	evaluator *risk.Evaluator
	gate      *gate.Gate
	store     *portfolio.Store
	queue     *Queue
	journal   journal.Journal
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func NewStrategyLoop(
	interval time.Duration,
	pairs []string,
	source signal.Source,
	evaluator *risk.Evaluator,
	g *gate.Gate,
	store *portfolio.Store,
	queue *Queue,
	j journal.Journal,
	m *metrics.Metrics,
	log zerolog.Logger,
) *StrategyLoop {
	return &StrategyLoop{
		interval:  interval,
		pairs:     pairs,
		source:    source,
		evaluator: evaluator,
		gate:      g,
		store:     store,
		queue:     queue,
		journal:   j,
		metrics:   m,
		log:       log.With().Str("component", "strategy").Logger(),
	}
}

// Run ticks until ctx is cancelled. Ticks execute sequentially on this
// goroutine: if a tick outruns the period the ticker coalesces and the
// next fire is simply later, so ticks for a pair never run concurrently.
func (l *StrategyLoop) Run(ctx context.Context) {
	l.log.Info().Dur("interval", l.interval).Strs("pairs", l.pairs).Msg("strategy loop started")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("strategy loop stopped")
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *StrategyLoop) tick(ctx context.Context) {
	for _, pair := range l.pairs {
		if ctx.Err() != nil {
			return
		}
		l.analyzePair(ctx, pair)
	}
}

func (l *StrategyLoop) analyzePair(ctx context.Context, pair string) {
	sig, err := l.source.Next(ctx, pair)
	if err != nil {
		if errors.Is(err, signal.ErrUnavailable) {
			l.log.Debug().Str("pair", pair).Msg("no signal this tick")
		} else {
			l.log.Warn().Err(err).Str("pair", pair).Msg("signal source failed")
		}
		return
	}
	if err := l.journal.RecordSignal(sig); err != nil {
		l.log.Warn().Err(err).Msg("record signal")
	}

	snap := l.store.Snapshot()
	assessment := l.evaluator.Evaluate(ctx, sig, snap)
	decision := l.gate.Decide(sig, assessment, snap)

	l.queue.Publish(decision)
	if err := l.journal.RecordDecision(decision); err != nil {
		l.log.Warn().Err(err).Msg("record decision")
	}
	l.metrics.Decisions.WithLabelValues(string(decision.Outcome), string(decision.Reason)).Inc()
}
