package bot

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Bot supervises the two loops on independent clocks. Ordinary shutdown
// (context cancellation) lets in-flight ticks finish; EmergencyStop halts
// everything immediately and flattens the book.
type Bot struct {
	strategy  *StrategyLoop
	execution *ExecutionLoop
	log       zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(strategy *StrategyLoop, execution *ExecutionLoop, log zerolog.Logger) *Bot {
	return &Bot{
		strategy:  strategy,
		execution: execution,
		log:       log.With().Str("component", "bot").Logger(),
	}
}

// Start launches both loops. It returns immediately; Wait blocks until
// both have stopped.
func (b *Bot) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	b.cancel = cancel
	b.done = make(chan struct{})
	b.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.strategy.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		b.execution.Run(ctx)
	}()

	go func() {
		wg.Wait()
		close(b.done)
	}()
}

// Wait blocks until both loops have exited.
func (b *Bot) Wait() {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Shutdown stops both timers and waits for in-flight ticks to complete.
func (b *Bot) Shutdown() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.Wait()
	b.log.Info().Msg("shutdown complete")
}

// EmergencyStop is the total, immediate halt: no further entries, every
// open position closed best-effort, both timers stopped.
func (b *Bot) EmergencyStop(ctx context.Context) {
	b.log.Warn().Msg("emergency stop requested")

	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	b.execution.EmergencyStop(ctx)
	b.Wait()
}

// Execution exposes the execution loop for the control surface.
func (b *Bot) Execution() *ExecutionLoop { return b.execution }
