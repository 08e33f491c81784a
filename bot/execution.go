package bot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/exchange"
	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/metrics"
	"github.com/rustyeddy/riskgate/notify"
	"github.com/rustyeddy/riskgate/pkg/id"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/signal"
)

type ExecutionConfig struct {
	Interval     time.Duration
	DecisionTTL  time.Duration
	EntryRetries int
	TakerFee     float64
}

// ExecutionLoop drains approved decisions, places entries, and supervises
// open positions against their stop-loss and take-profit ladder. It is the
// only writer of position and capital-reservation state.
type ExecutionLoop struct {
	cfg      ExecutionConfig
	conn     exchange.Connector
	store    *portfolio.Store
	queue    *Queue
	journal  journal.Journal
	notifier notify.Notifier
	metrics  *metrics.Metrics
	breaker  *portfolio.Breaker
	log      zerolog.Logger

	entryDisabled atomic.Bool
	tickMu        sync.Mutex // a tick never overlaps itself or an emergency close
}

func NewExecutionLoop(
	cfg ExecutionConfig,
	conn exchange.Connector,
	store *portfolio.Store,
	breaker *portfolio.Breaker,
	queue *Queue,
	j journal.Journal,
	n notify.Notifier,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ExecutionLoop {
	return &ExecutionLoop{
		cfg:      cfg,
		conn:     conn,
		store:    store,
		breaker:  breaker,
		queue:    queue,
		journal:  j,
		notifier: n,
		metrics:  m,
		log:      log.With().Str("component", "execution").Logger(),
	}
}

// Run ticks until ctx is cancelled. If a tick's work exceeds the period the
// next fire is skipped rather than run concurrently, so a single breach is
// never processed twice.
func (l *ExecutionLoop) Run(ctx context.Context) {
	l.log.Info().Dur("interval", l.cfg.Interval).Msg("execution loop started")

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("execution loop stopped")
			return
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick runs one execution cycle: drain decisions, then monitor positions.
func (l *ExecutionLoop) Tick(ctx context.Context) {
	if !l.tickMu.TryLock() {
		l.log.Warn().Msg("previous tick still in flight, skipping")
		return
	}
	defer l.tickMu.Unlock()

	l.placeEntries(ctx)
	l.monitorPositions(ctx)
	l.publishGauges()
}

func (l *ExecutionLoop) placeEntries(ctx context.Context) {
	for _, d := range l.queue.Drain() {
		if !d.Approved() || l.entryDisabled.Load() {
			continue
		}
		if age := time.Since(d.CreatedAt); age > l.cfg.DecisionTTL {
			l.log.Warn().Str("pair", d.Pair).Dur("age", age).Msg("decision expired unexecuted")
			l.metrics.Orders.WithLabelValues("stale").Inc()
			continue
		}
		if _, open := l.openPositionFor(d.Pair); open {
			continue
		}
		l.placeEntry(ctx, d)
	}
}

// placeEntry attempts the entry order with bounded retries. An error-free
// response with no executed quantity is an acknowledgement, not a fill, and
// counts as a failed attempt. Capital is reserved only once a fill is
// confirmed; a decision whose placement exhausts its retries is discarded
// with an alert and ties up nothing.
func (l *ExecutionLoop) placeEntry(ctx context.Context, d gate.TradeDecision) {
	qty := d.PositionSizeUSD / d.Entry.Price

	req := exchange.OrderRequest{Pair: d.Pair, Side: exchange.Buy, Quantity: qty}
	side := portfolio.SideLong
	if d.Direction == signal.Short {
		req.Side = exchange.Sell
		side = portfolio.SideShort
	}

	pos := portfolio.Position{
		ID:         id.New(),
		Pair:       d.Pair,
		Side:       side,
		StopLoss:   d.StopLoss.Price,
		State:      portfolio.StatePendingEntry,
		DecisionID: d.ID,
	}

	var fill exchange.Fill
	var err error
	for attempt := 1; attempt <= l.cfg.EntryRetries; attempt++ {
		fill, err = l.conn.PlaceMarketOrder(ctx, req)
		if err == nil && fill.Quantity <= 0 {
			err = fmt.Errorf("order acknowledged but not filled (executed qty %v)", fill.Quantity)
		}
		if err == nil {
			break
		}
		l.log.Warn().Err(err).Str("pair", d.Pair).Int("attempt", attempt).Msg("entry placement failed")
	}
	if err != nil {
		l.metrics.Orders.WithLabelValues("failed").Inc()
		l.notifier.Notify(fmt.Sprintf("❌ entry for %s %s abandoned after %d attempts: %v",
			d.Direction, d.Pair, l.cfg.EntryRetries, err))
		return
	}

	pos.EntryPrice = fill.AvgPrice
	pos.Quantity = fill.Quantity
	pos.InitialQty = fill.Quantity
	pos.Size = fill.Quantity * fill.AvgPrice
	pos.State = portfolio.StateOpen
	pos.OpenedAt = fill.Time
	for _, tp := range d.TakeProfit {
		pos.TakeProfits = append(pos.TakeProfits, portfolio.TakeProfit{
			Level: tp.Level, Price: tp.Price, SizePct: tp.SizePct,
		})
	}

	if err := l.store.Reserve(pos); err != nil {
		// The book moved between decision and fill. Unwind the exposure.
		l.log.Error().Err(err).Str("pair", d.Pair).Msg("reservation failed after fill, unwinding")
		l.closeOrder(ctx, pos, pos.Quantity)
		l.notifier.Notify(fmt.Sprintf("⚠️ %s entry unwound: %v", d.Pair, err))
		return
	}

	l.metrics.Orders.WithLabelValues("filled").Inc()
	l.log.Info().Str("pair", d.Pair).Str("side", string(side)).
		Float64("entry", fill.AvgPrice).Float64("qty", fill.Quantity).Msg("position opened")
	l.notifier.Notify(fmt.Sprintf("✅ opened %s %s @ %.2f ($%.2f)",
		side, d.Pair, fill.AvgPrice, pos.Size))
}

func (l *ExecutionLoop) monitorPositions(ctx context.Context) {
	for _, pos := range l.store.Snapshot().Positions {
		price, err := l.conn.CurrentPrice(ctx, pos.Pair)
		if err != nil {
			l.log.Warn().Err(err).Str("pair", pos.Pair).Msg("no price, skipping position this tick")
			continue
		}
		l.checkExits(ctx, pos, price)
	}
}

// checkExits triggers breached exit levels for one position. A stop breach
// closes the full remaining size immediately; take-profit breaches close
// their ladder share and keep the position open until the last rung.
func (l *ExecutionLoop) checkExits(ctx context.Context, pos portfolio.Position, price float64) {
	if stopBreached(pos, price) {
		l.closePosition(ctx, pos, pos.Quantity, portfolio.StateClosedStopLoss)
		return
	}

	remaining := pos.Quantity
	for _, tp := range pos.TakeProfits {
		if tp.Filled || !takeProfitBreached(pos, tp, price) {
			continue
		}

		closeQty := pos.InitialQty * tp.SizePct / 100
		if closeQty >= remaining || lastUnfilled(pos, tp) {
			l.closePosition(ctx, pos, remaining, portfolio.StateClosedTakeProfit)
			return
		}

		fill, err := l.closeOrder(ctx, pos, closeQty)
		if err != nil {
			l.log.Warn().Err(err).Str("pair", pos.Pair).Msg("partial take-profit failed")
			return
		}
		pnl, _ := realizedPnL(pos.Side, pos.EntryPrice, fill.AvgPrice, closeQty, l.cfg.TakerFee)
		if err := l.store.Reduce(pos.ID, closeQty, pnl); err != nil {
			l.log.Error().Err(err).Str("position", pos.ID).Msg("reduce failed")
			return
		}
		l.store.MarkTakeProfit(pos.ID, tp.Level)
		remaining -= closeQty

		l.log.Info().Str("pair", pos.Pair).Int("level", tp.Level).
			Float64("pnl", pnl).Msg("take-profit filled")
		l.notifier.Notify(fmt.Sprintf("💰 %s TP%d filled, pnl $%.2f", pos.Pair, tp.Level, pnl))
	}
}

// closePosition closes qty (the full remaining size) and releases the
// position with the given terminal state.
func (l *ExecutionLoop) closePosition(ctx context.Context, pos portfolio.Position, qty float64, state portfolio.State) {
	fill, err := l.closeOrder(ctx, pos, qty)
	if err != nil {
		l.log.Error().Err(err).Str("pair", pos.Pair).Msg("close order failed")
		return
	}

	pnl, fees := realizedPnL(pos.Side, pos.EntryPrice, fill.AvgPrice, qty, l.cfg.TakerFee)
	trade, ok := l.store.Release(pos.ID, fill.AvgPrice, pnl, fees, state)
	if !ok {
		return // already closed; never double-release
	}

	if err := l.journal.RecordTrade(trade); err != nil {
		l.log.Warn().Err(err).Msg("record trade")
	}
	l.metrics.TradesClosed.WithLabelValues(string(state)).Inc()
	l.log.Info().Str("pair", pos.Pair).Str("state", string(state)).
		Float64("pnl", pnl).Msg("position closed")
	l.notifier.Notify(fmt.Sprintf("%s closed %s %s: pnl $%.2f (%s)",
		pnlEmoji(pnl), pos.Side, pos.Pair, pnl, state))
}

// CloseManual closes one open position at market on operator request.
func (l *ExecutionLoop) CloseManual(ctx context.Context, positionID string) error {
	pos, ok := l.store.Position(positionID)
	if !ok {
		return portfolio.ErrPositionNotFound
	}
	l.closePosition(ctx, pos, pos.Quantity, portfolio.StateClosedManual)
	return nil
}

// EmergencyStop disables further entries, discards pending decisions, and
// best-effort closes every open position. Loop timers are stopped by the
// supervisor; this is a total halt, not a drain.
func (l *ExecutionLoop) EmergencyStop(ctx context.Context) {
	l.entryDisabled.Store(true)
	l.queue.Drain()

	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	for _, pos := range l.store.Snapshot().Positions {
		l.closePosition(ctx, pos, pos.Quantity, portfolio.StateClosedEmergency)
	}
	l.publishGauges()
	l.notifier.Notify("🚨 EMERGENCY STOP: all positions closed, entries disabled")
}

// ResumeEntries re-enables entry placement after an emergency stop.
func (l *ExecutionLoop) ResumeEntries() {
	l.entryDisabled.Store(false)
}

func (l *ExecutionLoop) closeOrder(ctx context.Context, pos portfolio.Position, qty float64) (exchange.Fill, error) {
	side := exchange.Sell
	if pos.Side == portfolio.SideShort {
		side = exchange.Buy
	}
	return l.conn.PlaceMarketOrder(ctx, exchange.OrderRequest{
		Pair:       pos.Pair,
		Side:       side,
		Quantity:   qty,
		ReduceOnly: true,
	})
}

func (l *ExecutionLoop) openPositionFor(pair string) (portfolio.Position, bool) {
	for _, p := range l.store.Snapshot().Positions {
		if p.Pair == pair {
			return p, true
		}
	}
	return portfolio.Position{}, false
}

func (l *ExecutionLoop) publishGauges() {
	snap := l.store.Snapshot()
	l.metrics.Capital.Set(snap.Capital)
	l.metrics.PeakCapital.Set(snap.PeakCapital)
	l.metrics.Drawdown.Set(snap.Drawdown)
	l.metrics.OpenPositions.Set(float64(len(snap.Positions)))
	if l.breaker.Halted() {
		l.metrics.BreakerHalted.Set(1)
	} else {
		l.metrics.BreakerHalted.Set(0)
	}
}

func stopBreached(pos portfolio.Position, price float64) bool {
	if pos.StopLoss <= 0 {
		return false
	}
	if pos.Side == portfolio.SideLong {
		return price <= pos.StopLoss
	}
	return price >= pos.StopLoss
}

func takeProfitBreached(pos portfolio.Position, tp portfolio.TakeProfit, price float64) bool {
	if pos.Side == portfolio.SideLong {
		return price >= tp.Price
	}
	return price <= tp.Price
}

// lastUnfilled reports whether tp is the only ladder level not yet filled.
func lastUnfilled(pos portfolio.Position, tp portfolio.TakeProfit) bool {
	for _, other := range pos.TakeProfits {
		if other.Level != tp.Level && !other.Filled {
			return false
		}
	}
	return true
}

// realizedPnL nets the taker fee on both entry and exit notional.
func realizedPnL(side portfolio.Side, entry, exit, qty, feeRate float64) (pnl, fees float64) {
	gross := (exit - entry) * qty
	if side == portfolio.SideShort {
		gross = (entry - exit) * qty
	}
	fees = feeRate * qty * (entry + exit)
	return gross - fees, fees
}

func pnlEmoji(pnl float64) string {
	if pnl >= 0 {
		return "💰"
	}
	return "📉"
}
