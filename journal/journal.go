// Package journal persists the signal/decision/trade history behind the
// CLI and API queries.
package journal

import (
	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/signal"
)

type Journal interface {
	RecordSignal(signal.Signal) error
	RecordDecision(gate.TradeDecision) error
	RecordTrade(portfolio.ClosedTrade) error
	Close() error
}

// Nop discards everything. Used by tests that do not care about history.
type Nop struct{}

func (Nop) RecordSignal(signal.Signal) error        { return nil }
func (Nop) RecordDecision(gate.TradeDecision) error { return nil }
func (Nop) RecordTrade(portfolio.ClosedTrade) error { return nil }
func (Nop) Close() error                            { return nil }
