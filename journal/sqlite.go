package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/signal"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordSignal(s signal.Signal) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO signals (id, pair, direction, confidence, rationale, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Pair, string(s.Direction), s.Confidence, s.Rationale, s.Time,
	)
	return err
}

// RecordDecision stores the flat query columns plus the full plan as JSON so
// a persisted decision round-trips exactly.
func (j *SQLite) RecordDecision(d gate.TradeDecision) error {
	plan, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	_, err = j.db.Exec(`
		INSERT OR REPLACE INTO decisions
		(id, pair, outcome, direction, confidence, size_usd, risk_reward, rejection_reason, plan_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Pair, string(d.Outcome), string(d.Direction), d.Confidence,
		d.PositionSizeUSD, d.RiskReward, string(d.Reason), string(plan), d.CreatedAt,
	)
	return err
}

func (j *SQLite) RecordTrade(t portfolio.ClosedTrade) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO trades
		(position_id, pair, side, entry_price, exit_price, quantity, pnl, fees, state, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PositionID, t.Pair, string(t.Side), t.EntryPrice, t.ExitPrice,
		t.Quantity, t.PnL, t.Fees, string(t.State), t.OpenedAt, t.ClosedAt,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
