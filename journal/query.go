package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rustyeddy/riskgate/gate"
	"github.com/rustyeddy/riskgate/portfolio"
	"github.com/rustyeddy/riskgate/signal"
)

// GetDecision loads one decision by ID, reconstructed from its stored JSON.
func (j *SQLite) GetDecision(id string) (gate.TradeDecision, error) {
	var plan string
	err := j.db.QueryRow(`SELECT plan_json FROM decisions WHERE id = ?`, id).Scan(&plan)
	if err == sql.ErrNoRows {
		return gate.TradeDecision{}, fmt.Errorf("decision %q not found", id)
	}
	if err != nil {
		return gate.TradeDecision{}, err
	}

	var d gate.TradeDecision
	if err := json.Unmarshal([]byte(plan), &d); err != nil {
		return gate.TradeDecision{}, fmt.Errorf("decode decision %q: %w", id, err)
	}
	return d, nil
}

// ListDecisionsBetween returns decisions created in [start, end), oldest first.
func (j *SQLite) ListDecisionsBetween(start, end time.Time) ([]gate.TradeDecision, error) {
	rows, err := j.db.Query(
		`SELECT plan_json FROM decisions WHERE created_at >= ? AND created_at < ? ORDER BY created_at`,
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gate.TradeDecision
	for rows.Next() {
		var plan string
		if err := rows.Scan(&plan); err != nil {
			return nil, err
		}
		var d gate.TradeDecision
		if err := json.Unmarshal([]byte(plan), &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListTradesBetween returns trades closed in [start, end), oldest first.
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]portfolio.ClosedTrade, error) {
	rows, err := j.db.Query(`
		SELECT position_id, pair, side, entry_price, exit_price, quantity, pnl, fees, state, opened_at, closed_at
		FROM trades WHERE closed_at >= ? AND closed_at < ? ORDER BY closed_at`,
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []portfolio.ClosedTrade
	for rows.Next() {
		var t portfolio.ClosedTrade
		var side, state string
		if err := rows.Scan(&t.PositionID, &t.Pair, &side, &t.EntryPrice, &t.ExitPrice,
			&t.Quantity, &t.PnL, &t.Fees, &state, &t.OpenedAt, &t.ClosedAt); err != nil {
			return nil, err
		}
		t.Side = portfolio.Side(side)
		t.State = portfolio.State(state)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListSignals returns the most recent signals for a pair, newest first.
func (j *SQLite) ListSignals(pair string, limit int) ([]signal.Signal, error) {
	rows, err := j.db.Query(`
		SELECT id, pair, direction, confidence, rationale, created_at
		FROM signals WHERE pair = ? ORDER BY created_at DESC LIMIT ?`,
		pair, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []signal.Signal
	for rows.Next() {
		var s signal.Signal
		var dir string
		if err := rows.Scan(&s.ID, &s.Pair, &dir, &s.Confidence, &s.Rationale, &s.Time); err != nil {
			return nil, err
		}
		s.Direction = signal.Direction(dir)
		out = append(out, s)
	}
	return out, rows.Err()
}
