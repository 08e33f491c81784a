package journal

const schema = `
CREATE TABLE IF NOT EXISTS signals (
	id TEXT PRIMARY KEY,
	pair TEXT NOT NULL,
	direction TEXT NOT NULL,
	confidence REAL NOT NULL,
	rationale TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	pair TEXT NOT NULL,
	outcome TEXT NOT NULL,
	direction TEXT NOT NULL,
	confidence REAL NOT NULL,
	size_usd REAL NOT NULL,
	risk_reward REAL NOT NULL,
	rejection_reason TEXT NOT NULL,
	plan_json TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	position_id TEXT PRIMARY KEY,
	pair TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	quantity REAL NOT NULL,
	pnl REAL NOT NULL,
	fees REAL NOT NULL,
	state TEXT NOT NULL,
	opened_at DATETIME NOT NULL,
	closed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_pair_time ON signals(pair, created_at);
CREATE INDEX IF NOT EXISTS idx_decisions_time ON decisions(created_at);
CREATE INDEX IF NOT EXISTS idx_trades_closed ON trades(closed_at);
`
