package storage

// sqlite.go — persistencia del simulador sobre SQLite (pure Go, sin CGo).
//
// Un schema conceptual por concern: portfolio + curva de equity, posiciones
// abiertas, historial de cierres, snapshots, último scan de señales, corpus
// histórico y resultados de backtest. El documento de portfolio lleva un
// version stamp: cada comando es un ciclo read-mutate-write y un write
// conflictivo falla con domain.ErrStoreConflict en vez de corromper estado.

import (
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

const schema = `
-- Documento de portfolio: metadatos + un ledger por estrategia
CREATE TABLE IF NOT EXISTS portfolio_meta (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    version    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS ledgers (
    strategy     TEXT PRIMARY KEY,
    cash         REAL NOT NULL,
    initial_cash REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity_points (
    strategy  TEXT    NOT NULL,
    point_idx INTEGER NOT NULL,
    date      TEXT    NOT NULL,
    equity    REAL    NOT NULL,
    PRIMARY KEY (strategy, point_idx)
);

-- Posiciones abiertas, en orden de apertura (rowid)
CREATE TABLE IF NOT EXISTS positions (
    id            TEXT PRIMARY KEY,
    strategy      TEXT NOT NULL,
    market_slug   TEXT NOT NULL,
    question      TEXT,
    side          TEXT NOT NULL,
    entry_price   REAL NOT NULL,
    current_price REAL NOT NULL,
    shares        REAL NOT NULL,
    cost          REAL NOT NULL,
    opened_at     TEXT NOT NULL
);

-- Historial de cierres, append-only
CREATE TABLE IF NOT EXISTS closed_positions (
    id          TEXT NOT NULL,
    strategy    TEXT NOT NULL,
    market_slug TEXT NOT NULL,
    question    TEXT,
    side        TEXT NOT NULL,
    entry_price REAL NOT NULL,
    exit_price  REAL NOT NULL,
    shares      REAL NOT NULL,
    cost        REAL NOT NULL,
    proceeds    REAL NOT NULL,
    pnl         REAL NOT NULL,
    status      TEXT NOT NULL,
    opened_at   TEXT NOT NULL,
    closed_at   TEXT NOT NULL
);

-- Snapshots: una fila por captura + sus observaciones
CREATE TABLE IF NOT EXISTS snapshots (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    captured_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_markets (
    snapshot_id INTEGER NOT NULL,
    slug        TEXT    NOT NULL,
    question    TEXT,
    price       REAL,
    volume      REAL NOT NULL DEFAULT 0,
    liquidity   REAL NOT NULL DEFAULT 0
);

-- Último scan de señales (solo se retiene el último)
CREATE TABLE IF NOT EXISTS signals (
    scanned_at   TEXT NOT NULL,
    slug         TEXT NOT NULL,
    question     TEXT,
    old_price    REAL NOT NULL,
    new_price    REAL NOT NULL,
    price_delta  REAL NOT NULL,
    volume_ratio REAL NOT NULL,
    direction    TEXT NOT NULL,
    price_spike  INTEGER NOT NULL,
    vol_spike    INTEGER NOT NULL,
    volume       REAL NOT NULL DEFAULT 0,
    liquidity    REAL NOT NULL DEFAULT 0
);

-- Corpus histórico de mercados resueltos para backtests
CREATE TABLE IF NOT EXISTS historical_markets (
    slug             TEXT PRIMARY KEY,
    question         TEXT,
    last_trade_price REAL NOT NULL,
    one_day_change   REAL NOT NULL,
    volume           REAL NOT NULL DEFAULT 0,
    liquidity        REAL NOT NULL DEFAULT 0,
    resolved_yes     INTEGER NOT NULL,
    captured_at      TEXT NOT NULL,
    end_date         TEXT
);

-- Resultados de backtest: trade logs, curvas y summaries por run
CREATE TABLE IF NOT EXISTS backtest_runs (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    ran_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS backtest_trades (
    run_id      INTEGER NOT NULL,
    strategy    TEXT NOT NULL,
    market_slug TEXT NOT NULL,
    question    TEXT,
    side        TEXT NOT NULL,
    entry_price REAL NOT NULL,
    exit_price  REAL NOT NULL,
    shares      REAL NOT NULL,
    cost        REAL NOT NULL,
    proceeds    REAL NOT NULL,
    pnl         REAL NOT NULL,
    won         INTEGER NOT NULL,
    days_to_res REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS backtest_curves (
    run_id    INTEGER NOT NULL,
    strategy  TEXT    NOT NULL,
    point_idx INTEGER NOT NULL,
    date      TEXT    NOT NULL,
    equity    REAL    NOT NULL
);

CREATE TABLE IF NOT EXISTS backtest_summary (
    run_id       INTEGER NOT NULL,
    strategy     TEXT    NOT NULL,
    initial_cash REAL NOT NULL,
    final_cash   REAL NOT NULL,
    trades       INTEGER NOT NULL,
    wins         INTEGER NOT NULL,
    losses       INTEGER NOT NULL,
    realized_pnl REAL NOT NULL,
    roi          REAL NOT NULL,
    win_rate     REAL,
    sharpe       REAL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_at      ON snapshots(captured_at DESC);
CREATE INDEX IF NOT EXISTS idx_positions_strat   ON positions(strategy);
CREATE INDEX IF NOT EXISTS idx_closed_strat      ON closed_positions(strategy);
CREATE INDEX IF NOT EXISTS idx_bt_trades_run     ON backtest_trades(run_id);
`

// SQLiteStore implementa ports.Store usando SQLite.
type SQLiteStore struct {
	db                *sql.DB
	snapshotRetention int
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica el
// schema. snapshotRetention limita cuántos snapshots se retienen al guardar.
func NewSQLiteStore(path string, snapshotRetention int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	if snapshotRetention <= 0 {
		snapshotRetention = 48
	}
	return &SQLiteStore{db: db, snapshotRetention: snapshotRetention}, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullIfNaN convierte NaN en NULL para columnas REAL opcionales.
func nullIfNaN(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
