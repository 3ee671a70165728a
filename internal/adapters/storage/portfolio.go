package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"polysim/internal/domain"
)

const timeLayout = time.RFC3339Nano

// LoadPortfolio carga el portfolio y su versión actual. Si el documento no
// existe todavía lo crea con initialCash por estrategia y versión 0.
func (s *SQLiteStore) LoadPortfolio(ctx context.Context, initialCash float64) (*domain.Portfolio, int64, error) {
	var (
		version   int64
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, created_at FROM portfolio_meta WHERE id = 1`).
		Scan(&version, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p := domain.NewPortfolio(initialCash, time.Now().UTC())
		if err := s.initPortfolio(ctx, p); err != nil {
			return nil, 0, fmt.Errorf("storage.LoadPortfolio: init: %w", err)
		}
		return p, 0, nil
	case err != nil:
		return nil, 0, fmt.Errorf("storage.LoadPortfolio: meta: %w", err)
	}

	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, 0, fmt.Errorf("storage.LoadPortfolio: created_at %q: %w", createdAt, err)
	}

	p := &domain.Portfolio{
		Ledgers:   make(map[domain.Strategy]*domain.Ledger, len(domain.AllStrategies)),
		CreatedAt: created,
	}

	rows, err := s.db.QueryContext(ctx, `SELECT strategy, cash, initial_cash FROM ledgers`)
	if err != nil {
		return nil, 0, fmt.Errorf("storage.LoadPortfolio: ledgers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			strat string
			l     domain.Ledger
		)
		if err := rows.Scan(&strat, &l.Cash, &l.InitialCash); err != nil {
			return nil, 0, fmt.Errorf("storage.LoadPortfolio: scan ledger: %w", err)
		}
		p.Ledgers[domain.Strategy(strat)] = &l
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("storage.LoadPortfolio: ledgers: %w", err)
	}

	curves, err := s.db.QueryContext(ctx,
		`SELECT strategy, date, equity FROM equity_points ORDER BY strategy, point_idx`)
	if err != nil {
		return nil, 0, fmt.Errorf("storage.LoadPortfolio: curves: %w", err)
	}
	defer curves.Close()
	for curves.Next() {
		var (
			strat string
			pt    domain.EquityPoint
		)
		if err := curves.Scan(&strat, &pt.Date, &pt.Equity); err != nil {
			return nil, 0, fmt.Errorf("storage.LoadPortfolio: scan point: %w", err)
		}
		if l, ok := p.Ledgers[domain.Strategy(strat)]; ok {
			l.EquityCurve = append(l.EquityCurve, pt)
		}
	}
	if err := curves.Err(); err != nil {
		return nil, 0, fmt.Errorf("storage.LoadPortfolio: curves: %w", err)
	}

	return p, version, nil
}

// SavePortfolio persiste el portfolio si la versión no cambió desde la última
// lectura. Devuelve domain.ErrStoreConflict si otro proceso escribió antes.
func (s *SQLiteStore) SavePortfolio(ctx context.Context, p *domain.Portfolio, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePortfolio: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE portfolio_meta SET version = version + 1 WHERE id = 1 AND version = ?`,
		expectedVersion)
	if err != nil {
		return fmt.Errorf("storage.SavePortfolio: bump version: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage.SavePortfolio: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage.SavePortfolio: expected version %d: %w",
			expectedVersion, domain.ErrStoreConflict)
	}

	if err := writeLedgers(ctx, tx, p); err != nil {
		return fmt.Errorf("storage.SavePortfolio: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SavePortfolio: commit: %w", err)
	}
	return nil
}

// ResetPortfolio descarta todo el estado del simulador y arranca de cero:
// portfolio fresco, sin posiciones, sin historial ni snapshots.
func (s *SQLiteStore) ResetPortfolio(ctx context.Context, initialCash float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.ResetPortfolio: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"portfolio_meta", "ledgers", "equity_points",
		"positions", "closed_positions",
		"snapshots", "snapshot_markets", "signals",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("storage.ResetPortfolio: clear %s: %w", table, err)
		}
	}

	p := domain.NewPortfolio(initialCash, time.Now().UTC())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO portfolio_meta (id, version, created_at) VALUES (1, 0, ?)`,
		p.CreatedAt.Format(timeLayout)); err != nil {
		return fmt.Errorf("storage.ResetPortfolio: meta: %w", err)
	}
	if err := writeLedgers(ctx, tx, p); err != nil {
		return fmt.Errorf("storage.ResetPortfolio: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.ResetPortfolio: commit: %w", err)
	}
	return nil
}

// initPortfolio inserta un portfolio nuevo con versión 0.
func (s *SQLiteStore) initPortfolio(ctx context.Context, p *domain.Portfolio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO portfolio_meta (id, version, created_at) VALUES (1, 0, ?)`,
		p.CreatedAt.Format(timeLayout)); err != nil {
		return fmt.Errorf("meta: %w", err)
	}
	if err := writeLedgers(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

// writeLedgers reescribe ledgers y curvas de equity dentro de la transacción.
func writeLedgers(ctx context.Context, tx *sql.Tx, p *domain.Portfolio) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledgers`); err != nil {
		return fmt.Errorf("clear ledgers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM equity_points`); err != nil {
		return fmt.Errorf("clear curves: %w", err)
	}

	// Orden canónico para que los dumps sean deterministas
	for _, strat := range domain.AllStrategies {
		l, ok := p.Ledgers[strat]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledgers (strategy, cash, initial_cash) VALUES (?, ?, ?)`,
			string(strat), l.Cash, l.InitialCash); err != nil {
			return fmt.Errorf("insert ledger %s: %w", strat, err)
		}
		for i, pt := range l.EquityCurve {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO equity_points (strategy, point_idx, date, equity) VALUES (?, ?, ?, ?)`,
				string(strat), i, pt.Date, pt.Equity); err != nil {
				return fmt.Errorf("insert point %s/%d: %w", strat, i, err)
			}
		}
	}
	return nil
}
