package storage

import (
	"context"
	"fmt"
	"time"

	"polysim/internal/domain"
)

// LoadPositions devuelve las posiciones abiertas en orden de apertura.
func (s *SQLiteStore) LoadPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, market_slug, question, side,
		       entry_price, current_price, shares, cost, opened_at
		FROM positions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadPositions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var (
			p                      domain.Position
			strat, side, openedAt string
		)
		if err := rows.Scan(&p.ID, &strat, &p.MarketSlug, &p.Question, &side,
			&p.EntryPrice, &p.CurrentPrice, &p.Shares, &p.Cost, &openedAt); err != nil {
			return nil, fmt.Errorf("storage.LoadPositions: scan: %w", err)
		}
		p.Strategy = domain.Strategy(strat)
		p.Side = domain.Side(side)
		if p.OpenedAt, err = time.Parse(timeLayout, openedAt); err != nil {
			return nil, fmt.Errorf("storage.LoadPositions: opened_at %q: %w", openedAt, err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.LoadPositions: %w", err)
	}
	return positions, nil
}

// SavePositions reemplaza el conjunto completo de posiciones abiertas,
// preservando el orden del slice (rowid = orden de inserción).
func (s *SQLiteStore) SavePositions(ctx context.Context, positions []domain.Position) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePositions: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("storage.SavePositions: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions (id, strategy, market_slug, question, side,
		                       entry_price, current_price, shares, cost, opened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SavePositions: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, p.ID, string(p.Strategy), p.MarketSlug,
			p.Question, string(p.Side), p.EntryPrice, p.CurrentPrice,
			p.Shares, p.Cost, p.OpenedAt.Format(timeLayout)); err != nil {
			return fmt.Errorf("storage.SavePositions: insert %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SavePositions: commit: %w", err)
	}
	return nil
}

// LoadClosed devuelve el historial de cierres completo, más antiguo primero.
func (s *SQLiteStore) LoadClosed(ctx context.Context) ([]domain.ClosedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, market_slug, question, side, entry_price, exit_price,
		       shares, cost, proceeds, pnl, status, opened_at, closed_at
		FROM closed_positions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadClosed: %w", err)
	}
	defer rows.Close()

	var records []domain.ClosedRecord
	for rows.Next() {
		var (
			r                                       domain.ClosedRecord
			strat, side, status, openedAt, closedAt string
		)
		if err := rows.Scan(&r.ID, &strat, &r.MarketSlug, &r.Question, &side,
			&r.EntryPrice, &r.ExitPrice, &r.Shares, &r.Cost, &r.Proceeds,
			&r.PnL, &status, &openedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("storage.LoadClosed: scan: %w", err)
		}
		r.Strategy = domain.Strategy(strat)
		r.Side = domain.Side(side)
		r.Status = domain.PositionStatus(status)
		if r.OpenedAt, err = time.Parse(timeLayout, openedAt); err != nil {
			return nil, fmt.Errorf("storage.LoadClosed: opened_at %q: %w", openedAt, err)
		}
		if r.ClosedAt, err = time.Parse(timeLayout, closedAt); err != nil {
			return nil, fmt.Errorf("storage.LoadClosed: closed_at %q: %w", closedAt, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.LoadClosed: %w", err)
	}
	return records, nil
}

// AppendClosed añade registros al historial. Append-only: nunca se borra.
func (s *SQLiteStore) AppendClosed(ctx context.Context, records []domain.ClosedRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.AppendClosed: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO closed_positions (id, strategy, market_slug, question, side,
		    entry_price, exit_price, shares, cost, proceeds, pnl, status,
		    opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.AppendClosed: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, string(r.Strategy), r.MarketSlug,
			r.Question, string(r.Side), r.EntryPrice, r.ExitPrice, r.Shares,
			r.Cost, r.Proceeds, r.PnL, string(r.Status),
			r.OpenedAt.Format(timeLayout), r.ClosedAt.Format(timeLayout)); err != nil {
			return fmt.Errorf("storage.AppendClosed: insert %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.AppendClosed: commit: %w", err)
	}
	return nil
}
