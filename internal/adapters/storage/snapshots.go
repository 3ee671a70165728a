package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"polysim/internal/domain"
)

// SaveSnapshot persiste una captura y poda las más antiguas por encima del
// límite de retención configurado.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO snapshots (captured_at) VALUES (?)`,
		snap.CapturedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: last id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_markets (snapshot_id, slug, question, price, volume, liquidity)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range snap.Markets {
		var price any
		if m.Price != nil {
			price = *m.Price
		}
		if _, err := stmt.ExecContext(ctx, id, m.Slug, m.Question, price, m.Volume, m.Liquidity); err != nil {
			return fmt.Errorf("storage.SaveSnapshot: insert %s: %w", m.Slug, err)
		}
	}

	// Retención: se descartan snapshots fuera de los N más recientes
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM snapshot_markets WHERE snapshot_id NOT IN
		    (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
		s.snapshotRetention); err != nil {
		return fmt.Errorf("storage.SaveSnapshot: prune markets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN
		    (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
		s.snapshotRetention); err != nil {
		return fmt.Errorf("storage.SaveSnapshot: prune: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSnapshot: commit: %w", err)
	}
	return nil
}

// GetRecentSnapshots devuelve los n snapshots más recientes, el más nuevo
// primero. Con menos de n capturas devuelve las que haya.
func (s *SQLiteStore) GetRecentSnapshots(ctx context.Context, n int) ([]domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, captured_at FROM snapshots ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRecentSnapshots: %w", err)
	}
	defer rows.Close()

	type header struct {
		id int64
		at time.Time
	}
	var headers []header
	for rows.Next() {
		var (
			h  header
			at string
		)
		if err := rows.Scan(&h.id, &at); err != nil {
			return nil, fmt.Errorf("storage.GetRecentSnapshots: scan: %w", err)
		}
		if h.at, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("storage.GetRecentSnapshots: captured_at %q: %w", at, err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetRecentSnapshots: %w", err)
	}

	snapshots := make([]domain.Snapshot, 0, len(headers))
	for _, h := range headers {
		snap := domain.Snapshot{CapturedAt: h.at}
		markets, err := s.db.QueryContext(ctx, `
			SELECT slug, question, price, volume, liquidity
			FROM snapshot_markets WHERE snapshot_id = ? ORDER BY rowid`, h.id)
		if err != nil {
			return nil, fmt.Errorf("storage.GetRecentSnapshots: markets: %w", err)
		}
		for markets.Next() {
			var (
				obs   domain.Observation
				price sql.NullFloat64
			)
			if err := markets.Scan(&obs.Slug, &obs.Question, &price, &obs.Volume, &obs.Liquidity); err != nil {
				markets.Close()
				return nil, fmt.Errorf("storage.GetRecentSnapshots: scan market: %w", err)
			}
			if price.Valid {
				v := price.Float64
				obs.Price = &v
			}
			snap.Markets = append(snap.Markets, obs)
		}
		if err := markets.Err(); err != nil {
			markets.Close()
			return nil, fmt.Errorf("storage.GetRecentSnapshots: markets: %w", err)
		}
		markets.Close()
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// SaveSignalScan reemplaza el scan de señales almacenado por el más reciente.
// Las señales son derivadas de los snapshots, no source of truth.
func (s *SQLiteStore) SaveSignalScan(ctx context.Context, at time.Time, signals []domain.Signal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSignalScan: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM signals`); err != nil {
		return fmt.Errorf("storage.SaveSignalScan: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO signals (scanned_at, slug, question, old_price, new_price,
		    price_delta, volume_ratio, direction, price_spike, vol_spike,
		    volume, liquidity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveSignalScan: prepare: %w", err)
	}
	defer stmt.Close()

	atStr := at.Format(timeLayout)
	for _, sig := range signals {
		if _, err := stmt.ExecContext(ctx, atStr, sig.Slug, sig.Question,
			sig.OldPrice, sig.NewPrice, sig.PriceDelta, sig.VolumeRatio,
			string(sig.Direction), boolInt(sig.IsPriceSpike), boolInt(sig.IsVolSpike),
			sig.Volume, sig.Liquidity); err != nil {
			return fmt.Errorf("storage.SaveSignalScan: insert %s: %w", sig.Slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSignalScan: commit: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
