package storage

import (
	"context"
	"fmt"
	"time"

	"polysim/internal/domain"
)

// SaveHistoricalMarkets upserta el corpus de mercados resueltos, keyed por
// slug: re-fetchear no duplica filas, refresca los datos.
func (s *SQLiteStore) SaveHistoricalMarkets(ctx context.Context, markets []domain.HistoricalMarket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveHistoricalMarkets: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO historical_markets (slug, question, last_trade_price,
		    one_day_change, volume, liquidity, resolved_yes, captured_at, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
		    question = excluded.question,
		    last_trade_price = excluded.last_trade_price,
		    one_day_change = excluded.one_day_change,
		    volume = excluded.volume,
		    liquidity = excluded.liquidity,
		    resolved_yes = excluded.resolved_yes,
		    captured_at = excluded.captured_at,
		    end_date = excluded.end_date`)
	if err != nil {
		return fmt.Errorf("storage.SaveHistoricalMarkets: prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range markets {
		var endDate any
		if !m.EndDate.IsZero() {
			endDate = m.EndDate.Format(timeLayout)
		}
		if _, err := stmt.ExecContext(ctx, m.Slug, m.Question, m.LastTradePrice,
			m.OneDayChange, m.Volume, m.Liquidity, boolInt(m.ResolvedYes),
			m.CapturedAt.Format(timeLayout), endDate); err != nil {
			return fmt.Errorf("storage.SaveHistoricalMarkets: upsert %s: %w", m.Slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveHistoricalMarkets: commit: %w", err)
	}
	return nil
}

// LoadHistoricalMarkets devuelve el corpus completo ordenado por slug.
func (s *SQLiteStore) LoadHistoricalMarkets(ctx context.Context) ([]domain.HistoricalMarket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, question, last_trade_price, one_day_change, volume,
		       liquidity, resolved_yes, captured_at, end_date
		FROM historical_markets ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadHistoricalMarkets: %w", err)
	}
	defer rows.Close()

	var markets []domain.HistoricalMarket
	for rows.Next() {
		var (
			m          domain.HistoricalMarket
			resolved   int
			capturedAt string
			endDate    *string
		)
		if err := rows.Scan(&m.Slug, &m.Question, &m.LastTradePrice,
			&m.OneDayChange, &m.Volume, &m.Liquidity, &resolved,
			&capturedAt, &endDate); err != nil {
			return nil, fmt.Errorf("storage.LoadHistoricalMarkets: scan: %w", err)
		}
		m.ResolvedYes = resolved != 0
		if m.CapturedAt, err = time.Parse(timeLayout, capturedAt); err != nil {
			return nil, fmt.Errorf("storage.LoadHistoricalMarkets: captured_at %q: %w", capturedAt, err)
		}
		if endDate != nil {
			if m.EndDate, err = time.Parse(timeLayout, *endDate); err != nil {
				return nil, fmt.Errorf("storage.LoadHistoricalMarkets: end_date %q: %w", *endDate, err)
			}
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.LoadHistoricalMarkets: %w", err)
	}
	return markets, nil
}

// SaveBacktestRun persiste un run completo: trade log, curvas y summaries.
// WinRate y Sharpe pueden ser NaN; se almacenan como NULL.
func (s *SQLiteStore) SaveBacktestRun(ctx context.Context, at time.Time,
	trades []domain.BacktestTrade, curves map[domain.Strategy][]domain.EquityPoint,
	summaries []domain.BacktestSummary) error {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveBacktestRun: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO backtest_runs (ran_at) VALUES (?)`,
		at.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("storage.SaveBacktestRun: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage.SaveBacktestRun: last id: %w", err)
	}

	tradeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO backtest_trades (run_id, strategy, market_slug, question,
		    side, entry_price, exit_price, shares, cost, proceeds, pnl, won,
		    days_to_res)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveBacktestRun: prepare trades: %w", err)
	}
	defer tradeStmt.Close()

	for _, t := range trades {
		if _, err := tradeStmt.ExecContext(ctx, runID, string(t.Strategy),
			t.MarketSlug, t.Question, string(t.Side), t.EntryPrice, t.ExitPrice,
			t.Shares, t.Cost, t.Proceeds, t.PnL, boolInt(t.Won),
			t.DaysToResolution); err != nil {
			return fmt.Errorf("storage.SaveBacktestRun: insert trade %s: %w", t.MarketSlug, err)
		}
	}

	for _, strat := range domain.AllStrategies {
		for i, pt := range curves[strat] {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO backtest_curves (run_id, strategy, point_idx, date, equity)
				VALUES (?, ?, ?, ?, ?)`,
				runID, string(strat), i, pt.Date, pt.Equity); err != nil {
				return fmt.Errorf("storage.SaveBacktestRun: insert curve %s/%d: %w", strat, i, err)
			}
		}
	}

	for _, sum := range summaries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO backtest_summary (run_id, strategy, initial_cash,
			    final_cash, trades, wins, losses, realized_pnl, roi, win_rate, sharpe)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, string(sum.Strategy), sum.InitialCash, sum.FinalCash,
			sum.Trades, sum.Wins, sum.Losses, sum.RealizedPnL, sum.ROI,
			nullIfNaN(sum.WinRate), nullIfNaN(sum.Sharpe)); err != nil {
			return fmt.Errorf("storage.SaveBacktestRun: insert summary %s: %w", sum.Strategy, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveBacktestRun: commit: %w", err)
	}
	return nil
}
