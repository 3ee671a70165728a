package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"polysim/internal/domain"
	"polysim/internal/engine"
)

// loadManager carga portfolio, posiciones y historial del store y construye
// el Manager. Devuelve también la versión del portfolio para el write-back.
func (a *app) loadManager(ctx context.Context) (*engine.Manager, *domain.Portfolio, int64, error) {
	portfolio, version, err := a.store.LoadPortfolio(ctx, a.cfg.Sim.InitialCash)
	if err != nil {
		return nil, nil, 0, err
	}
	positions, err := a.store.LoadPositions(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	closed, err := a.store.LoadClosed(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	return engine.NewManager(a.cfg.Engine, portfolio, positions, closed), portfolio, version, nil
}

// saveManager persiste el estado mutado: portfolio con check de versión,
// posiciones abiertas y los cierres nuevos de esta invocación.
func (a *app) saveManager(ctx context.Context, m *engine.Manager, p *domain.Portfolio, version int64) error {
	if err := a.store.SavePortfolio(ctx, p, version); err != nil {
		return err
	}
	if err := a.store.SavePositions(ctx, m.Positions()); err != nil {
		return err
	}
	return a.store.AppendClosed(ctx, m.NewlyClosed())
}

func (a *app) cmdOpen(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	strategyName := fs.String("strategy", "", "strategy that owns the position")
	slug := fs.String("market", "", "market slug")
	sideName := fs.String("side", "YES", "YES or NO")
	amount := fs.Float64("amount", 0, "cash to commit")
	price := fs.Float64("price", 0, "entry price (0 = fetch from market)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	strategy, err := domain.ParseStrategy(*strategyName)
	if err != nil {
		return err
	}
	side, ok := domain.ParseSide(*sideName)
	if !ok {
		return fmt.Errorf("open: invalid side %q", *sideName)
	}
	if *slug == "" {
		return fmt.Errorf("open: -market is required")
	}

	market, err := a.client.FetchMarketBySlug(ctx, *slug)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if market == nil {
		return fmt.Errorf("open %s: %w", *slug, domain.ErrMarketNotFound)
	}

	entry := *price
	if entry == 0 {
		p := market.Price(side)
		if p == nil {
			return fmt.Errorf("open %s: %w: no price for side %s", *slug, domain.ErrInvalidPrice, side)
		}
		entry = *p
	}

	manager, portfolio, version, err := a.loadManager(ctx)
	if err != nil {
		return err
	}

	pos, err := manager.Open(strategy, market.Slug, market.Question, side, entry, *amount)
	if err != nil {
		return err
	}

	slog.Info("position opened",
		"id", pos.ID,
		"strategy", strategy,
		"market", pos.MarketSlug,
		"side", side,
		"price", entry,
		"shares", pos.Shares,
		"cost", pos.Cost,
	)
	return a.saveManager(ctx, manager, portfolio, version)
}

func (a *app) cmdClose(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	id := fs.String("id", "", "position id to close")
	price := fs.Float64("price", 0, "exit price (0 = fetch from market)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("close: -id is required")
	}

	manager, portfolio, version, err := a.loadManager(ctx)
	if err != nil {
		return err
	}

	var exit *float64
	if *price != 0 {
		exit = price
	}
	record, err := manager.Sell(ctx, a.client, *id, exit)
	if err != nil {
		return err
	}

	slog.Info("position closed",
		"id", record.ID,
		"market", record.MarketSlug,
		"exit", record.ExitPrice,
		"pnl", record.PnL,
	)
	return a.saveManager(ctx, manager, portfolio, version)
}

func (a *app) cmdRefresh(ctx context.Context) error {
	manager, portfolio, version, err := a.loadManager(ctx)
	if err != nil {
		return err
	}

	updated, skipped := manager.Refresh(ctx, a.client)
	slog.Info("prices refreshed", "updated", updated, "skipped", skipped)

	return a.saveManager(ctx, manager, portfolio, version)
}

func (a *app) cmdResolve(ctx context.Context) error {
	manager, portfolio, version, err := a.loadManager(ctx)
	if err != nil {
		return err
	}

	resolved, skipped := manager.Resolve(ctx, a.client)
	slog.Info("markets resolved", "closed", resolved, "skipped", skipped)

	return a.saveManager(ctx, manager, portfolio, version)
}

func (a *app) cmdStatus(ctx context.Context) error {
	manager, _, _, err := a.loadManager(ctx)
	if err != nil {
		return err
	}

	a.notifier.PrintStatus(manager.MetricsAll(), manager.Positions())
	return nil
}
