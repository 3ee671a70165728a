package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"polysim/internal/backtest"
)

func (a *app) cmdFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	limit := fs.Int("limit", a.cfg.Sim.HistoryLimit, "resolved markets to download")
	if err := fs.Parse(args); err != nil {
		return err
	}

	markets, err := a.client.FetchResolvedMarkets(ctx, *limit)
	if err != nil {
		return err
	}
	if err := a.store.SaveHistoricalMarkets(ctx, markets); err != nil {
		return err
	}

	slog.Info("historical corpus updated", "markets", len(markets))
	return nil
}

func (a *app) cmdBacktest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	cash := fs.Float64("cash", a.cfg.Sim.InitialCash, "initial cash per strategy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	markets, err := a.store.LoadHistoricalMarkets(ctx)
	if err != nil {
		return err
	}
	if len(markets) == 0 {
		slog.Warn("empty corpus — run fetch first")
		a.notifier.PrintBacktest(nil)
		return nil
	}

	replayer := backtest.NewReplayer(a.cfg.Engine, *cash)
	result := replayer.Run(markets)

	if err := a.store.SaveBacktestRun(ctx, time.Now().UTC(),
		result.Trades, result.Curves, result.Summaries); err != nil {
		return err
	}

	slog.Info("backtest complete", "markets", len(markets), "trades", len(result.Trades))
	a.notifier.PrintBacktest(result.Summaries)
	return nil
}

func (a *app) cmdCaseStudy(ctx context.Context) error {
	markets, err := a.store.LoadHistoricalMarkets(ctx)
	if err != nil {
		return err
	}
	if len(markets) == 0 {
		slog.Warn("empty corpus — run fetch first")
		return nil
	}

	replayer := backtest.NewReplayer(a.cfg.Engine, a.cfg.Sim.InitialCash)
	study := replayer.RunCaseStudy(markets, a.cfg.Sim.CaseStudySlugs)

	if err := a.store.SaveBacktestRun(ctx, time.Now().UTC(),
		study.Result.Trades, study.Result.Curves, study.Result.Summaries); err != nil {
		return err
	}

	a.notifier.PrintBacktest(study.Result.Summaries)
	a.notifier.PrintTimingWindows(study.Windows)
	return nil
}

func (a *app) cmdReset(ctx context.Context) error {
	if err := a.store.ResetPortfolio(ctx, a.cfg.Sim.InitialCash); err != nil {
		return err
	}
	slog.Info("simulator state reset", "initial_cash", a.cfg.Sim.InitialCash)
	return nil
}
