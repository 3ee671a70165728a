package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"polysim/internal/domain"
	"polysim/internal/engine"
)

func (a *app) cmdSnapshot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	limit := fs.Int("limit", a.cfg.Sim.SnapshotLimit, "markets per snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := a.client.Snapshot(ctx, *limit)
	if err != nil {
		return err
	}
	if err := a.store.SaveSnapshot(ctx, snap); err != nil {
		return err
	}

	slog.Info("snapshot captured",
		"markets", len(snap.Markets),
		"at", snap.CapturedAt.Format(time.RFC3339),
	)
	return nil
}

// latestSignals compara los dos snapshots más recientes. Con menos de dos
// capturas devuelve una lista vacía y un snapshot nil.
func (a *app) latestSignals(ctx context.Context) ([]domain.Signal, *domain.Snapshot, error) {
	snapshots, err := a.store.GetRecentSnapshots(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	if len(snapshots) < 2 {
		slog.Warn("not enough snapshots for signal detection", "have", len(snapshots))
		if len(snapshots) == 1 {
			return nil, &snapshots[0], nil
		}
		return nil, nil, nil
	}

	// GetRecentSnapshots devuelve el más nuevo primero
	newer, older := snapshots[0], snapshots[1]
	signals := engine.DetectSignals(a.cfg.Engine, older, newer)
	engine.RankSignals(signals)
	return signals, &newer, nil
}

func (a *app) cmdScan(ctx context.Context) error {
	signals, _, err := a.latestSignals(ctx)
	if err != nil {
		return err
	}

	if len(signals) > 0 {
		if err := a.store.SaveSignalScan(ctx, time.Now().UTC(), signals); err != nil {
			return err
		}
	}

	a.notifier.PrintSignals(signals)
	return nil
}

func (a *app) cmdAutoBet(ctx context.Context) error {
	signals, snapshot, err := a.latestSignals(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil {
		slog.Warn("no snapshots yet — run snapshot first")
		return nil
	}

	manager, portfolio, version, err := a.loadManager(ctx)
	if err != nil {
		return err
	}

	result := manager.AutoBet(engine.MarketView{Signals: signals, Snapshot: snapshot})
	slog.Info("autobet cycle complete",
		"proposals", result.Proposals,
		"opened", result.Opened,
		"skipped", result.Skipped,
	)

	return a.saveManager(ctx, manager, portfolio, version)
}
