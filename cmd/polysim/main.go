package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"polysim/config"
	"polysim/internal/adapters/notify"
	"polysim/internal/adapters/polymarket"
	"polysim/internal/adapters/storage"
)

const usage = `polysim — multi-strategy prediction market paper trading simulator

Usage: polysim [flags] <command> [command flags]

Trading:
  open       open a position manually (-strategy -market -side -amount [-price])
  close      sell a position at market or given price (-id [-price])
  refresh    update current prices of all open positions
  resolve    settle positions whose markets have resolved
  status     print the strategy leaderboard and open positions

Data capture:
  snapshot   capture a snapshot of the tracked market universe
  scan       compare the two most recent snapshots and print signals
  autobet    run all five strategies over the latest signals and snapshot

Backtesting:
  fetch      download resolved markets into the historical corpus
  backtest   replay all strategies over the corpus
  casestudy  replay the curated corpus subset + entry timing analysis

Maintenance:
  reset      wipe simulator state and start over with fresh ledgers

Flags:
`

// app agrupa las dependencias compartidas por todos los comandos.
type app struct {
	cfg      *config.Config
	store    *storage.SQLiteStore
	client   *polymarket.Client
	notifier *notify.Console
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	args := flag.Args()[1:]

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN, cfg.Sim.SnapshotRetention)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	a := &app{
		cfg:      cfg,
		store:    store,
		client:   polymarket.NewClient(cfg.API.GammaBase),
		notifier: notify.NewConsole(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.run(ctx, command, args); err != nil {
		slog.Error("command failed", "command", command, "err", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "open":
		return a.cmdOpen(ctx, args)
	case "close":
		return a.cmdClose(ctx, args)
	case "refresh":
		return a.cmdRefresh(ctx)
	case "resolve":
		return a.cmdResolve(ctx)
	case "status":
		return a.cmdStatus(ctx)
	case "snapshot":
		return a.cmdSnapshot(ctx, args)
	case "scan":
		return a.cmdScan(ctx)
	case "autobet":
		return a.cmdAutoBet(ctx)
	case "fetch":
		return a.cmdFetch(ctx, args)
	case "backtest":
		return a.cmdBacktest(ctx, args)
	case "casestudy":
		return a.cmdCaseStudy(ctx)
	case "reset":
		return a.cmdReset(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
