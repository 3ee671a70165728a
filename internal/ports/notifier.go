package ports

import "polysim/internal/domain"

// Notifier presenta el estado del simulador al usuario.
type Notifier interface {
	// PrintStatus muestra el leaderboard por estrategia y las posiciones abiertas.
	PrintStatus(metrics []domain.StrategyMetrics, positions []domain.Position)

	// PrintSignals muestra las señales del último scan, ordenadas por |priceDelta|.
	PrintSignals(signals []domain.Signal)

	// PrintBacktest muestra el summary por estrategia de un backtest.
	PrintBacktest(summaries []domain.BacktestSummary)

	// PrintTimingWindows muestra la agregación por ventana de entrada del case study.
	PrintTimingWindows(windows []domain.TimingWindow)
}
