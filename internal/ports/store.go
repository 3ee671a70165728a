package ports

import (
	"context"
	"time"

	"polysim/internal/domain"
)

// Store persiste el estado del simulador: un schema conceptual por concern.
// Cada comando es un ciclo read-mutate-write; el portfolio lleva un version
// stamp y SavePortfolio falla con domain.ErrStoreConflict si otro proceso
// escribió entre medias, en vez de corromper estado.
type Store interface {
	// Portfolio. LoadPortfolio crea el documento con initialCash si no existe.
	LoadPortfolio(ctx context.Context, initialCash float64) (*domain.Portfolio, int64, error)
	SavePortfolio(ctx context.Context, p *domain.Portfolio, expectedVersion int64) error
	ResetPortfolio(ctx context.Context, initialCash float64) error

	// Posiciones abiertas, en orden de apertura.
	LoadPositions(ctx context.Context) ([]domain.Position, error)
	SavePositions(ctx context.Context, positions []domain.Position) error

	// Historial de cierres, append-only.
	LoadClosed(ctx context.Context) ([]domain.ClosedRecord, error)
	AppendClosed(ctx context.Context, records []domain.ClosedRecord) error

	// Snapshots. GetRecentSnapshots devuelve los n más recientes,
	// el más nuevo primero.
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
	GetRecentSnapshots(ctx context.Context, n int) ([]domain.Snapshot, error)

	// Último scan de señales (solo se retiene el último).
	SaveSignalScan(ctx context.Context, at time.Time, signals []domain.Signal) error

	// Corpus histórico para backtests.
	SaveHistoricalMarkets(ctx context.Context, markets []domain.HistoricalMarket) error
	LoadHistoricalMarkets(ctx context.Context) ([]domain.HistoricalMarket, error)

	// Resultados de backtest: trade logs, curvas y summary por estrategia.
	SaveBacktestRun(ctx context.Context, at time.Time, trades []domain.BacktestTrade,
		curves map[domain.Strategy][]domain.EquityPoint, summaries []domain.BacktestSummary) error

	Close() error
}
