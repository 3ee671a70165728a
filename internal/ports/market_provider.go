package ports

import (
	"context"

	"polysim/internal/domain"
)

// MarketProvider obtiene el estado actual de los mercados desde la API externa.
type MarketProvider interface {
	// FetchMarketBySlug devuelve el mercado con el slug dado,
	// o nil (sin error) si el provider no lo conoce.
	FetchMarketBySlug(ctx context.Context, slug string) (*domain.MarketRecord, error)

	// FetchActiveMarkets devuelve hasta limit mercados activos ordenados
	// por volumen, para capturar snapshots.
	FetchActiveMarkets(ctx context.Context, limit int) ([]domain.MarketRecord, error)

	// FetchResolvedMarkets descarga el corpus histórico de mercados resueltos
	// para backtesting. Pagina internamente hasta limit.
	FetchResolvedMarkets(ctx context.Context, limit int) ([]domain.HistoricalMarket, error)
}
