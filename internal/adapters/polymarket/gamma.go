package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"polysim/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	gammaPageSize    = 100
)

// FetchMarketBySlug devuelve el mercado con el slug dado, o nil (sin error)
// si Gamma no lo conoce.
func (c *Client) FetchMarketBySlug(ctx context.Context, slug string) (*domain.MarketRecord, error) {
	url := fmt.Sprintf("%s%s?slug=%s", c.base, gammaMarketsPath, slug)

	var resp gammaMarketsResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("gamma.FetchMarketBySlug: %w", err)
	}
	if len(resp) == 0 {
		return nil, nil
	}

	record, err := toMarketRecord(resp[0])
	if err != nil {
		return nil, fmt.Errorf("gamma.FetchMarketBySlug %q: %w", slug, err)
	}
	return &record, nil
}

// FetchActiveMarkets devuelve hasta limit mercados activos ordenados por
// volumen descendente, para capturar snapshots.
func (c *Client) FetchActiveMarkets(ctx context.Context, limit int) ([]domain.MarketRecord, error) {
	markets := make([]domain.MarketRecord, 0, limit)
	skipped := 0

	for offset := 0; len(markets) < limit; offset += gammaPageSize {
		url := fmt.Sprintf("%s%s?active=true&closed=false&order=volumeNum&ascending=false&limit=%d&offset=%d",
			c.base, gammaMarketsPath, gammaPageSize, offset)

		var resp gammaMarketsResponse
		if err := c.get(ctx, url, &resp); err != nil {
			return nil, fmt.Errorf("gamma.FetchActiveMarkets: %w", err)
		}
		if len(resp) == 0 {
			break
		}

		for _, gm := range resp {
			record, err := toMarketRecord(gm)
			if err != nil {
				skipped++
				continue
			}
			markets = append(markets, record)
			if len(markets) == limit {
				break
			}
		}
	}

	if skipped > 0 {
		slog.Debug("active markets with unparseable outcomes skipped", "skipped", skipped)
	}
	return markets, nil
}

// FetchResolvedMarkets descarga el corpus histórico: mercados cerrados
// ordenados por fecha de resolución descendente, paginando hasta limit.
// Los mercados sin precio utilizable se saltan y cuentan.
func (c *Client) FetchResolvedMarkets(ctx context.Context, limit int) ([]domain.HistoricalMarket, error) {
	capturedAt := time.Now().UTC()
	corpus := make([]domain.HistoricalMarket, 0, limit)
	skipped := 0

	for offset := 0; len(corpus) < limit; offset += gammaPageSize {
		url := fmt.Sprintf("%s%s?closed=true&order=endDate&ascending=false&limit=%d&offset=%d",
			c.base, gammaMarketsPath, gammaPageSize, offset)

		var resp gammaMarketsResponse
		if err := c.get(ctx, url, &resp); err != nil {
			return nil, fmt.Errorf("gamma.FetchResolvedMarkets: %w", err)
		}
		if len(resp) == 0 {
			break
		}

		for _, gm := range resp {
			hist, ok := toHistorical(gm, capturedAt)
			if !ok {
				skipped++
				continue
			}
			corpus = append(corpus, hist)
			if len(corpus) == limit {
				break
			}
		}
	}

	slog.Info("historical corpus fetched", "markets", len(corpus), "skipped", skipped)
	return corpus, nil
}

// Snapshot captura el estado actual de los top mercados por volumen.
func (c *Client) Snapshot(ctx context.Context, limit int) (domain.Snapshot, error) {
	records, err := c.FetchActiveMarkets(ctx, limit)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{
		CapturedAt: time.Now().UTC(),
		Markets:    make([]domain.Observation, 0, len(records)),
	}
	for _, r := range records {
		yes := r.Price(domain.SideYes)
		obs := domain.Observation{
			Slug:      r.Slug,
			Question:  r.Question,
			Price:     yes,
			Volume:    r.Volume,
			Liquidity: r.Liquidity,
		}
		snap.Markets = append(snap.Markets, obs)
	}
	return snap, nil
}
