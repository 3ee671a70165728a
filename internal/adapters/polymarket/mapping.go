package polymarket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"polysim/internal/domain"
)

// toMarketRecord convierte un gammaMarket en la entidad de dominio.
// Devuelve error si los arrays de outcomes no son parseables: el caller
// decide si eso es fatal (open/close) o skip (batch).
func toMarketRecord(gm gammaMarket) (domain.MarketRecord, error) {
	outcomes, err := decodeStringArray(gm.Outcomes)
	if err != nil {
		return domain.MarketRecord{}, fmt.Errorf("%w: outcomes %q", domain.ErrInvalidPrice, gm.Outcomes)
	}
	prices, err := decodeFloatArray(gm.OutcomePrices)
	if err != nil {
		return domain.MarketRecord{}, fmt.Errorf("%w: outcomePrices %q", domain.ErrInvalidPrice, gm.OutcomePrices)
	}

	resolved := gm.UMAResolutionStatus == "resolved"

	record := domain.MarketRecord{
		Slug:              gm.Slug,
		Question:          gm.Question,
		Outcomes:          outcomes,
		OutcomePrices:     prices,
		Resolved:          resolved,
		Closed:            gm.Closed,
		ResolutionOutcome: resolutionOutcome(resolved, outcomes, prices),
		Volume:            numToFloat(gm.VolumeNum),
		Liquidity:         numToFloat(gm.LiquidityNum),
		EndDate:           parseEndDate(gm.EndDateISO),
	}
	return record, nil
}

// resolutionOutcome deriva el outcome declarado: Gamma no lo expone como
// campo propio, pero en mercados resueltos fija el precio del ganador en 1.
func resolutionOutcome(resolved bool, outcomes []string, prices []float64) string {
	if !resolved {
		return ""
	}
	for i, p := range prices {
		if i < len(outcomes) && p == 1 {
			return outcomes[i]
		}
	}
	return ""
}

// toHistorical convierte un mercado resuelto en una entrada del corpus.
// El segundo valor es false si el mercado no sirve para backtesting
// (sin precio, sin outcome binario claro).
func toHistorical(gm gammaMarket, capturedAt time.Time) (domain.HistoricalMarket, bool) {
	prices, err := decodeFloatArray(gm.OutcomePrices)
	if err != nil || len(prices) < 2 {
		return domain.HistoricalMarket{}, false
	}

	last := numToFloat(gm.LastTradePrice)
	if last <= 0 || last >= 1 {
		return domain.HistoricalMarket{}, false
	}

	return domain.HistoricalMarket{
		Slug:           gm.Slug,
		Question:       gm.Question,
		LastTradePrice: last,
		OneDayChange:   numToFloat(gm.OneDayPriceChange),
		Volume:         numToFloat(gm.VolumeNum),
		Liquidity:      numToFloat(gm.LiquidityNum),
		ResolvedYes:    prices[0] >= 0.5, // precio final YES: 1 ganó, 0 perdió
		CapturedAt:     capturedAt,
		EndDate:        parseEndDate(gm.EndDateISO),
	}, true
}

// decodeStringArray parsea el array double-encoded de Gamma: `["Yes","No"]`.
func decodeStringArray(raw string) ([]string, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty array")
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeFloatArray parsea `["0.45","0.55"]`: array de números como strings.
func decodeFloatArray(raw string) ([]float64, error) {
	items, err := decodeStringArray(raw)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, s := range items {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func numToFloat(n json.Number) float64 {
	v, _ := n.Float64()
	return v
}

func parseEndDate(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t
		}
	}
	return time.Time{}
}
