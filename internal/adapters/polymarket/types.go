package polymarket

import "encoding/json"

// DTOs raw de la API Gamma. Solo se usan dentro de este paquete;
// la conversión a domain entities se hace en mapping.go.

// gammaMarketsResponse es la respuesta de GET /markets.
type gammaMarketsResponse []gammaMarket

// gammaMarket es un mercado tal como lo devuelve Gamma. Varios campos
// numéricos llegan como strings JSON (json.Number los cubre) y los arrays
// de outcomes llegan double-encoded: un string que contiene un array JSON.
type gammaMarket struct {
	Slug              string      `json:"slug"`
	Question          string      `json:"question"`
	Outcomes          string      `json:"outcomes"`      // `["Yes","No"]`
	OutcomePrices     string      `json:"outcomePrices"` // `["0.45","0.55"]`
	Active            bool        `json:"active"`
	Closed            bool        `json:"closed"`
	UMAResolutionStatus string    `json:"umaResolutionStatus"` // "resolved" cuando UMA cerró
	VolumeNum         json.Number `json:"volumeNum"`
	LiquidityNum      json.Number `json:"liquidityNum"`
	LastTradePrice    json.Number `json:"lastTradePrice"`
	OneDayPriceChange json.Number `json:"oneDayPriceChange"`
	EndDateISO        string      `json:"endDateIso"`
}
