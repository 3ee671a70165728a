package domain

import "time"

// HistoricalMarket es un mercado resuelto del corpus de backtesting.
// LastTradePrice es el precio YES adyacente a la resolución; OneDayChange es
// el delta del último período. El precio de entrada sin look-ahead se estima
// como LastTradePrice − OneDayChange: el precio *antes* del movimiento final.
type HistoricalMarket struct {
	Slug         string
	Question     string
	LastTradePrice float64
	OneDayChange   float64
	Volume       float64
	Liquidity    float64
	ResolvedYes  bool
	CapturedAt   time.Time // cuándo se observó el dato (entrada simulada)
	EndDate      time.Time // cuándo resolvió el mercado
}

// EntryPrice devuelve el precio de entrada estimado sin look-ahead bias.
func (h HistoricalMarket) EntryPrice() float64 {
	return h.LastTradePrice - h.OneDayChange
}

// DaysToResolution es la distancia en días entre la entrada simulada y la
// resolución, usada para los buckets de timing del case study.
func (h HistoricalMarket) DaysToResolution() float64 {
	if h.EndDate.IsZero() || h.CapturedAt.IsZero() {
		return 0
	}
	return h.EndDate.Sub(h.CapturedAt).Hours() / 24
}
