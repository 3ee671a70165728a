package domain

import "time"

// PositionStatus es el estado del ciclo de vida de una posición.
// Máquina de estados: open → {sold | won | lost}, los tres finales.
type PositionStatus string

const (
	PositionOpen PositionStatus = "open"
	PositionSold PositionStatus = "sold"
	PositionWon  PositionStatus = "won"
	PositionLost PositionStatus = "lost"
)

// Position es una posición abierta, propiedad exclusiva de una estrategia.
// Invariante: Shares == Cost/EntryPrice (tolerancia 1e-4) al abrir;
// Cost es el capital comprometido y nunca cambia después del open.
type Position struct {
	ID           string
	Strategy     Strategy
	MarketSlug   string
	Question     string
	Side         Side
	EntryPrice   float64
	CurrentPrice float64
	Shares       float64
	Cost         float64
	OpenedAt     time.Time
}

// MarketValue es el valor actual de la posición: shares × precio actual,
// cayendo al precio de entrada si nunca se refrescó.
func (p Position) MarketValue() float64 {
	price := p.CurrentPrice
	if price == 0 {
		price = p.EntryPrice
	}
	return p.Shares * price
}

// ClosedRecord es una posición transformada al cierre. Inmutable.
type ClosedRecord struct {
	ID         string
	Strategy   Strategy
	MarketSlug string
	Question   string
	Side       Side
	EntryPrice float64
	ExitPrice  float64
	Shares     float64
	Cost       float64
	Proceeds   float64 // shares × exitPrice
	PnL        float64 // proceeds − cost
	Status     PositionStatus
	OpenedAt   time.Time
	ClosedAt   time.Time
}

// Close convierte la posición en su ClosedRecord terminal.
func (p Position) Close(exitPrice float64, status PositionStatus, at time.Time) ClosedRecord {
	proceeds := p.Shares * exitPrice
	return ClosedRecord{
		ID:         p.ID,
		Strategy:   p.Strategy,
		MarketSlug: p.MarketSlug,
		Question:   p.Question,
		Side:       p.Side,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		Shares:     p.Shares,
		Cost:       p.Cost,
		Proceeds:   proceeds,
		PnL:        proceeds - p.Cost,
		Status:     status,
		OpenedAt:   p.OpenedAt,
		ClosedAt:   at,
	}
}
