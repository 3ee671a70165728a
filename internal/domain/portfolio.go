package domain

import "time"

// EquityPoint es un punto de la curva de equity de un ledger.
// Date es la clave de compactación: en modo live es un día de calendario
// ("2006-01-02"); en backtests es un índice de trade, un punto por trade.
type EquityPoint struct {
	Date   string
	Equity float64
}

// Ledger es el balance de una estrategia: cash disponible, capital inicial
// inmutable y la curva de equity ordenada por fecha.
type Ledger struct {
	Cash        float64
	InitialCash float64
	EquityCurve []EquityPoint
}

// RecordEquity añade un punto (date, equity) a la curva. Si el último punto
// ya tiene esa fecha lo sobreescribe en vez de añadir: como máximo un punto
// por fecha de calendario.
func (l *Ledger) RecordEquity(date string, equity float64) {
	if n := len(l.EquityCurve); n > 0 && l.EquityCurve[n-1].Date == date {
		l.EquityCurve[n-1].Equity = equity
		return
	}
	l.EquityCurve = append(l.EquityCurve, EquityPoint{Date: date, Equity: equity})
}

// Portfolio mapea cada estrategia a su ledger. Source of truth del capital.
type Portfolio struct {
	Ledgers   map[Strategy]*Ledger
	CreatedAt time.Time
}

// NewPortfolio crea un portfolio con los cinco ledgers, cada uno arrancando
// con initialCash.
func NewPortfolio(initialCash float64, now time.Time) *Portfolio {
	p := &Portfolio{
		Ledgers:   make(map[Strategy]*Ledger, len(AllStrategies)),
		CreatedAt: now,
	}
	for _, s := range AllStrategies {
		p.Ledgers[s] = &Ledger{Cash: initialCash, InitialCash: initialCash}
	}
	return p
}

// Ledger devuelve el ledger de la estrategia dada.
func (p *Portfolio) Ledger(s Strategy) (*Ledger, error) {
	l, ok := p.Ledgers[s]
	if !ok {
		return nil, ErrInvalidStrategy
	}
	return l, nil
}

// TotalInitial es la suma de capital inicial de todas las estrategias.
func (p *Portfolio) TotalInitial() float64 {
	var total float64
	for _, l := range p.Ledgers {
		total += l.InitialCash
	}
	return total
}

// CurveDate formatea un instante como clave de fecha de la curva live.
func CurveDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
