package domain

import (
	"strings"
	"time"
)

// Side es uno de los dos legs de un mercado binario.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Opposite devuelve el leg contrario.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// ParseSide normaliza el input del CLI ("yes", "Yes", "YES").
func ParseSide(raw string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "YES":
		return SideYes, true
	case "NO":
		return SideNo, true
	}
	return "", false
}

// MarketRecord es la vista que el Market Data Provider expone de un mercado.
// Outcomes y OutcomePrices son arrays paralelos tal como los devuelve Gamma;
// para mercados binarios los precios suman 1.
type MarketRecord struct {
	Slug              string
	Question          string
	Outcomes          []string
	OutcomePrices     []float64
	Resolved          bool
	Closed            bool
	ResolutionOutcome string // "Yes" | "No" | "" si no está resuelto
	Volume            float64
	Liquidity         float64
	EndDate           time.Time
}

// Price devuelve el precio del outcome cuyo nombre coincide (case-insensitive)
// con el side dado, o nil si el outcome no existe o los arrays no cuadran.
func (m MarketRecord) Price(side Side) *float64 {
	want := strings.ToLower(string(side))
	for i, name := range m.Outcomes {
		if i >= len(m.OutcomePrices) {
			break
		}
		if strings.ToLower(strings.TrimSpace(name)) == want {
			p := m.OutcomePrices[i]
			return &p
		}
	}
	return nil
}

// Closeable indica si el mercado está listo para el batch resolve.
func (m MarketRecord) Closeable() bool {
	return m.Resolved || m.Closed
}

// WonBy compara el resolution outcome declarado con un side.
// El segundo valor es false si el provider no declaró outcome.
func (m MarketRecord) WonBy(side Side) (won, stated bool) {
	out := strings.ToUpper(strings.TrimSpace(m.ResolutionOutcome))
	if out == "" {
		return false, false
	}
	return out == string(side), true
}
