package engine

import (
	"math"
	"sort"

	"polysim/internal/domain"
)

const (
	sharpeMinPoints  = 3
	sharpeAnnualizer = 252 // días de trading por año
	sharpeClampAbs   = 10  // solo en la variante de backtest
)

// Metrics deriva las métricas live de una estrategia a partir de su ledger,
// sus posiciones abiertas y el historial de cierres completo.
func (m *Manager) Metrics(s domain.Strategy) (domain.StrategyMetrics, error) {
	ledger, err := m.portfolio.Ledger(s)
	if err != nil {
		return domain.StrategyMetrics{}, err
	}

	var openValue, openCost float64
	var openCount int
	for _, p := range m.positions {
		if p.Strategy != s {
			continue
		}
		openValue += p.MarketValue()
		openCost += p.Cost
		openCount++
	}

	var realized float64
	var wins, losses, closedCount int
	for _, rec := range m.allClosed() {
		if rec.Strategy != s {
			continue
		}
		realized += rec.PnL
		closedCount++
		if rec.PnL > 0 {
			wins++
		} else {
			losses++
		}
	}

	unrealized := openValue - openCost

	winRate := math.NaN()
	if wins+losses > 0 {
		winRate = float64(wins) / float64(wins+losses) * 100
	}

	return domain.StrategyMetrics{
		Strategy:      s,
		Cash:          ledger.Cash,
		Equity:        ledger.Cash + openValue,
		OpenValue:     openValue,
		OpenCost:      openCost,
		UnrealizedPnL: unrealized,
		RealizedPnL:   realized,
		ROI:           (realized + unrealized) / ledger.InitialCash * 100,
		WinRate:       winRate,
		Sharpe:        SharpeRatio(ledger.EquityCurve, false),
		Wins:          wins,
		Losses:        losses,
		OpenCount:     openCount,
		ClosedCount:   closedCount,
	}, nil
}

// MetricsAll devuelve las métricas de las cinco estrategias ordenadas por
// ROI descendente: el leaderboard.
func (m *Manager) MetricsAll() []domain.StrategyMetrics {
	out := make([]domain.StrategyMetrics, 0, len(domain.AllStrategies))
	for _, s := range domain.AllStrategies {
		metrics, err := m.Metrics(s)
		if err != nil {
			continue
		}
		out = append(out, metrics)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ROI > out[j].ROI })
	return out
}

func (m *Manager) allClosed() []domain.ClosedRecord {
	if len(m.closedNew) == 0 {
		return m.history
	}
	all := make([]domain.ClosedRecord, 0, len(m.history)+len(m.closedNew))
	all = append(all, m.history...)
	all = append(all, m.closedNew...)
	return all
}

// SharpeRatio calcula el Sharpe anualizado de una curva de equity:
// media/desviación de los returns período a período × √252. Devuelve NaN
// con menos de 3 puntos o desviación ≈ 0. clamp limita los returns a
// [-10, 10] en la variante de backtest, donde curvas finas producen
// artefactos extremos.
func SharpeRatio(curve []domain.EquityPoint, clamp bool) float64 {
	if len(curve) < sharpeMinPoints {
		return math.NaN()
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	if len(returns) < 2 {
		return math.NaN()
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	std := math.Sqrt(variance / float64(len(returns)))
	if std < 1e-9 {
		return math.NaN()
	}

	sharpe := mean / std * math.Sqrt(sharpeAnnualizer)
	if clamp {
		sharpe = math.Max(-sharpeClampAbs, math.Min(sharpeClampAbs, sharpe))
	}
	return sharpe
}
