package backtest

import (
	"math"

	"polysim/internal/domain"
)

// Buckets de timing de entrada del case study: cuánto antes de la
// resolución se habría entrado al mercado.
var windowDefs = []struct {
	label   string
	minDays float64
	maxDays float64 // 0 = sin tope
}{
	{">30d", 30, 0},
	{"14-30d", 14, 30},
	{"7-14d", 7, 14},
	{"3-7d", 3, 7},
	{"1-3d", 1, 3},
}

// AggregateTimingWindows agrupa los trades por ventana entrada→resolución.
// Trades a menos de un día de la resolución quedan fuera de todos los buckets.
func AggregateTimingWindows(trades []domain.BacktestTrade) []domain.TimingWindow {
	windows := make([]domain.TimingWindow, len(windowDefs))
	for i, def := range windowDefs {
		windows[i] = domain.TimingWindow{Label: def.label, MinDays: def.minDays, MaxDays: def.maxDays}
	}

	for _, t := range trades {
		for i, def := range windowDefs {
			if t.DaysToResolution < def.minDays {
				continue
			}
			if def.maxDays > 0 && t.DaysToResolution >= def.maxDays {
				continue
			}
			windows[i].Trades++
			windows[i].PnL += t.PnL
			if t.Won {
				windows[i].Wins++
			}
			break
		}
	}

	for i := range windows {
		if windows[i].Trades > 0 {
			windows[i].WinRate = float64(windows[i].Wins) / float64(windows[i].Trades) * 100
		} else {
			windows[i].WinRate = math.NaN()
		}
	}
	return windows
}
