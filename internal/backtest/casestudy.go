package backtest

import (
	"log/slog"

	"polysim/internal/domain"
)

// CaseStudy es un backtest sobre un subconjunto curado del corpus, con la
// agregación por ventana de timing añadida al resultado.
type CaseStudy struct {
	Result  *Result
	Windows []domain.TimingWindow
}

// RunCaseStudy filtra el corpus a los slugs curados (una lista vacía usa el
// corpus completo) y ejecuta el replay.
func (r *Replayer) RunCaseStudy(markets []domain.HistoricalMarket, slugs []string) *CaseStudy {
	subset := markets
	if len(slugs) > 0 {
		want := make(map[string]bool, len(slugs))
		for _, s := range slugs {
			want[s] = true
		}
		subset = subset[:0:0]
		for _, m := range markets {
			if want[m.Slug] {
				subset = append(subset, m)
			}
		}
		slog.Info("case study corpus filtered",
			"curated", len(slugs),
			"matched", len(subset),
			"total", len(markets),
		)
	}

	result := r.Run(subset)
	return &CaseStudy{
		Result:  result,
		Windows: AggregateTimingWindows(result.Trades),
	}
}
