package engine

import (
	"log/slog"
)

// AutoBetResult resume una pasada de auto-betting.
type AutoBetResult struct {
	Proposals int
	Opened    int
	Skipped   int
}

// AutoBet corre las cinco estrategias sobre la vista de mercado dada y
// ejecuta los proposals resultantes. momentum y contrarian consumen las
// señales; status_quo, cheap_contracts y el arb proxy leen el snapshot live.
func (m *Manager) AutoBet(view MarketView) AutoBetResult {
	var result AutoBetResult

	for _, rule := range NewRules(m.cfg) {
		ledger, err := m.portfolio.Ledger(rule.Strategy())
		if err != nil {
			continue
		}

		proposals := rule.Propose(view, ledger.Cash)
		result.Proposals += len(proposals)

		opened, skipped := m.ExecuteProposals(proposals)
		result.Opened += opened
		result.Skipped += skipped

		slog.Info("strategy pass complete",
			"strategy", rule.Strategy(),
			"proposals", len(proposals),
			"opened", opened,
			"skipped", skipped,
		)
	}

	return result
}
