package engine

import (
	"fmt"

	"polysim/config"
	"polysim/internal/domain"
)

// MarketView es lo que las reglas ven de un ciclo: las señales entre los dos
// últimos snapshots y el snapshot live. Las reglas son funciones puras sobre
// esta vista, sin acceso al ledger más allá del cash disponible.
type MarketView struct {
	Signals  []domain.Signal
	Snapshot *domain.Snapshot
}

// Rule es la capacidad común de las cinco estrategias: evaluar el estado del
// mercado y emitir trade proposals.
type Rule interface {
	Strategy() domain.Strategy
	Propose(view MarketView, cash float64) []domain.TradeProposal
}

// NewRule construye la regla de la estrategia dada. El switch es exhaustivo
// sobre el set cerrado: una estrategia desconocida es un error, no un nil.
func NewRule(s domain.Strategy, cfg config.EngineConfig) (Rule, error) {
	switch s {
	case domain.StrategyMomentum:
		return momentumRule{cfg}, nil
	case domain.StrategyContrarian:
		return contrarianRule{cfg}, nil
	case domain.StrategyStatusQuo:
		return statusQuoRule{cfg}, nil
	case domain.StrategyCheap:
		return cheapRule{cfg}, nil
	case domain.StrategyArb:
		return arbRule{cfg}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStrategy, s)
}

// NewRules construye las cinco reglas en orden canónico.
func NewRules(cfg config.EngineConfig) []Rule {
	rules := make([]Rule, 0, len(domain.AllStrategies))
	for _, s := range domain.AllStrategies {
		r, _ := NewRule(s, cfg)
		rules = append(rules, r)
	}
	return rules
}

// sidePrice devuelve el precio del side elegido dado el precio YES.
func sidePrice(side domain.Side, yesPrice float64) float64 {
	if side == domain.SideYes {
		return yesPrice
	}
	return 1 - yesPrice
}

// --- momentum: sigue los price spikes ---

type momentumRule struct{ cfg config.EngineConfig }

func (r momentumRule) Strategy() domain.Strategy { return domain.StrategyMomentum }

func (r momentumRule) Propose(view MarketView, cash float64) []domain.TradeProposal {
	return trendProposals(r.cfg, view, cash, domain.StrategyMomentum, false)
}

// --- contrarian: fadea los price spikes ---

type contrarianRule struct{ cfg config.EngineConfig }

func (r contrarianRule) Strategy() domain.Strategy { return domain.StrategyContrarian }

func (r contrarianRule) Propose(view MarketView, cash float64) []domain.TradeProposal {
	return trendProposals(r.cfg, view, cash, domain.StrategyContrarian, true)
}

// trendProposals implementa momentum y contrarian, que comparten trigger
// (price spike) y sizing; solo difieren en el side elegido.
func trendProposals(cfg config.EngineConfig, view MarketView, cash float64, strat domain.Strategy, fade bool) []domain.TradeProposal {
	amount := cash * cfg.TrendSizePct
	if amount > cfg.TrendMaxBet {
		amount = cfg.TrendMaxBet
	}
	if amount <= 0 {
		return nil
	}

	var out []domain.TradeProposal
	for _, sig := range view.Signals {
		if !sig.IsPriceSpike || sig.Direction == domain.DirectionFlat {
			continue
		}
		if domain.IsSportsMarket(sig.Question) {
			continue
		}

		side := domain.SideYes
		if sig.Direction == domain.DirectionDown {
			side = domain.SideNo
		}
		if fade {
			side = side.Opposite()
		}

		out = append(out, domain.TradeProposal{
			Strategy:   strat,
			MarketSlug: sig.Slug,
			Question:   sig.Question,
			Side:       side,
			Price:      sidePrice(side, sig.NewPrice),
			Amount:     amount,
			Reason:     fmt.Sprintf("price spike %+.3f", sig.PriceDelta),
		})
	}
	return out
}

// --- status_quo: apuesta NO en preguntas "will X happen" baratas ---

type statusQuoRule struct{ cfg config.EngineConfig }

func (r statusQuoRule) Strategy() domain.Strategy { return domain.StrategyStatusQuo }

func (r statusQuoRule) Propose(view MarketView, cash float64) []domain.TradeProposal {
	if view.Snapshot == nil {
		return nil
	}
	amount := cash * r.cfg.StatusQuoSizePct
	if amount <= 0 {
		return nil
	}

	var out []domain.TradeProposal
	for _, obs := range view.Snapshot.Markets {
		if obs.Price == nil || domain.IsSportsMarket(obs.Question) {
			continue
		}
		yes := *obs.Price
		if yes < r.cfg.StatusQuoMinYes || yes > r.cfg.StatusQuoMaxYes {
			continue
		}
		if !domain.IsStatusQuoQuestion(obs.Question) {
			continue
		}

		out = append(out, domain.TradeProposal{
			Strategy:   domain.StrategyStatusQuo,
			MarketSlug: obs.Slug,
			Question:   obs.Question,
			Side:       domain.SideNo,
			Price:      1 - yes,
			Amount:     amount,
			Reason:     fmt.Sprintf("status quo, YES at %.2f", yes),
		})
	}
	return out
}

// --- cheap_contracts: lottery tickets bajo el cheap_max_price ---

type cheapRule struct{ cfg config.EngineConfig }

func (r cheapRule) Strategy() domain.Strategy { return domain.StrategyCheap }

func (r cheapRule) Propose(view MarketView, cash float64) []domain.TradeProposal {
	if view.Snapshot == nil {
		return nil
	}
	amount := lotterySize(r.cfg, cash)
	if amount <= 0 {
		return nil
	}

	var out []domain.TradeProposal
	for _, obs := range view.Snapshot.Markets {
		if obs.Price == nil || domain.IsSportsMarket(obs.Question) {
			continue
		}
		yes := *obs.Price
		if yes <= 0 || yes >= r.cfg.CheapMaxPrice {
			continue
		}

		out = append(out, domain.TradeProposal{
			Strategy:   domain.StrategyCheap,
			MarketSlug: obs.Slug,
			Question:   obs.Question,
			Side:       domain.SideYes,
			Price:      yes,
			Amount:     amount,
			Reason:     fmt.Sprintf("cheap YES at %.4f", yes),
		})
	}
	return out
}

// lotterySize es el sizing de cheap_contracts: 1% del cash con mínimo y cap.
func lotterySize(cfg config.EngineConfig, cash float64) float64 {
	amount := cash * cfg.CheapSizePct
	if amount < cfg.CheapMinBet {
		amount = cfg.CheapMinBet
	}
	if amount > cfg.CheapMaxBet {
		amount = cfg.CheapMaxBet
	}
	if amount > cash {
		return 0
	}
	return amount
}

// --- arb proxy: banda de precio + poca liquidez, ambos legs a la vez ---
//
// Proxy heurístico, no arbitraje real: simula una ventaja de spread
// sintética del 2% sobre ambos legs. Sin filtro de deportes a propósito.

type arbRule struct{ cfg config.EngineConfig }

func (r arbRule) Strategy() domain.Strategy { return domain.StrategyArb }

func (r arbRule) Propose(view MarketView, cash float64) []domain.TradeProposal {
	if view.Snapshot == nil {
		return nil
	}
	legAmount := cash * r.cfg.ArbSizePct / 2
	if legAmount <= 0 {
		return nil
	}

	var out []domain.TradeProposal
	for _, obs := range view.Snapshot.Markets {
		if obs.Price == nil {
			continue
		}
		yes := *obs.Price
		if obs.Liquidity >= r.cfg.ArbMaxLiquidity {
			continue
		}
		if yes < r.cfg.ArbBandLow || yes > r.cfg.ArbBandHigh {
			continue
		}

		for _, side := range []domain.Side{domain.SideYes, domain.SideNo} {
			out = append(out, domain.TradeProposal{
				Strategy:   domain.StrategyArb,
				MarketSlug: obs.Slug,
				Question:   obs.Question,
				Side:       side,
				Price:      arbLegPrice(r.cfg, sidePrice(side, yes)),
				Amount:     legAmount,
				Reason:     fmt.Sprintf("arb proxy, YES at %.2f liq %.0f", yes, obs.Liquidity),
			})
		}
	}
	return out
}

// arbLegPrice aplica la mitad del edge sintético a cada leg:
// con edge 2%, un leg a 0.50 entra a 0.495.
func arbLegPrice(cfg config.EngineConfig, legPrice float64) float64 {
	return legPrice * (1 - cfg.ArbEdge/2)
}

// priceFloor devuelve el suelo de precio por estrategia: cheap_contracts
// usa un floor mucho más bajo porque su universo son contratos de céntimos.
func priceFloor(cfg config.EngineConfig, s domain.Strategy) float64 {
	if s == domain.StrategyCheap {
		return cfg.CheapPriceFloor
	}
	return cfg.PriceFloor
}

// validProposal descarta proposals con precio fuera de (floor, ceiling):
// contratos casi seguros distorsionan el sizing.
func validProposal(cfg config.EngineConfig, p domain.TradeProposal) bool {
	return p.Price > priceFloor(cfg, p.Strategy) && p.Price < cfg.PriceCeiling
}
