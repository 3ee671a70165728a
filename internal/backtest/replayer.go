package backtest

// replayer.go — replay de las cinco estrategias sobre el corpus histórico
// de mercados resueltos, con capital aislado por estrategia.
//
// Regla de corrección crítica: el precio de entrada se estima como
// lastTradePrice − oneDayPriceChange, el precio *antes* del movimiento final
// que produjo la resolución. Usar el precio adyacente a la resolución es
// look-ahead bias.

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"polysim/config"
	"polysim/internal/domain"
	"polysim/internal/engine"
)

// Result es la salida completa de un replay: trade log, curvas de equity
// (un punto por trade ejecutado, no por fecha) y summary por estrategia.
type Result struct {
	Trades    []domain.BacktestTrade
	Curves    map[domain.Strategy][]domain.EquityPoint
	Summaries []domain.BacktestSummary
}

// Replayer reproduce el rule set de las estrategias live contra el corpus.
type Replayer struct {
	cfg         config.EngineConfig
	initialCash float64
}

// NewReplayer crea un Replayer con el capital inicial por estrategia dado.
func NewReplayer(cfg config.EngineConfig, initialCash float64) *Replayer {
	return &Replayer{cfg: cfg, initialCash: initialCash}
}

// Run reproduce el corpus completo. El input se ordena cronológicamente
// (desempate por slug) para que el mismo dataset produzca trade logs y
// curvas byte-idénticas en cada ejecución: no hay aleatoriedad en el engine.
func (r *Replayer) Run(markets []domain.HistoricalMarket) *Result {
	sorted := make([]domain.HistoricalMarket, len(markets))
	copy(sorted, markets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].EndDate.Equal(sorted[j].EndDate) {
			return sorted[i].EndDate.Before(sorted[j].EndDate)
		}
		return sorted[i].Slug < sorted[j].Slug
	})

	cash := make(map[domain.Strategy]float64, len(domain.AllStrategies))
	for _, s := range domain.AllStrategies {
		cash[s] = r.initialCash
	}

	result := &Result{Curves: make(map[domain.Strategy][]domain.EquityPoint)}

	for _, market := range sorted {
		entry := market.EntryPrice()
		if !validEntry(entry) {
			continue
		}

		for _, strat := range domain.AllStrategies {
			for _, sized := range r.decide(strat, market, entry, cash[strat]) {
				trade := settle(sized, market)
				cash[strat] += trade.Proceeds - trade.Cost

				result.Trades = append(result.Trades, trade)
				result.Curves[strat] = append(result.Curves[strat], domain.EquityPoint{
					Date:   strconv.Itoa(len(result.Curves[strat]) + 1),
					Equity: cash[strat],
				})
			}
		}
	}

	for _, s := range domain.AllStrategies {
		result.Summaries = append(result.Summaries, summarize(s, r.initialCash, cash[s], result))
	}

	return result
}

// validEntry descarta entradas no finitas o fuera de (0.01, 0.99).
func validEntry(entry float64) bool {
	if math.IsNaN(entry) || math.IsInf(entry, 0) {
		return false
	}
	return entry > 0.01 && entry < 0.99
}

// leg es un trade decidido pero aún sin liquidar.
type leg struct {
	strategy domain.Strategy
	side     domain.Side
	price    float64
	amount   float64
}

// decide aplica la regla de la estrategia al precio de entrada histórico.
// Espeja las reglas live de internal/engine evaluadas contra un único
// precio en vez de un par snapshot/señal.
func (r *Replayer) decide(strat domain.Strategy, market domain.HistoricalMarket, entry float64, cash float64) []leg {
	cfg := r.cfg

	switch strat {
	case domain.StrategyMomentum, domain.StrategyContrarian:
		if math.Abs(market.OneDayChange) <= cfg.PriceSpikeThreshold {
			return nil
		}
		if domain.IsSportsMarket(market.Question) {
			return nil
		}
		side := domain.SideYes
		if market.OneDayChange < 0 {
			side = domain.SideNo
		}
		if strat == domain.StrategyContrarian {
			side = side.Opposite()
		}
		amount := math.Min(cash*cfg.TrendSizePct, cfg.TrendMaxBet)
		return r.sized(strat, side, legPrice(side, entry), amount, cash)

	case domain.StrategyStatusQuo:
		if domain.IsSportsMarket(market.Question) || !domain.IsStatusQuoQuestion(market.Question) {
			return nil
		}
		if entry < cfg.StatusQuoMinYes || entry > cfg.StatusQuoMaxYes {
			return nil
		}
		return r.sized(strat, domain.SideNo, 1-entry, cash*cfg.StatusQuoSizePct, cash)

	case domain.StrategyCheap:
		if domain.IsSportsMarket(market.Question) {
			return nil
		}
		if entry <= 0 || entry >= cfg.CheapMaxPrice {
			return nil
		}
		amount := math.Min(math.Max(cash*cfg.CheapSizePct, cfg.CheapMinBet), cfg.CheapMaxBet)
		return r.sized(strat, domain.SideYes, entry, amount, cash)

	case domain.StrategyArb:
		// Banda más ancha que en live, con filtro de volumen: sin orderbook
		// histórico, volumen moderado es el proxy de que el spread existía.
		if entry < cfg.BacktestArbLow || entry > cfg.BacktestArbHigh {
			return nil
		}
		if market.Volume < cfg.BacktestArbMinVol || market.Volume >= cfg.BacktestArbMaxVol {
			return nil
		}
		half := cash * cfg.ArbSizePct / 2
		yes := r.sized(strat, domain.SideYes, entry*(1-cfg.ArbEdge/2), half, cash)
		no := r.sized(strat, domain.SideNo, (1-entry)*(1-cfg.ArbEdge/2), half, cash-half)
		return append(yes, no...)
	}
	return nil
}

// sized valida banda de precio y balance; devuelve cero o un leg.
func (r *Replayer) sized(strat domain.Strategy, side domain.Side, price, amount, cash float64) []leg {
	floor := r.cfg.PriceFloor
	if strat == domain.StrategyCheap {
		floor = r.cfg.CheapPriceFloor
	}
	if price <= floor || price >= r.cfg.PriceCeiling {
		return nil
	}
	if amount <= 0 || amount > cash {
		return nil
	}
	return []leg{{strategy: strat, side: side, price: price, amount: amount}}
}

func legPrice(side domain.Side, yesPrice float64) float64 {
	if side == domain.SideYes {
		return yesPrice
	}
	return 1 - yesPrice
}

// settle liquida un leg contra el outcome real del mercado:
// exit 1.0 si el side ganó, 0.0 si perdió.
func settle(l leg, market domain.HistoricalMarket) domain.BacktestTrade {
	won := (l.side == domain.SideYes) == market.ResolvedYes

	exit := 0.0
	if won {
		exit = 1.0
	}
	shares := l.amount / l.price
	proceeds := shares * exit

	return domain.BacktestTrade{
		Strategy:         l.strategy,
		MarketSlug:       market.Slug,
		Question:         market.Question,
		Side:             l.side,
		EntryPrice:       l.price,
		ExitPrice:        exit,
		Shares:           shares,
		Cost:             l.amount,
		Proceeds:         proceeds,
		PnL:              proceeds - l.amount,
		Won:              won,
		DaysToResolution: market.DaysToResolution(),
	}
}

// summarize calcula las métricas finales de una estrategia.
func summarize(s domain.Strategy, initial, final float64, result *Result) domain.BacktestSummary {
	var trades, wins int
	var pnl float64
	for _, t := range result.Trades {
		if t.Strategy != s {
			continue
		}
		trades++
		pnl += t.PnL
		if t.Won {
			wins++
		}
	}

	winRate := math.NaN()
	if trades > 0 {
		winRate = float64(wins) / float64(trades) * 100
	}

	return domain.BacktestSummary{
		Strategy:    s,
		InitialCash: initial,
		FinalCash:   final,
		Trades:      trades,
		Wins:        wins,
		Losses:      trades - wins,
		RealizedPnL: pnl,
		ROI:         (final - initial) / initial * 100,
		WinRate:     winRate,
		Sharpe:      engine.SharpeRatio(result.Curves[s], true),
	}
}

// String implementa una descripción corta del resultado para logs.
func (r *Result) String() string {
	return fmt.Sprintf("backtest: %d trades across %d strategies", len(r.Trades), len(r.Summaries))
}
