package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polysim/config"
	"polysim/internal/domain"
)

// fakeProvider implementa ports.MarketProvider sobre un map en memoria.
type fakeProvider struct {
	markets map[string]domain.MarketRecord
	failing map[string]bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		markets: make(map[string]domain.MarketRecord),
		failing: make(map[string]bool),
	}
}

func (f *fakeProvider) set(slug string, m domain.MarketRecord) {
	m.Slug = slug
	f.markets[slug] = m
}

func (f *fakeProvider) FetchMarketBySlug(_ context.Context, slug string) (*domain.MarketRecord, error) {
	if f.failing[slug] {
		return nil, errors.New("connection refused")
	}
	m, ok := f.markets[slug]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeProvider) FetchActiveMarkets(context.Context, int) ([]domain.MarketRecord, error) {
	return nil, nil
}

func (f *fakeProvider) FetchResolvedMarkets(context.Context, int) ([]domain.HistoricalMarket, error) {
	return nil, nil
}

func binaryMarket(yes float64) domain.MarketRecord {
	return domain.MarketRecord{
		Outcomes:      []string{"Yes", "No"},
		OutcomePrices: []float64{yes, 1 - yes},
	}
}

func newManager(t *testing.T, cash float64) *Manager {
	t.Helper()
	m := NewManager(config.DefaultEngine(), domain.NewPortfolio(cash, time.Now()), nil, nil)
	m.SetClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })
	return m
}

func TestManager_Open(t *testing.T) {
	m := newManager(t, 2000)

	pos, err := m.Open(domain.StrategyMomentum, "fed-cut", "Will the Fed cut?", domain.SideYes, 0.45, 100)
	require.NoError(t, err)

	// shares × entryPrice ≈ cost dentro de 1e-4
	assert.InDelta(t, pos.Shares*pos.EntryPrice, pos.Cost, 1e-4)
	assert.InDelta(t, 222.22, pos.Shares, 0.01)

	ledger, _ := m.portfolio.Ledger(domain.StrategyMomentum)
	assert.Equal(t, 1900.0, ledger.Cash)
	require.Len(t, ledger.EquityCurve, 1)
	// conservación: cash + valor abierto == equity registrado
	assert.InDelta(t, 2000.0, ledger.EquityCurve[0].Equity, 1e-9)
}

func TestManager_Open_Errors(t *testing.T) {
	m := newManager(t, 100)

	_, err := m.Open(domain.StrategyMomentum, "m", "q", domain.SideYes, 0, 50)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = m.Open(domain.StrategyMomentum, "m", "q", domain.SideYes, 1.0, 50)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = m.Open(domain.StrategyMomentum, "m", "q", domain.SideYes, 0.5, 500)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = m.Open(domain.Strategy("nope"), "m", "q", domain.SideYes, 0.5, 50)
	assert.ErrorIs(t, err, domain.ErrInvalidStrategy)
}

func TestManager_Refresh_SkipsUnknownMarkets(t *testing.T) {
	m := newManager(t, 2000)
	provider := newFakeProvider()

	m.Open(domain.StrategyMomentum, "known", "q", domain.SideYes, 0.40, 100)
	m.Open(domain.StrategyContrarian, "unknown", "q", domain.SideNo, 0.50, 100)
	provider.set("known", binaryMarket(0.55))

	updated, skipped := m.Refresh(context.Background(), provider)

	assert.Equal(t, 1, updated)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 0.55, m.Positions()[0].CurrentPrice)
	// refresh no toca cash ni status
	ledger, _ := m.portfolio.Ledger(domain.StrategyMomentum)
	assert.Equal(t, 1900.0, ledger.Cash)
}

func TestManager_Sell(t *testing.T) {
	m := newManager(t, 2000)
	pos, _ := m.Open(domain.StrategyMomentum, "m", "q", domain.SideYes, 0.40, 100)

	exit := 0.60
	rec, err := m.Sell(context.Background(), newFakeProvider(), pos.ID, &exit)
	require.NoError(t, err)

	assert.Equal(t, domain.PositionSold, rec.Status)
	assert.InDelta(t, 150.0, rec.Proceeds, 1e-9) // 250 shares × 0.60
	assert.InDelta(t, 50.0, rec.PnL, 1e-9)
	assert.Empty(t, m.Positions())

	ledger, _ := m.portfolio.Ledger(domain.StrategyMomentum)
	assert.InDelta(t, 2050.0, ledger.Cash, 1e-9)
}

func TestManager_Sell_FetchedPrice(t *testing.T) {
	m := newManager(t, 2000)
	pos, _ := m.Open(domain.StrategyMomentum, "m", "q", domain.SideNo, 0.50, 100)

	provider := newFakeProvider()
	provider.set("m", binaryMarket(0.30)) // NO vale 0.70

	rec, err := m.Sell(context.Background(), provider, pos.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.70, rec.ExitPrice, 1e-9)
}

func TestManager_Resolve(t *testing.T) {
	m := newManager(t, 2000)
	provider := newFakeProvider()

	m.Open(domain.StrategyMomentum, "won-market", "q", domain.SideYes, 0.45, 100)
	m.Open(domain.StrategyMomentum, "lost-market", "q", domain.SideYes, 0.50, 100)
	m.Open(domain.StrategyMomentum, "still-open", "q", domain.SideYes, 0.50, 100)
	m.Open(domain.StrategyMomentum, "closed-only", "q", domain.SideYes, 0.50, 100)

	won := binaryMarket(0.99)
	won.Resolved = true
	won.ResolutionOutcome = "Yes"
	provider.set("won-market", won)

	lost := binaryMarket(0.01)
	lost.Resolved = true
	lost.ResolutionOutcome = "No"
	provider.set("lost-market", lost)

	provider.set("still-open", binaryMarket(0.50))

	// closed pero no resolved y sin outcome → skip, se reintenta después
	closedOnly := binaryMarket(0.50)
	closedOnly.Closed = true
	provider.set("closed-only", closedOnly)

	resolved, skipped := m.Resolve(context.Background(), provider)

	assert.Equal(t, 2, resolved)
	assert.Equal(t, 2, skipped)
	require.Len(t, m.Positions(), 2)

	records := m.NewlyClosed()
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Contains(t, []float64{0.0, 1.0}, rec.ExitPrice)
		assert.InDelta(t, rec.Shares*rec.ExitPrice-rec.Cost, rec.PnL, 1e-9)
	}

	// won-market: 222.22 shares × 1.0; lost-market: 0
	ledger, _ := m.portfolio.Ledger(domain.StrategyMomentum)
	assert.InDelta(t, 1600+100/0.45, ledger.Cash, 1e-6)
}

func TestManager_Resolve_PriceFallback(t *testing.T) {
	m := newManager(t, 2000)
	provider := newFakeProvider()

	m.Open(domain.StrategyCheap, "extreme", "q", domain.SideYes, 0.02, 20)

	// resolved sin outcome declarado, pero YES ≥ 0.99 → won
	extreme := binaryMarket(0.995)
	extreme.Resolved = true
	provider.set("extreme", extreme)

	resolved, _ := m.Resolve(context.Background(), provider)
	require.Equal(t, 1, resolved)

	rec := m.NewlyClosed()[0]
	assert.Equal(t, domain.PositionWon, rec.Status)
	// escenario de referencia cheap_contracts: $20 a 0.02 → 1000 shares, pnl +980
	assert.InDelta(t, 1000.0, rec.Shares, 1e-9)
	assert.InDelta(t, 980.0, rec.PnL, 1e-9)
}

func TestManager_Resolve_ProviderFailureSkipsAndContinues(t *testing.T) {
	m := newManager(t, 2000)
	provider := newFakeProvider()

	m.Open(domain.StrategyMomentum, "flaky", "q", domain.SideYes, 0.50, 100)
	m.Open(domain.StrategyMomentum, "fine", "q", domain.SideYes, 0.50, 100)

	provider.failing["flaky"] = true
	fine := binaryMarket(0.99)
	fine.Resolved = true
	fine.ResolutionOutcome = "Yes"
	provider.set("fine", fine)

	resolved, skipped := m.Resolve(context.Background(), provider)
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 1, skipped)
}

func TestManager_ExecuteProposals_DedupAndArbPair(t *testing.T) {
	m := newManager(t, 2000)

	props := []domain.TradeProposal{
		{Strategy: domain.StrategyArb, MarketSlug: "pair", Side: domain.SideYes, Price: 0.495, Amount: 30},
		{Strategy: domain.StrategyArb, MarketSlug: "pair", Side: domain.SideNo, Price: 0.495, Amount: 30},
	}
	opened, skipped := m.ExecuteProposals(props)
	assert.Equal(t, 2, opened, "ambos legs del par arb deben abrirse")
	assert.Equal(t, 0, skipped)

	// una segunda pasada no duplica el par
	opened, skipped = m.ExecuteProposals(props)
	assert.Equal(t, 0, opened)
	assert.Equal(t, 2, skipped)
}

func TestManager_ExecuteProposals_PriceBandDiscard(t *testing.T) {
	m := newManager(t, 2000)

	opened, skipped := m.ExecuteProposals([]domain.TradeProposal{
		{Strategy: domain.StrategyMomentum, MarketSlug: "a", Side: domain.SideYes, Price: 0.005, Amount: 100},
		{Strategy: domain.StrategyMomentum, MarketSlug: "b", Side: domain.SideYes, Price: 0.995, Amount: 100},
	})
	assert.Equal(t, 0, opened)
	assert.Equal(t, 2, skipped)
}

func TestManager_LedgerConservation(t *testing.T) {
	m := newManager(t, 2000)
	provider := newFakeProvider()

	m.Open(domain.StrategyMomentum, "a", "q", domain.SideYes, 0.40, 100)
	m.Open(domain.StrategyMomentum, "b", "q", domain.SideNo, 0.60, 50)
	provider.set("a", binaryMarket(0.55))
	provider.set("b", binaryMarket(0.30))
	m.Refresh(context.Background(), provider)

	// en cada checkpoint: cash + Σ valor abierto == equity registrado
	ledger, _ := m.portfolio.Ledger(domain.StrategyMomentum)
	var openValue float64
	for _, p := range m.Positions() {
		openValue += p.MarketValue()
	}
	last := ledger.EquityCurve[len(ledger.EquityCurve)-1]
	assert.InDelta(t, ledger.Cash+openValue, last.Equity, 1e-9)
}

func TestSharpeRatio(t *testing.T) {
	// menos de 3 puntos → indefinido
	assert.True(t, math.IsNaN(SharpeRatio([]domain.EquityPoint{{Equity: 100}, {Equity: 110}}, false)))

	// curva plana → stddev 0 → indefinido
	flat := []domain.EquityPoint{{Equity: 100}, {Equity: 100}, {Equity: 100}, {Equity: 100}}
	assert.True(t, math.IsNaN(SharpeRatio(flat, false)))

	rising := []domain.EquityPoint{{Equity: 100}, {Equity: 105}, {Equity: 108}, {Equity: 115}}
	s := SharpeRatio(rising, false)
	assert.False(t, math.IsNaN(s))
	assert.Greater(t, s, 0.0)

	// la variante backtest clampéa los extremos a [-10, 10]
	explosive := []domain.EquityPoint{{Equity: 100}, {Equity: 1000}, {Equity: 10000}, {Equity: 100001}}
	assert.LessOrEqual(t, SharpeRatio(explosive, true), 10.0)
}

func TestManager_Metrics(t *testing.T) {
	m := newManager(t, 2000)
	pos, _ := m.Open(domain.StrategyMomentum, "m", "q", domain.SideYes, 0.40, 100)

	exit := 0.60
	_, err := m.Sell(context.Background(), newFakeProvider(), pos.ID, &exit)
	require.NoError(t, err)

	metrics, err := m.Metrics(domain.StrategyMomentum)
	require.NoError(t, err)

	assert.InDelta(t, 50.0, metrics.RealizedPnL, 1e-9)
	assert.InDelta(t, 2.5, metrics.ROI, 1e-9) // 50/2000 × 100
	assert.InDelta(t, 100.0, metrics.WinRate, 1e-9)
	assert.Equal(t, 1, metrics.Wins)
	assert.Equal(t, 0, metrics.OpenCount)

	// sin trades: win rate indefinido
	idle, _ := m.Metrics(domain.StrategyCheap)
	assert.True(t, math.IsNaN(idle.WinRate))
}
