package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polysim/config"
	"polysim/internal/domain"
)

func spikeSignal(slug string, old, new float64) domain.Signal {
	delta := new - old
	dir := domain.DirectionUp
	if delta < 0 {
		dir = domain.DirectionDown
	}
	return domain.Signal{
		Slug:         slug,
		Question:     "Will the Fed cut rates happen in 2025?",
		OldPrice:     old,
		NewPrice:     new,
		PriceDelta:   delta,
		Direction:    dir,
		IsPriceSpike: true,
	}
}

func TestMomentumRule_FollowsSpike(t *testing.T) {
	cfg := config.DefaultEngine()
	rule, err := NewRule(domain.StrategyMomentum, cfg)
	require.NoError(t, err)

	view := MarketView{Signals: []domain.Signal{spikeSignal("fed-cut", 0.30, 0.45)}}
	props := rule.Propose(view, 2000)

	// escenario de referencia: Δ=+0.15, 5% de $2000 → $100 YES a 0.45
	require.Len(t, props, 1)
	assert.Equal(t, domain.SideYes, props[0].Side)
	assert.Equal(t, 0.45, props[0].Price)
	assert.Equal(t, 100.0, props[0].Amount)
}

func TestMomentumRule_DownSpikeBuysNo(t *testing.T) {
	cfg := config.DefaultEngine()
	rule, _ := NewRule(domain.StrategyMomentum, cfg)

	view := MarketView{Signals: []domain.Signal{spikeSignal("m", 0.60, 0.40)}}
	props := rule.Propose(view, 2000)

	require.Len(t, props, 1)
	assert.Equal(t, domain.SideNo, props[0].Side)
	assert.InDelta(t, 0.60, props[0].Price, 1e-9) // 1 - 0.40
}

func TestMomentumRule_CapAt200(t *testing.T) {
	cfg := config.DefaultEngine()
	rule, _ := NewRule(domain.StrategyMomentum, cfg)

	view := MarketView{Signals: []domain.Signal{spikeSignal("m", 0.30, 0.45)}}
	props := rule.Propose(view, 10000) // 5% serían $500

	require.Len(t, props, 1)
	assert.Equal(t, 200.0, props[0].Amount)
}

func TestContrarianRule_FadesSpike(t *testing.T) {
	cfg := config.DefaultEngine()
	rule, _ := NewRule(domain.StrategyContrarian, cfg)

	view := MarketView{Signals: []domain.Signal{spikeSignal("m", 0.30, 0.45)}}
	props := rule.Propose(view, 2000)

	require.Len(t, props, 1)
	assert.Equal(t, domain.SideNo, props[0].Side)
	assert.InDelta(t, 0.55, props[0].Price, 1e-9) // precio complementario
}

func TestTrendRules_SkipSports(t *testing.T) {
	cfg := config.DefaultEngine()
	sig := spikeSignal("lakers", 0.30, 0.45)
	sig.Question = "Will the Lakers win the NBA Finals?"

	for _, s := range []domain.Strategy{domain.StrategyMomentum, domain.StrategyContrarian} {
		rule, _ := NewRule(s, cfg)
		assert.Empty(t, rule.Propose(MarketView{Signals: []domain.Signal{sig}}, 2000), string(s))
	}
}

func TestStatusQuoRule(t *testing.T) {
	cfg := config.DefaultEngine()
	rule, _ := NewRule(domain.StrategyStatusQuo, cfg)

	view := MarketView{Snapshot: &domain.Snapshot{
		CapturedAt: time.Now(),
		Markets: []domain.Observation{
			{Slug: "in-band", Question: "Will a recession happen in 2025?", Price: fp(0.25)},
			{Slug: "too-likely", Question: "Will inflation rise happen in 2025?", Price: fp(0.70)},
			{Slug: "wrong-shape", Question: "Next Fed chair announced", Price: fp(0.25)},
		},
	}}
	props := rule.Propose(view, 2000)

	require.Len(t, props, 1)
	assert.Equal(t, "in-band", props[0].MarketSlug)
	assert.Equal(t, domain.SideNo, props[0].Side)
	assert.InDelta(t, 0.75, props[0].Price, 1e-9)
	assert.Equal(t, 100.0, props[0].Amount) // 5% sin cap
}

func TestCheapRule_LotterySizing(t *testing.T) {
	cfg := config.DefaultEngine()
	rule, _ := NewRule(domain.StrategyCheap, cfg)

	view := MarketView{Snapshot: &domain.Snapshot{
		Markets: []domain.Observation{
			{Slug: "longshot", Question: "Will aliens land happen in 2025?", Price: fp(0.02)},
			{Slug: "not-cheap", Question: "Will rates drop happen in 2025?", Price: fp(0.20)},
		},
	}}
	props := rule.Propose(view, 2000)

	// escenario de referencia: 1% de $2000 pero mínimo $20 del tipo
	require.Len(t, props, 1)
	assert.Equal(t, "longshot", props[0].MarketSlug)
	assert.Equal(t, domain.SideYes, props[0].Side)
	assert.Equal(t, 0.02, props[0].Price)
	assert.Equal(t, 20.0, props[0].Amount)
}

func TestArbRule_BothLegsWithSyntheticEdge(t *testing.T) {
	cfg := config.DefaultEngine()
	rule, _ := NewRule(domain.StrategyArb, cfg)

	view := MarketView{Snapshot: &domain.Snapshot{
		Markets: []domain.Observation{
			{Slug: "thin", Question: "Team A vs. Team B: who wins the game?", Price: fp(0.50), Liquidity: 3000},
			{Slug: "deep", Question: "Will X happen?", Price: fp(0.50), Liquidity: 90000},
			{Slug: "off-band", Question: "Will Y happen?", Price: fp(0.80), Liquidity: 1000},
		},
	}}
	props := rule.Propose(view, 2000)

	// escenario de referencia: $60 total → dos legs de $30 a 0.495
	require.Len(t, props, 2)
	assert.Equal(t, domain.SideYes, props[0].Side)
	assert.Equal(t, domain.SideNo, props[1].Side)
	for _, p := range props {
		assert.Equal(t, "thin", p.MarketSlug, "el filtro de deportes no aplica al arb proxy")
		assert.Equal(t, 30.0, p.Amount)
		assert.InDelta(t, 0.495, p.Price, 1e-9)
	}
}

func TestNewRule_UnknownStrategy(t *testing.T) {
	_, err := NewRule(domain.Strategy("kelly"), config.DefaultEngine())
	assert.ErrorIs(t, err, domain.ErrInvalidStrategy)
}

func TestValidProposal_PriceBands(t *testing.T) {
	cfg := config.DefaultEngine()

	// floor normal 0.01
	assert.False(t, validProposal(cfg, domain.TradeProposal{Strategy: domain.StrategyMomentum, Price: 0.005}))
	assert.True(t, validProposal(cfg, domain.TradeProposal{Strategy: domain.StrategyMomentum, Price: 0.02}))
	// ceiling 0.99
	assert.False(t, validProposal(cfg, domain.TradeProposal{Strategy: domain.StrategyMomentum, Price: 0.995}))
	// cheap_contracts usa floor 0.0001
	assert.True(t, validProposal(cfg, domain.TradeProposal{Strategy: domain.StrategyCheap, Price: 0.005}))
	assert.False(t, validProposal(cfg, domain.TradeProposal{Strategy: domain.StrategyCheap, Price: 0.0001}))
}
