package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketRecord_Price_CaseInsensitive(t *testing.T) {
	m := MarketRecord{
		Outcomes:      []string{"Yes", "No"},
		OutcomePrices: []float64{0.62, 0.38},
	}

	p := m.Price(SideYes)
	require.NotNil(t, p)
	assert.Equal(t, 0.62, *p)

	p = m.Price(SideNo)
	require.NotNil(t, p)
	assert.Equal(t, 0.38, *p)
}

func TestMarketRecord_Price_MissingOutcome(t *testing.T) {
	m := MarketRecord{
		Outcomes:      []string{"Trump", "Harris"},
		OutcomePrices: []float64{0.5, 0.5},
	}
	assert.Nil(t, m.Price(SideYes))
}

func TestMarketRecord_Price_ShortPricesArray(t *testing.T) {
	m := MarketRecord{
		Outcomes:      []string{"Yes", "No"},
		OutcomePrices: []float64{0.62},
	}
	assert.Nil(t, m.Price(SideNo))
}

func TestMarketRecord_WonBy(t *testing.T) {
	m := MarketRecord{Resolved: true, ResolutionOutcome: "Yes"}

	won, stated := m.WonBy(SideYes)
	assert.True(t, stated)
	assert.True(t, won)

	won, stated = m.WonBy(SideNo)
	assert.True(t, stated)
	assert.False(t, won)

	_, stated = MarketRecord{Closed: true}.WonBy(SideYes)
	assert.False(t, stated)
}

func TestPosition_Close(t *testing.T) {
	p := Position{
		ID:         "abc",
		Strategy:   StrategyMomentum,
		Side:       SideYes,
		EntryPrice: 0.45,
		Shares:     222.22,
		Cost:       100,
	}

	rec := p.Close(1.0, PositionWon, p.OpenedAt)
	assert.Equal(t, PositionWon, rec.Status)
	assert.InDelta(t, 222.22, rec.Proceeds, 1e-9)
	assert.InDelta(t, 122.22, rec.PnL, 1e-9)
}

func TestIsSportsMarket(t *testing.T) {
	assert.True(t, IsSportsMarket("Will the Lakers win the NBA Finals?"))
	assert.True(t, IsSportsMarket("Djokovic vs. Alcaraz: who wins the match?"))
	assert.False(t, IsSportsMarket("Will the Fed cut rates in 2025?"))
	// "vs." sin cue deportivo no basta
	assert.False(t, IsSportsMarket("GPT-5 vs. Gemini benchmark scores released"))
}

func TestIsStatusQuoQuestion(t *testing.T) {
	assert.True(t, IsStatusQuoQuestion("Will a recession happen in 2025?"))
	assert.True(t, IsStatusQuoQuestion("Will Russia use nukes before 2026?"))
	assert.False(t, IsStatusQuoQuestion("Who will win the election?"))
	assert.False(t, IsStatusQuoQuestion("Fed rate decision March"))
}
