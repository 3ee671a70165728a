package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortfolio_FiveLedgers(t *testing.T) {
	p := NewPortfolio(2000, time.Now())

	require.Len(t, p.Ledgers, 5)
	for _, s := range AllStrategies {
		l, err := p.Ledger(s)
		require.NoError(t, err)
		assert.Equal(t, 2000.0, l.Cash)
		assert.Equal(t, 2000.0, l.InitialCash)
		assert.Empty(t, l.EquityCurve)
	}
	assert.Equal(t, 10000.0, p.TotalInitial())
}

func TestPortfolio_Ledger_UnknownStrategy(t *testing.T) {
	p := NewPortfolio(2000, time.Now())
	_, err := p.Ledger(Strategy("martingale"))
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestLedger_RecordEquity_SameDateOverwrites(t *testing.T) {
	l := &Ledger{Cash: 1000, InitialCash: 1000}

	l.RecordEquity("2025-03-01", 1000)
	l.RecordEquity("2025-03-01", 1050)
	l.RecordEquity("2025-03-02", 1100)

	// dos updates el mismo día → exactamente un punto, con el valor posterior
	require.Len(t, l.EquityCurve, 2)
	assert.Equal(t, "2025-03-01", l.EquityCurve[0].Date)
	assert.Equal(t, 1050.0, l.EquityCurve[0].Equity)
	assert.Equal(t, 1100.0, l.EquityCurve[1].Equity)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("cheap_contracts")
	require.NoError(t, err)
	assert.Equal(t, StrategyCheap, s)

	_, err = ParseStrategy("kelly")
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}
