package notify

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"polysim/internal/domain"
)

func TestPrintStatusShowsLeaderboardAndPositions(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleWriter(&buf)

	metrics := []domain.StrategyMetrics{
		{Strategy: domain.StrategyMomentum, Cash: 1900, Equity: 2010, OpenValue: 110,
			UnrealizedPnL: 10, ROI: 0.5, WinRate: math.NaN(), Sharpe: math.NaN(), OpenCount: 1},
		{Strategy: domain.StrategyArb, Cash: 2000, Equity: 2000,
			WinRate: math.NaN(), Sharpe: math.NaN()},
	}
	positions := []domain.Position{{
		ID: "a", Strategy: domain.StrategyMomentum, MarketSlug: "m1",
		Question: "Will it rain tomorrow?", Side: domain.SideYes,
		EntryPrice: 0.45, CurrentPrice: 0.50, Shares: 222.22, Cost: 100,
		OpenedAt: time.Now(),
	}}

	console.PrintStatus(metrics, positions)

	out := buf.String()
	assert.Contains(t, out, "momentum")
	assert.Contains(t, out, "arb")
	assert.Contains(t, out, "Will it rain tomorrow?")
	assert.Contains(t, out, "1 open positions")
	// WinRate NaN se muestra como "-"
	assert.Contains(t, out, "-")
}

func TestPrintStatusNoPositions(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleWriter(&buf)

	console.PrintStatus(nil, nil)
	assert.Contains(t, buf.String(), "No open positions.")
}

func TestPrintSignalsEmpty(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleWriter(&buf)

	console.PrintSignals(nil)
	assert.Contains(t, buf.String(), "no signals")
}

func TestPrintSignalsShowsSpikes(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleWriter(&buf)

	console.PrintSignals([]domain.Signal{
		{Slug: "m1", Question: "q1", OldPrice: 0.30, NewPrice: 0.45,
			PriceDelta: 0.15, Direction: domain.DirectionUp, IsPriceSpike: true},
		{Slug: "m2", Question: "q2", OldPrice: 0.50, NewPrice: 0.50,
			Direction: domain.DirectionFlat},
	})

	out := buf.String()
	assert.Contains(t, out, "2 signals")
	assert.Contains(t, out, "1 price spikes")
	assert.Contains(t, out, "UP")
	assert.Contains(t, out, "FLAT")
}

func TestPrintBacktestSummaries(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleWriter(&buf)

	console.PrintBacktest([]domain.BacktestSummary{{
		Strategy: domain.StrategyCheap, InitialCash: 2000, FinalCash: 2980,
		Trades: 1, Wins: 1, RealizedPnL: 980, ROI: 49, WinRate: 100,
		Sharpe: math.NaN(),
	}})

	out := buf.String()
	assert.Contains(t, out, "cheap_contracts")
	assert.Contains(t, out, "$980.00")
	assert.Contains(t, out, "Total realized PnL")
}

func TestPrintBacktestEmpty(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleWriter(&buf)

	console.PrintBacktest(nil)
	assert.Contains(t, buf.String(), "No backtest results")
}

func TestPrintTimingWindows(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleWriter(&buf)

	console.PrintTimingWindows([]domain.TimingWindow{
		{Label: ">30d", MinDays: 30, Trades: 4, Wins: 3, WinRate: 75, PnL: 120},
		{Label: "1-3d", MinDays: 1, MaxDays: 3, WinRate: math.NaN()},
	})

	out := buf.String()
	assert.Contains(t, out, ">30d")
	assert.Contains(t, out, "75.0")
	assert.Contains(t, out, "$120.00")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a very ...", truncate("a very long question indeed", 10))
}
