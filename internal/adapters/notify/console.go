package notify

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"polysim/internal/domain"
)

// Console implementa ports.Notifier escribiendo tablas a stdout.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintStatus imprime el leaderboard por estrategia y las posiciones abiertas.
// Las métricas llegan ya ordenadas por ROI descendente.
func (c *Console) PrintStatus(metrics []domain.StrategyMetrics, positions []domain.Position) {
	now := time.Now().Format("15:04:05")

	var equity, cash float64
	for _, m := range metrics {
		equity += m.Equity
		cash += m.Cash
	}
	fmt.Fprintf(c.out, "\n[%s] %d strategies | equity $%.2f | cash $%.2f | %d open positions\n",
		now, len(metrics), equity, cash, len(positions))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Strategy", "Equity", "Cash", "Open$", "uPnL", "rPnL", "ROI%", "Win%", "Sharpe", "W/L", "Pos")

	for i, m := range metrics {
		table.Append(
			fmt.Sprintf("%d", i+1),
			string(m.Strategy),
			fmt.Sprintf("$%.2f", m.Equity),
			fmt.Sprintf("$%.2f", m.Cash),
			fmt.Sprintf("$%.2f", m.OpenValue),
			fmt.Sprintf("$%.2f", m.UnrealizedPnL),
			fmt.Sprintf("$%.2f", m.RealizedPnL),
			pctLabel(m.ROI),
			pctLabel(m.WinRate),
			ratioLabel(m.Sharpe),
			fmt.Sprintf("%d/%d", m.Wins, m.Losses),
			fmt.Sprintf("%d", m.OpenCount),
		)
	}
	table.Render()

	if len(positions) == 0 {
		fmt.Fprintln(c.out, "  No open positions.")
		return
	}

	fmt.Fprintln(c.out, "\n  Open positions:")
	pos := tablewriter.NewWriter(c.out)
	pos.Header("Strategy", "Market", "Side", "Entry", "Now", "Shares", "Cost", "Value", "uPnL")

	for _, p := range positions {
		pos.Append(
			string(p.Strategy),
			truncate(p.Question, 38),
			string(p.Side),
			fmt.Sprintf("%.4f", p.EntryPrice),
			fmt.Sprintf("%.4f", p.CurrentPrice),
			fmt.Sprintf("%.2f", p.Shares),
			fmt.Sprintf("$%.2f", p.Cost),
			fmt.Sprintf("$%.2f", p.MarketValue()),
			fmt.Sprintf("$%.2f", p.MarketValue()-p.Cost),
		)
	}
	pos.Render()
}

// PrintSignals imprime las señales del último scan, ordenadas por |delta|.
func (c *Console) PrintSignals(signals []domain.Signal) {
	now := time.Now().Format("15:04:05")
	if len(signals) == 0 {
		fmt.Fprintf(c.out, "[%s] no signals — need at least two snapshots\n", now)
		return
	}

	priceSpikes := 0
	for _, s := range signals {
		if s.IsPriceSpike {
			priceSpikes++
		}
	}
	fmt.Fprintf(c.out, "\n[%s] %d signals, %d price spikes\n", now, len(signals), priceSpikes)

	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Old", "New", "Delta", "VolRatio", "Dir", "Spike")

	for _, s := range signals {
		spike := "-"
		switch {
		case s.IsPriceSpike && s.IsVolSpike:
			spike = "price+vol"
		case s.IsPriceSpike:
			spike = "price"
		case s.IsVolSpike:
			spike = "vol"
		}
		table.Append(
			truncate(s.Question, 40),
			fmt.Sprintf("%.4f", s.OldPrice),
			fmt.Sprintf("%.4f", s.NewPrice),
			fmt.Sprintf("%+.4f", s.PriceDelta),
			fmt.Sprintf("%.2f", s.VolumeRatio),
			string(s.Direction),
			spike,
		)
	}
	table.Render()
}

// PrintBacktest imprime el summary por estrategia de un backtest.
func (c *Console) PrintBacktest(summaries []domain.BacktestSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(c.out, "\n  No backtest results. Run fetch first to build the corpus.")
		return
	}

	fmt.Fprintln(c.out, "\n=== BACKTEST — per-strategy replay over resolved markets ===")

	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Initial", "Final", "Trades", "W/L", "PnL", "ROI%", "Win%", "Sharpe")

	var totalPnL float64
	for _, s := range summaries {
		totalPnL += s.RealizedPnL
		table.Append(
			string(s.Strategy),
			fmt.Sprintf("$%.2f", s.InitialCash),
			fmt.Sprintf("$%.2f", s.FinalCash),
			fmt.Sprintf("%d", s.Trades),
			fmt.Sprintf("%d/%d", s.Wins, s.Losses),
			fmt.Sprintf("$%.2f", s.RealizedPnL),
			pctLabel(s.ROI),
			pctLabel(s.WinRate),
			ratioLabel(s.Sharpe),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  Total realized PnL: $%.2f\n", totalPnL)
	fmt.Fprintln(c.out, "  Entry = lastTradePrice - oneDayPriceChange (pre-resolution estimate)")
}

// PrintTimingWindows imprime la agregación entrada→resolución del case study.
func (c *Console) PrintTimingWindows(windows []domain.TimingWindow) {
	if len(windows) == 0 {
		fmt.Fprintln(c.out, "\n  No timing data available.")
		return
	}

	fmt.Fprintln(c.out, "\n=== ENTRY TIMING — trades bucketed by days to resolution ===")

	table := tablewriter.NewWriter(c.out)
	table.Header("Window", "Trades", "Wins", "Win%", "PnL")

	for _, w := range windows {
		table.Append(
			w.Label,
			fmt.Sprintf("%d", w.Trades),
			fmt.Sprintf("%d", w.Wins),
			pctLabel(w.WinRate),
			fmt.Sprintf("$%.2f", w.PnL),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Trades entered under 1 day before resolution are excluded.")
}

// --- helpers ---

// pctLabel formatea un porcentaje, con "-" para NaN (sin datos).
func pctLabel(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

// ratioLabel formatea un ratio tipo Sharpe, con "-" para NaN.
func ratioLabel(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
