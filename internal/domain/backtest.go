package domain

// BacktestTrade es una entrada del trade log de un backtest. A diferencia de
// una Position live, nace ya cerrada: el corpus es de mercados resueltos.
type BacktestTrade struct {
	Strategy   Strategy
	MarketSlug string
	Question   string
	Side       Side
	EntryPrice float64
	ExitPrice  float64 // 0.0 o 1.0
	Shares     float64
	Cost       float64
	Proceeds   float64
	PnL        float64
	Won        bool
	DaysToResolution float64
}

// BacktestSummary son las métricas finales de una estrategia tras el replay.
type BacktestSummary struct {
	Strategy    Strategy
	InitialCash float64
	FinalCash   float64
	Trades      int
	Wins        int
	Losses      int
	RealizedPnL float64
	ROI         float64 // %
	WinRate     float64 // %, NaN sin trades
	Sharpe      float64 // NaN con <3 puntos de curva o stddev≈0
}

// TimingWindow agrega resultados por distancia entrada→resolución.
// Buckets del case study: >30d, 14–30d, 7–14d, 3–7d, 1–3d.
type TimingWindow struct {
	Label    string
	MinDays  float64
	MaxDays  float64 // 0 = sin tope
	Trades   int
	Wins     int
	PnL      float64
	WinRate  float64 // %, NaN sin trades
}
