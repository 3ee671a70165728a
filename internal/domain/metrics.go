package domain

// StrategyMetrics son las métricas live de una estrategia, derivadas del
// ledger más el historial de cierres. WinRate y Sharpe valen NaN cuando
// están indefinidos (cero trades / curva insuficiente).
type StrategyMetrics struct {
	Strategy      Strategy
	Cash          float64
	Equity        float64
	OpenValue     float64
	OpenCost      float64
	UnrealizedPnL float64
	RealizedPnL   float64
	ROI           float64 // %
	WinRate       float64 // %
	Sharpe        float64
	Wins          int
	Losses        int
	OpenCount     int
	ClosedCount   int
}
