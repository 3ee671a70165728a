package domain

// TradeProposal es un trade candidato emitido por una regla de estrategia.
// Efímero: el lifecycle manager lo consume inmediatamente, nunca se persiste.
type TradeProposal struct {
	Strategy   Strategy
	MarketSlug string
	Question   string
	Side       Side
	Price      float64
	Amount     float64 // USDC a comprometer
	Reason     string
}
