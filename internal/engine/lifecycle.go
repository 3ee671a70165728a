package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"polysim/config"
	"polysim/internal/domain"
	"polysim/internal/ports"
)

// Manager ejecuta el ciclo de vida de las posiciones sobre un portfolio en
// memoria: open → {sold | won | lost}. Los comandos cargan el estado del
// store, operan a través del Manager y persisten el resultado.
//
// Secuencial a propósito: las llamadas de red del provider son los únicos
// puntos de suspensión y se hacen de una en una, en orden de comando.
type Manager struct {
	cfg       config.EngineConfig
	portfolio *domain.Portfolio
	positions []domain.Position
	history   []domain.ClosedRecord // cierres ya persistidos
	closedNew []domain.ClosedRecord // cierres de esta invocación
	now       func() time.Time
}

// NewManager crea un Manager sobre el estado cargado del store.
func NewManager(cfg config.EngineConfig, p *domain.Portfolio, positions []domain.Position, history []domain.ClosedRecord) *Manager {
	return &Manager{
		cfg:       cfg,
		portfolio: p,
		positions: positions,
		history:   history,
		now:       time.Now,
	}
}

// SetClock fija el reloj del manager. Solo para tests.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Positions devuelve las posiciones abiertas actuales.
func (m *Manager) Positions() []domain.Position { return m.positions }

// NewlyClosed devuelve los cierres producidos en esta invocación,
// pendientes de append al historial persistido.
func (m *Manager) NewlyClosed() []domain.ClosedRecord { return m.closedNew }

// Open abre una posición. Valida precio ∈ (0,1) y amount ≤ cash del ledger,
// debita el cash y registra la posición. Invariante al crear:
// shares × entryPrice == cost (tolerancia 1e-4).
func (m *Manager) Open(strategy domain.Strategy, slug, question string, side domain.Side, price, amount float64) (*domain.Position, error) {
	ledger, err := m.portfolio.Ledger(strategy)
	if err != nil {
		return nil, err
	}
	if price <= 0 || price >= 1 {
		return nil, fmt.Errorf("%w: %.4f", domain.ErrInvalidPrice, price)
	}
	if amount <= 0 || amount > ledger.Cash {
		return nil, fmt.Errorf("%w: need %.2f, have %.2f", domain.ErrInsufficientBalance, amount, ledger.Cash)
	}

	pos := domain.Position{
		ID:           uuid.NewString(),
		Strategy:     strategy,
		MarketSlug:   slug,
		Question:     question,
		Side:         side,
		EntryPrice:   price,
		CurrentPrice: price,
		Shares:       amount / price,
		Cost:         amount,
		OpenedAt:     m.now(),
	}

	ledger.Cash -= amount
	m.positions = append(m.positions, pos)
	m.updateCurves()

	return &m.positions[len(m.positions)-1], nil
}

// HasOpen indica si la estrategia ya tiene posición abierta en el mercado.
// Una estrategia nunca abre una segunda posición en el mismo mercado.
func (m *Manager) HasOpen(strategy domain.Strategy, slug string) bool {
	for _, p := range m.positions {
		if p.Strategy == strategy && p.MarketSlug == slug {
			return true
		}
	}
	return false
}

// ExecuteProposals abre posiciones a partir de los proposals de las reglas.
// Descarta precios fuera de banda, deduplica por par mercado+estrategia
// (evaluado al inicio del batch para no partir los pares del arb proxy) y
// salta-y-cuenta los fallos de balance en vez de abortar.
func (m *Manager) ExecuteProposals(proposals []domain.TradeProposal) (opened, skipped int) {
	type pair struct {
		s    domain.Strategy
		slug string
	}
	already := make(map[pair]bool, len(m.positions))
	for _, p := range m.positions {
		already[pair{p.Strategy, p.MarketSlug}] = true
	}

	for _, prop := range proposals {
		if !validProposal(m.cfg, prop) {
			skipped++
			continue
		}
		if already[pair{prop.Strategy, prop.MarketSlug}] {
			skipped++
			continue
		}

		if _, err := m.Open(prop.Strategy, prop.MarketSlug, prop.Question, prop.Side, prop.Price, prop.Amount); err != nil {
			slog.Debug("proposal skipped",
				"strategy", prop.Strategy,
				"market", prop.MarketSlug,
				"err", err,
			)
			skipped++
			continue
		}
		opened++
	}
	return opened, skipped
}

// Refresh actualiza el precio actual de cada posición abierta. Solo toca
// CurrentPrice: ni status ni cash. Las posiciones cuyo mercado el provider
// no resuelve se saltan sin error.
func (m *Manager) Refresh(ctx context.Context, provider ports.MarketProvider) (updated, skipped int) {
	for i := range m.positions {
		pos := &m.positions[i]

		market, err := provider.FetchMarketBySlug(ctx, pos.MarketSlug)
		if err != nil || market == nil {
			if err != nil {
				slog.Warn("refresh: provider failed, skipping", "market", pos.MarketSlug, "err", err)
			}
			skipped++
			continue
		}

		price := market.Price(pos.Side)
		if price == nil {
			skipped++
			continue
		}

		pos.CurrentPrice = *price
		updated++
	}

	m.updateCurves()
	return updated, skipped
}

// Sell cierra una posición manualmente al precio dado, o al precio actual
// del provider si price es nil. Acredita los proceeds al ledger y mueve la
// posición al historial con status sold.
func (m *Manager) Sell(ctx context.Context, provider ports.MarketProvider, id string, price *float64) (*domain.ClosedRecord, error) {
	idx := -1
	for i, p := range m.positions {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("position %q not found", id)
	}
	pos := m.positions[idx]

	var exit float64
	if price != nil {
		exit = *price
	} else {
		market, err := provider.FetchMarketBySlug(ctx, pos.MarketSlug)
		if err != nil {
			return nil, fmt.Errorf("sell %s: %w", pos.MarketSlug, err)
		}
		if market == nil {
			return nil, fmt.Errorf("sell %s: %w", pos.MarketSlug, domain.ErrMarketNotFound)
		}
		p := market.Price(pos.Side)
		if p == nil {
			return nil, fmt.Errorf("sell %s: %w: no price for side %s", pos.MarketSlug, domain.ErrInvalidPrice, pos.Side)
		}
		exit = *p
	}
	if exit <= 0 || exit >= 1 {
		return nil, fmt.Errorf("%w: %.4f", domain.ErrInvalidPrice, exit)
	}

	record := m.closeAt(idx, exit, domain.PositionSold)
	m.updateCurves()
	return &record, nil
}

// Resolve cierra en batch las posiciones cuyos mercados ya resolvieron.
// Itera en orden inverso de índice para poder eliminar in-place sin saltar
// ni duplicar entradas. Los fallos del provider y los mercados aún abiertos
// se saltan y cuentan; el batch nunca aborta.
func (m *Manager) Resolve(ctx context.Context, provider ports.MarketProvider) (resolved, skipped int) {
	for i := len(m.positions) - 1; i >= 0; i-- {
		pos := m.positions[i]

		market, err := provider.FetchMarketBySlug(ctx, pos.MarketSlug)
		if err != nil || market == nil {
			if err != nil {
				slog.Warn("resolve: provider failed, skipping", "market", pos.MarketSlug, "err", err)
			}
			skipped++
			continue
		}
		if !market.Closeable() {
			skipped++
			continue
		}

		exit, ok := resolveExitPrice(*market, pos.Side)
		if !ok {
			skipped++
			continue
		}

		status := domain.PositionLost
		if exit == 1.0 {
			status = domain.PositionWon
		}
		m.closeAt(i, exit, status)
		resolved++
	}

	m.updateCurves()
	return resolved, skipped
}

// resolveExitPrice aplica el orden de resolución del exit price:
//  1. outcome explícito del provider comparado con el side (1.0 / 0.0)
//  2. closed pero no resolved → skip, reintentar en la próxima invocación
//  3. fallback: sin outcome declarado, precio del side ≥0.99 → 1.0, ≤0.01 → 0.0
func resolveExitPrice(market domain.MarketRecord, side domain.Side) (float64, bool) {
	if won, stated := market.WonBy(side); stated {
		if won {
			return 1.0, true
		}
		return 0.0, true
	}

	if !market.Resolved {
		return 0, false
	}

	price := market.Price(side)
	if price == nil {
		return 0, false
	}
	switch {
	case *price >= 0.99:
		return 1.0, true
	case *price <= 0.01:
		return 0.0, true
	}
	return 0, false
}

// closeAt cierra la posición en el índice dado: acredita proceeds al ledger,
// la elimina de las abiertas y registra el ClosedRecord.
func (m *Manager) closeAt(idx int, exit float64, status domain.PositionStatus) domain.ClosedRecord {
	pos := m.positions[idx]
	record := pos.Close(exit, status, m.now())

	if ledger, err := m.portfolio.Ledger(pos.Strategy); err == nil {
		ledger.Cash += record.Proceeds
	}

	m.positions = append(m.positions[:idx], m.positions[idx+1:]...)
	m.closedNew = append(m.closedNew, record)
	return record
}

// updateCurves registra el equity de cada estrategia en su curva. Corre tras
// cada operación que muta cash o precios, para todas las estrategias:
// equity = cash + Σ valor de mercado de las posiciones abiertas.
func (m *Manager) updateCurves() {
	date := domain.CurveDate(m.now())

	openValue := make(map[domain.Strategy]float64, len(domain.AllStrategies))
	for _, p := range m.positions {
		openValue[p.Strategy] += p.MarketValue()
	}

	for _, s := range domain.AllStrategies {
		ledger := m.portfolio.Ledgers[s]
		ledger.RecordEquity(date, ledger.Cash+openValue[s])
	}
}
