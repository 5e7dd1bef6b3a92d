package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/escrow"
	"github.com/radieske/prediction-ledger/internal/settlement/ledger"
)

// Manager controla o ciclo de vida de mercados e apostas.
// Mercados ficam numa arena (slice) indexada por id, preservando a ordem
// de inserção para os snapshots de leitura.
type Manager struct {
	escrow *escrow.Escrow

	markets []*domain.Market
	index   map[string]int

	bets     []*domain.Bet
	betIndex map[string]int
	byMarket map[string][]int
}

// NewManager cria um manager sobre o escrow informado.
func NewManager(e *escrow.Escrow) *Manager {
	return &Manager{
		escrow:   e,
		index:    make(map[string]int),
		betIndex: make(map[string]int),
		byMarket: make(map[string][]int),
	}
}

func (m *Manager) get(id string) (*domain.Market, error) {
	i, ok := m.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMarket, id)
	}
	return m.markets[i], nil
}

// CreateMarket registra um mercado aberto com pools zerados.
func (m *Manager) CreateMarket(spec domain.MarketSpec, at time.Time) (domain.Market, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		return domain.Market{}, fmt.Errorf("%w: empty id", domain.ErrInvalidMarket)
	}
	if _, ok := m.index[id]; ok {
		return domain.Market{}, fmt.Errorf("%w: %s", domain.ErrDuplicateMarketID, id)
	}
	if strings.TrimSpace(spec.Title) == "" {
		return domain.Market{}, fmt.Errorf("%w: empty title", domain.ErrInvalidMarket)
	}
	if len(spec.Outcomes) < 2 {
		return domain.Market{}, fmt.Errorf("%w: need at least 2 outcomes, got %d", domain.ErrInvalidMarket, len(spec.Outcomes))
	}
	seen := make(map[string]struct{}, len(spec.Outcomes))
	outcomes := make([]string, 0, len(spec.Outcomes))
	for _, o := range spec.Outcomes {
		label := strings.TrimSpace(o)
		if label == "" {
			return domain.Market{}, fmt.Errorf("%w: blank outcome label", domain.ErrInvalidMarket)
		}
		if _, dup := seen[label]; dup {
			return domain.Market{}, fmt.Errorf("%w: duplicate outcome %q", domain.ErrInvalidMarket, label)
		}
		seen[label] = struct{}{}
		outcomes = append(outcomes, label)
	}

	mk := &domain.Market{
		ID:               id,
		Title:            spec.Title,
		Description:      spec.Description,
		Category:         spec.Category,
		Outcomes:         outcomes,
		Pools:            make([]float64, len(outcomes)),
		Status:           domain.MarketOpen,
		ResolutionSource: spec.ResolutionSource,
		CreatedAt:        at,
	}
	m.markets = append(m.markets, mk)
	m.index[id] = len(m.markets) - 1
	return mk.Clone(), nil
}

// CloseMarket para de aceitar apostas (open → closed).
func (m *Manager) CloseMarket(id string, at time.Time) error {
	mk, err := m.get(id)
	if err != nil {
		return err
	}
	switch mk.Status {
	case domain.MarketResolved:
		return fmt.Errorf("%w: %s", domain.ErrMarketAlreadyResolved, id)
	case domain.MarketClosed:
		return fmt.Errorf("%w: %s is already closed", domain.ErrMarketNotOpen, id)
	}
	mk.Status = domain.MarketClosed
	mk.ClosedAt = &at
	return nil
}

// PlaceBet trava o valor em escrow e soma ao pool do resultado escolhido.
func (m *Manager) PlaceBet(betID, account, marketID string, outcome int, amount float64, at time.Time) (domain.Bet, error) {
	mk, err := m.get(marketID)
	if err != nil {
		return domain.Bet{}, err
	}
	if mk.Status != domain.MarketOpen {
		return domain.Bet{}, fmt.Errorf("%w: %s is %s", domain.ErrMarketNotOpen, marketID, mk.Status)
	}
	if outcome < 0 || outcome >= len(mk.Outcomes) {
		return domain.Bet{}, fmt.Errorf("%w: %d (market has %d outcomes)", domain.ErrInvalidOutcomeIndex, outcome, len(mk.Outcomes))
	}
	if !ledger.ValidAmount(amount) {
		return domain.Bet{}, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}
	if _, dup := m.betIndex[betID]; dup {
		return domain.Bet{}, fmt.Errorf("%w: %s", domain.ErrDuplicateBet, betID)
	}

	tx, err := m.escrow.Lock(account, amount, marketID, betID, at)
	if err != nil {
		return domain.Bet{}, err
	}

	bet := &domain.Bet{
		ID:           betID,
		Account:      tx.From,
		MarketID:     marketID,
		OutcomeIndex: outcome,
		Amount:       amount,
		Status:       domain.BetLocked,
		Timestamp:    at,
	}
	m.bets = append(m.bets, bet)
	m.betIndex[betID] = len(m.bets) - 1
	m.byMarket[marketID] = append(m.byMarket[marketID], len(m.bets)-1)
	mk.Pools[outcome] += amount
	return *bet, nil
}

// Stats retorna pools, preços implícitos (CSMM) e volume do mercado.
func (m *Manager) Stats(id string) (domain.MarketStats, error) {
	mk, err := m.get(id)
	if err != nil {
		return domain.MarketStats{}, err
	}
	total := totalPool(mk.Pools)
	prices := impliedPrices(mk.Pools, total)

	st := domain.MarketStats{
		MarketID:    mk.ID,
		Status:      mk.Status,
		Outcomes:    make([]domain.OutcomeStats, len(mk.Outcomes)),
		TotalVolume: total,
		BetCount:    len(m.byMarket[id]),
		Resolved:    mk.Status == domain.MarketResolved,
	}
	for i, label := range mk.Outcomes {
		st.Outcomes[i] = domain.OutcomeStats{Label: label, Pool: mk.Pools[i], Price: prices[i]}
	}
	if mk.WinningOutcome != nil {
		w := *mk.WinningOutcome
		st.WinningOutcome = &w
	}
	return st, nil
}

// Market retorna uma cópia do mercado.
func (m *Manager) Market(id string) (domain.Market, bool) {
	i, ok := m.index[id]
	if !ok {
		return domain.Market{}, false
	}
	return m.markets[i].Clone(), true
}

// Markets retorna um snapshot imutável de todos os mercados, em ordem de
// criação.
func (m *Manager) Markets() []domain.Market {
	out := make([]domain.Market, 0, len(m.markets))
	for _, mk := range m.markets {
		out = append(out, mk.Clone())
	}
	return out
}

// OpenMarkets retorna apenas os mercados abertos.
func (m *Manager) OpenMarkets() []domain.Market {
	out := []domain.Market{}
	for _, mk := range m.markets {
		if mk.Status == domain.MarketOpen {
			out = append(out, mk.Clone())
		}
	}
	return out
}

// Bet retorna uma cópia da aposta.
func (m *Manager) Bet(id string) (domain.Bet, bool) {
	i, ok := m.betIndex[id]
	if !ok {
		return domain.Bet{}, false
	}
	return *m.bets[i], true
}

// AccountBets retorna as apostas da conta (endereço canônico) em ordem.
func (m *Manager) AccountBets(address string) []domain.Bet {
	out := []domain.Bet{}
	for _, b := range m.bets {
		if b.Account == address {
			out = append(out, *b)
		}
	}
	return out
}

// MarketBets retorna as apostas de um mercado em ordem de colocação.
func (m *Manager) MarketBets(id string) []domain.Bet {
	out := []domain.Bet{}
	for _, i := range m.byMarket[id] {
		out = append(out, *m.bets[i])
	}
	return out
}

// Escrow expõe o escrow subjacente.
func (m *Manager) Escrow() *escrow.Escrow { return m.escrow }

// Clone copia mercados e apostas sobre outro escrow (já clonado).
func (m *Manager) Clone(e *escrow.Escrow) *Manager {
	c := NewManager(e)
	for _, mk := range m.markets {
		cp := mk.Clone()
		c.markets = append(c.markets, &cp)
	}
	for k, v := range m.index {
		c.index[k] = v
	}
	for _, b := range m.bets {
		cp := *b
		if b.SettledAt != nil {
			t := *b.SettledAt
			cp.SettledAt = &t
		}
		c.bets = append(c.bets, &cp)
	}
	for k, v := range m.betIndex {
		c.betIndex[k] = v
	}
	for k, v := range m.byMarket {
		c.byMarket[k] = append([]int(nil), v...)
	}
	return c
}
