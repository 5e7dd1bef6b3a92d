package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/journal"
)

// command é uma mutação serializável. Os argumentos carregam tudo que a
// execução precisa, incluindo ids gerados, para que o replay reproduza o
// mesmo estado.
type command interface {
	op() string
	apply(s *State, at time.Time) (any, error)
}

type registerCmd struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

func (registerCmd) op() string { return journal.OpRegister }
func (c registerCmd) apply(s *State, at time.Time) (any, error) {
	return s.Ledger.Register(c.Name, c.Address, at)
}

type mintCmd struct {
	Account string  `json:"account"`
	Amount  float64 `json:"amount"`
}

func (mintCmd) op() string { return journal.OpMint }
func (c mintCmd) apply(s *State, at time.Time) (any, error) {
	return s.Ledger.Mint(c.Account, c.Amount, at)
}

type withdrawCmd struct {
	Account string  `json:"account"`
	Amount  float64 `json:"amount"`
}

func (withdrawCmd) op() string { return journal.OpWithdraw }
func (c withdrawCmd) apply(s *State, at time.Time) (any, error) {
	return s.Ledger.Withdraw(c.Account, c.Amount, at)
}

type transferCmd struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

func (transferCmd) op() string { return journal.OpTransfer }
func (c transferCmd) apply(s *State, at time.Time) (any, error) {
	return s.Ledger.Transfer(c.From, c.To, c.Amount, at)
}

type adminSetCmd struct {
	Account string  `json:"account"`
	Balance float64 `json:"balance"`
}

func (adminSetCmd) op() string { return journal.OpAdminSetBalance }
func (c adminSetCmd) apply(s *State, at time.Time) (any, error) {
	return s.Ledger.AdminSetBalance(c.Account, c.Balance, at)
}

type createMarketCmd struct {
	Spec domain.MarketSpec `json:"spec"`
}

func (createMarketCmd) op() string { return journal.OpCreateMarket }
func (c createMarketCmd) apply(s *State, at time.Time) (any, error) {
	return s.Markets.CreateMarket(c.Spec, at)
}

type closeMarketCmd struct {
	MarketID string `json:"market_id"`
}

func (closeMarketCmd) op() string { return journal.OpCloseMarket }
func (c closeMarketCmd) apply(s *State, at time.Time) (any, error) {
	if err := s.Markets.CloseMarket(c.MarketID, at); err != nil {
		return nil, err
	}
	mk, _ := s.Markets.Market(c.MarketID)
	return mk, nil
}

type placeBetCmd struct {
	BetID    string  `json:"bet_id"`
	Account  string  `json:"account"`
	MarketID string  `json:"market_id"`
	Outcome  int     `json:"outcome"`
	Amount   float64 `json:"amount"`
}

func (placeBetCmd) op() string { return journal.OpPlaceBet }
func (c placeBetCmd) apply(s *State, at time.Time) (any, error) {
	return s.Markets.PlaceBet(c.BetID, c.Account, c.MarketID, c.Outcome, c.Amount, at)
}

type resolveCmd struct {
	MarketID string `json:"market_id"`
	Winner   int    `json:"winner"`
}

func (resolveCmd) op() string { return journal.OpResolveMarket }
func (c resolveCmd) apply(s *State, at time.Time) (any, error) {
	return s.Markets.Resolve(c.MarketID, c.Winner, at)
}

type upgradeCmd struct {
	Version int `json:"version"`

	migrations map[int]Migration
}

func (upgradeCmd) op() string { return journal.OpUpgrade }

// apply roda as migrações pendentes sobre uma cópia e só troca o estado se
// todas passarem.
func (c upgradeCmd) apply(s *State, _ time.Time) (any, error) {
	if c.Version <= s.Version {
		return nil, fmt.Errorf("%w: version %d is not newer than %d", domain.ErrInvalidUpgrade, c.Version, s.Version)
	}
	pending := make([]Migration, 0, c.Version-s.Version)
	for v := s.Version + 1; v <= c.Version; v++ {
		m, ok := c.migrations[v]
		if !ok {
			return nil, fmt.Errorf("%w: no migration registered for version %d", domain.ErrInvalidUpgrade, v)
		}
		pending = append(pending, m)
	}

	next := s.Clone()
	for _, m := range pending {
		if err := m.Apply(next); err != nil {
			return nil, fmt.Errorf("%w: migration %d (%s): %v", domain.ErrInvalidUpgrade, m.Version, m.Name, err)
		}
		next.Version = m.Version
	}
	*s = *next
	return UpgradeResult{Version: next.Version}, nil
}

// UpgradeResult é o resultado registrado de um upgrade.
type UpgradeResult struct {
	Version int `json:"version"`
}

var factories = map[string]func() command{
	journal.OpRegister:        func() command { return &registerCmd{} },
	journal.OpMint:            func() command { return &mintCmd{} },
	journal.OpWithdraw:        func() command { return &withdrawCmd{} },
	journal.OpTransfer:        func() command { return &transferCmd{} },
	journal.OpAdminSetBalance: func() command { return &adminSetCmd{} },
	journal.OpCreateMarket:    func() command { return &createMarketCmd{} },
	journal.OpCloseMarket:     func() command { return &closeMarketCmd{} },
	journal.OpPlaceBet:        func() command { return &placeBetCmd{} },
	journal.OpResolveMarket:   func() command { return &resolveCmd{} },
	journal.OpUpgrade:         func() command { return &upgradeCmd{} },
}

func decode(rec journal.Record) (command, error) {
	newCmd, ok := factories[rec.Op]
	if !ok {
		return nil, fmt.Errorf("unknown journal op %q at seq %d", rec.Op, rec.Seq)
	}
	c := newCmd()
	if err := json.Unmarshal(rec.Args, c); err != nil {
		return nil, fmt.Errorf("decode %s args at seq %d: %w", rec.Op, rec.Seq, err)
	}
	return c, nil
}
