package engine

import (
	"strings"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

// CreateMarket abre um mercado. Sem id, um UUID é gerado.
func (e *Engine) CreateMarket(spec domain.MarketSpec) (domain.Market, error) {
	if strings.TrimSpace(spec.ID) == "" {
		spec.ID = e.newID()
	}
	return cast[domain.Market](e.exec(createMarketCmd{Spec: spec}))
}

func (e *Engine) CloseMarket(id string) (domain.Market, error) {
	return cast[domain.Market](e.exec(closeMarketCmd{MarketID: id}))
}

// PlaceBet trava amount da conta no resultado escolhido, com bet id gerado.
func (e *Engine) PlaceBet(account, marketID string, outcome int, amount float64) (domain.Bet, error) {
	return e.PlaceBetWithID(e.newID(), account, marketID, outcome, amount)
}

// PlaceBetWithID é PlaceBet com bet id escolhido pelo chamador.
func (e *Engine) PlaceBetWithID(betID, account, marketID string, outcome int, amount float64) (domain.Bet, error) {
	return cast[domain.Bet](e.exec(placeBetCmd{
		BetID: betID, Account: account, MarketID: marketID, Outcome: outcome, Amount: amount,
	}))
}

// Resolve liquida o mercado e retorna os payouts em ordem de processamento.
func (e *Engine) Resolve(marketID string, winner int) ([]domain.Payout, error) {
	return cast[[]domain.Payout](e.exec(resolveCmd{MarketID: marketID, Winner: winner}))
}

func (e *Engine) MarketStats(id string) (domain.MarketStats, error) {
	type result struct {
		st  domain.MarketStats
		err error
	}
	r, err := read(e, func(s *State) result {
		st, err := s.Markets.Stats(id)
		return result{st, err}
	})
	if err != nil {
		return domain.MarketStats{}, err
	}
	return r.st, r.err
}

func (e *Engine) Market(id string) (domain.Market, error) {
	type result struct {
		mk domain.Market
		ok bool
	}
	r, err := read(e, func(s *State) result {
		mk, ok := s.Markets.Market(id)
		return result{mk, ok}
	})
	if err != nil {
		return domain.Market{}, err
	}
	if !r.ok {
		return domain.Market{}, domain.ErrUnknownMarket
	}
	return r.mk, nil
}

func (e *Engine) Markets() ([]domain.Market, error) {
	return read(e, func(s *State) []domain.Market { return s.Markets.Markets() })
}

func (e *Engine) OpenMarkets() ([]domain.Market, error) {
	return read(e, func(s *State) []domain.Market { return s.Markets.OpenMarkets() })
}

// MarketBets retorna as apostas do mercado em ordem de colocação.
func (e *Engine) MarketBets(id string) ([]domain.Bet, error) {
	return read(e, func(s *State) []domain.Bet { return s.Markets.MarketBets(id) })
}

// AccountBets aceita nome ou endereço; conta desconhecida retorna vazio.
func (e *Engine) AccountBets(id string) ([]domain.Bet, error) {
	return read(e, func(s *State) []domain.Bet {
		address, ok := s.Ledger.Resolve(id)
		if !ok {
			return []domain.Bet{}
		}
		return s.Markets.AccountBets(address)
	})
}
