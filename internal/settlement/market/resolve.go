package market

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

// decimal128 é suficiente para que o único arredondamento seja a conversão
// final para float64.
var decCtx = apd.BaseContext.WithPrecision(34)

// settlement é uma liquidação já calculada e validada, ainda não aplicada.
type settlement struct {
	bet    *domain.Bet
	payout float64
	won    bool
	refund bool
}

// Resolve liquida o mercado de forma pari-mutuel. Todos os payouts são
// calculados e validados antes de qualquer crédito; se algo falha nessa
// fase o mercado permanece intacto. Depois do commit não há volta.
func (m *Manager) Resolve(marketID string, winner int, at time.Time) ([]domain.Payout, error) {
	mk, err := m.get(marketID)
	if err != nil {
		return nil, err
	}
	if mk.Status == domain.MarketResolved {
		return nil, fmt.Errorf("%w: %s", domain.ErrMarketAlreadyResolved, marketID)
	}
	if winner < 0 || winner >= len(mk.Outcomes) {
		return nil, fmt.Errorf("%w: %d (market has %d outcomes)", domain.ErrInvalidOutcomeIndex, winner, len(mk.Outcomes))
	}

	plan, err := m.stage(mk, winner)
	if err != nil {
		return nil, err
	}

	payouts := make([]domain.Payout, 0, len(plan))
	for _, s := range plan {
		var rerr error
		if s.won {
			_, rerr = m.escrow.ReleaseWin(s.bet.ID, s.payout, at)
		} else {
			_, rerr = m.escrow.ReleaseLoss(s.bet.ID, at)
		}
		if rerr != nil {
			// plano validado não pode falhar aqui; estado parcial não é recuperável
			panic(fmt.Sprintf("market %s: commit of bet %s failed: %v", marketID, s.bet.ID, rerr))
		}

		settledAt := at
		s.bet.SettledAt = &settledAt
		s.bet.Payout = s.payout
		if s.won {
			s.bet.Status = domain.BetWon
		} else {
			s.bet.Status = domain.BetLost
		}
		payouts = append(payouts, domain.Payout{
			BetID: s.bet.ID, Account: s.bet.Account, Amount: s.payout, Won: s.won && !s.refund, Refund: s.refund,
		})
	}

	w := winner
	mk.WinningOutcome = &w
	mk.Status = domain.MarketResolved
	mk.ResolvedAt = &at
	return payouts, nil
}

// stage calcula o payout de cada aposta travada e confere o escrow, sem
// mutar nada.
func (m *Manager) stage(mk *domain.Market, winner int) ([]settlement, error) {
	total := totalPool(mk.Pools)
	winningPool := mk.Pools[winner]

	var plan []settlement
	for _, i := range m.byMarket[mk.ID] {
		bet := m.bets[i]
		if bet.Status != domain.BetLocked {
			continue
		}

		entry, ok := m.escrow.Entry(bet.ID)
		if !ok {
			return nil, fmt.Errorf("%w: bet %s has no active escrow", domain.ErrEscrowNotFound, bet.ID)
		}
		if entry.MarketID != mk.ID || entry.Amount != bet.Amount {
			return nil, fmt.Errorf("%w: escrow for bet %s does not match the bet", domain.ErrEscrowNotFound, bet.ID)
		}

		switch {
		case winningPool == 0:
			plan = append(plan, settlement{bet: bet, payout: bet.Amount, won: true, refund: true})
		case bet.OutcomeIndex == winner:
			payout, err := payoutFor(bet.Amount, total, winningPool)
			if err != nil {
				return nil, fmt.Errorf("%w: payout for bet %s: %v", domain.ErrInvalidAmount, bet.ID, err)
			}
			plan = append(plan, settlement{bet: bet, payout: payout, won: true})
		default:
			plan = append(plan, settlement{bet: bet})
		}
	}
	return plan, nil
}

// payoutFor calcula amount × total / winningPool em decimal.
func payoutFor(amount, total, winningPool float64) (float64, error) {
	var a, t, w, num, q apd.Decimal
	if _, err := a.SetFloat64(amount); err != nil {
		return 0, err
	}
	if _, err := t.SetFloat64(total); err != nil {
		return 0, err
	}
	if _, err := w.SetFloat64(winningPool); err != nil {
		return 0, err
	}
	if _, err := decCtx.Mul(&num, &a, &t); err != nil {
		return 0, err
	}
	if _, err := decCtx.Quo(&q, &num, &w); err != nil {
		return 0, err
	}
	return q.Float64()
}

func totalPool(pools []float64) float64 {
	var sum float64
	for _, p := range pools {
		sum += p
	}
	return sum
}

// impliedPrices aplica a regra de soma constante: pool_i / total.
// Sem liquidez, os preços são uniformes.
func impliedPrices(pools []float64, total float64) []float64 {
	out := make([]float64, len(pools))
	for i, p := range pools {
		if total == 0 {
			out[i] = 1 / float64(len(pools))
			continue
		}
		out[i] = p / total
	}
	return out
}
