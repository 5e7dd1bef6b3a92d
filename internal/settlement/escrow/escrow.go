// Package escrow trava e libera fundos de apostas sobre as primitivas de
// débito/crédito do ledger. Cada aposta tem exatamente uma entrada enquanto
// está travada, e a liberação acontece uma única vez.
package escrow

import (
	"container/list"
	"fmt"
	"math"
	"time"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/ledger"
)

// Escrow mantém as entradas ativas indexadas por bet_id. order guarda a
// ordem de travamento; cada entrada conhece seu nó, então liberar é O(1).
type Escrow struct {
	ledger  *ledger.Ledger
	entries map[string]*list.Element // Value: *domain.EscrowEntry
	order   *list.List
}

// New cria um escrow sobre o ledger informado.
func New(l *ledger.Ledger) *Escrow {
	return &Escrow{ledger: l, entries: make(map[string]*list.Element), order: list.New()}
}

func (e *Escrow) entry(betID string) (*domain.EscrowEntry, bool) {
	el, ok := e.entries[betID]
	if !ok {
		return nil, false
	}
	return el.Value.(*domain.EscrowEntry), true
}

func (e *Escrow) push(en *domain.EscrowEntry) {
	e.entries[en.BetID] = e.order.PushBack(en)
}

// Lock debita a conta e cria a entrada de escrow da aposta.
func (e *Escrow) Lock(account string, amount float64, marketID, betID string, at time.Time) (domain.Transaction, error) {
	if !ledger.ValidAmount(amount) {
		return domain.Transaction{}, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}
	if _, ok := e.entries[betID]; ok {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrDuplicateBet, betID)
	}
	address, ok := e.ledger.Resolve(account)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, account)
	}
	if err := e.ledger.Debit(address, amount); err != nil {
		return domain.Transaction{}, err
	}

	e.push(&domain.EscrowEntry{
		BetID: betID, Account: address, Amount: amount, MarketID: marketID, LockedAt: at,
	})
	return e.ledger.Append(domain.Transaction{
		Kind:      domain.TxBetLock,
		From:      address,
		To:        domain.EscrowAccount(marketID),
		Amount:    amount,
		Timestamp: at,
		MarketID:  marketID,
		BetID:     betID,
	}), nil
}

// ReleaseWin remove a entrada e credita o payout (pode exceder o valor
// travado, financiado pelo pool perdedor).
func (e *Escrow) ReleaseWin(betID string, payout float64, at time.Time) (domain.Transaction, error) {
	entry, ok := e.entry(betID)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrEscrowNotFound, betID)
	}
	if payout < 0 || math.IsNaN(payout) || math.IsInf(payout, 0) {
		return domain.Transaction{}, fmt.Errorf("%w: payout %v", domain.ErrInvalidAmount, payout)
	}
	if err := e.ledger.Credit(entry.Account, payout); err != nil {
		return domain.Transaction{}, err
	}

	e.remove(betID)
	return e.ledger.Append(domain.Transaction{
		Kind:      domain.TxBetSettle,
		From:      domain.EscrowAccount(entry.MarketID),
		To:        entry.Account,
		Amount:    payout,
		Timestamp: at,
		MarketID:  entry.MarketID,
		BetID:     betID,
		Outcome:   domain.OutcomeWon,
	}), nil
}

// ReleaseLoss remove a entrada sem creditar nada; o valor é perdido para
// o pool do mercado.
func (e *Escrow) ReleaseLoss(betID string, at time.Time) (domain.Transaction, error) {
	entry, ok := e.entry(betID)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrEscrowNotFound, betID)
	}

	e.remove(betID)
	return e.ledger.Append(domain.Transaction{
		Kind:      domain.TxBetSettle,
		From:      domain.EscrowAccount(entry.MarketID),
		To:        entry.Account,
		Amount:    entry.Amount,
		Timestamp: at,
		MarketID:  entry.MarketID,
		BetID:     betID,
		Outcome:   domain.OutcomeLost,
		Memo:      "forfeited",
	}), nil
}

func (e *Escrow) remove(betID string) {
	if el, ok := e.entries[betID]; ok {
		e.order.Remove(el)
		delete(e.entries, betID)
	}
}

// Entry retorna a entrada ativa da aposta.
func (e *Escrow) Entry(betID string) (domain.EscrowEntry, bool) {
	entry, ok := e.entry(betID)
	if !ok {
		return domain.EscrowEntry{}, false
	}
	return *entry, true
}

func (e *Escrow) each(fn func(*domain.EscrowEntry)) {
	for el := e.order.Front(); el != nil; el = el.Next() {
		fn(el.Value.(*domain.EscrowEntry))
	}
}

// Entries retorna as entradas ativas em ordem de travamento.
func (e *Escrow) Entries() []domain.EscrowEntry {
	out := make([]domain.EscrowEntry, 0, e.order.Len())
	e.each(func(en *domain.EscrowEntry) { out = append(out, *en) })
	return out
}

// Len é o número de entradas ativas.
func (e *Escrow) Len() int { return e.order.Len() }

// Total soma os valores travados.
func (e *Escrow) Total() float64 {
	var sum float64
	e.each(func(en *domain.EscrowEntry) { sum += en.Amount })
	return sum
}

// AccountTotal soma os valores travados de uma conta (endereço canônico).
func (e *Escrow) AccountTotal(address string) float64 {
	var sum float64
	e.each(func(en *domain.EscrowEntry) {
		if en.Account == address {
			sum += en.Amount
		}
	})
	return sum
}

// Ledger expõe o ledger subjacente.
func (e *Escrow) Ledger() *ledger.Ledger { return e.ledger }

// Clone copia as entradas sobre outro ledger (já clonado).
func (e *Escrow) Clone(l *ledger.Ledger) *Escrow {
	c := &Escrow{ledger: l, entries: make(map[string]*list.Element, len(e.entries)), order: list.New()}
	e.each(func(en *domain.EscrowEntry) {
		cp := *en
		c.push(&cp)
	})
	return c
}
