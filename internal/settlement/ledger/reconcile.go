package ledger

import (
	"math"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

// Mismatch descreve uma conta cujo saldo em cache diverge do log.
type Mismatch struct {
	Address  string  `json:"address"`
	Cached   float64 `json:"cached"`
	Replayed float64 `json:"replayed"`
}

// Replay recalcula os saldos gastáveis a partir do log de transações.
func Replay(txs []domain.Transaction) map[string]float64 {
	bal := make(map[string]float64)
	for _, tx := range txs {
		switch tx.Kind {
		case domain.TxTransfer:
			bal[tx.From] -= tx.Amount
			bal[tx.To] += tx.Amount
		case domain.TxDeposit, domain.TxAdminSet:
			bal[tx.To] += tx.Amount
		case domain.TxWithdrawal, domain.TxBetLock:
			bal[tx.From] -= tx.Amount
		case domain.TxBetSettle:
			if tx.Outcome == domain.OutcomeWon {
				bal[tx.To] += tx.Amount
			}
		}
	}
	return bal
}

// Reconcile compara cada saldo em cache com o saldo reconstruído pelo log.
func (l *Ledger) Reconcile() []Mismatch {
	replayed := Replay(l.txs)
	var out []Mismatch
	for _, a := range l.accounts {
		r := replayed[a.Address]
		if !closeEnough(a.Balance, r) {
			out = append(out, Mismatch{Address: a.Address, Cached: a.Balance, Replayed: r})
		}
	}
	return out
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
