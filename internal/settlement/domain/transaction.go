package domain

import (
	"fmt"
	"time"
)

// TxKind é o motivo de negócio de uma transação.
type TxKind string

const (
	TxTransfer   TxKind = "transfer"
	TxDeposit    TxKind = "deposit"
	TxWithdrawal TxKind = "withdrawal"
	TxBetLock    TxKind = "bet_lock"
	TxBetSettle  TxKind = "bet_settle"
	TxAdminSet   TxKind = "admin_set"
)

// SettleOutcome marca o resultado de um bet_settle.
type SettleOutcome string

const (
	OutcomeWon  SettleOutcome = "won"
	OutcomeLost SettleOutcome = "lost"
)

// Transaction é uma entrada imutável do log. Amount é sempre positivo,
// exceto em admin_set, onde carrega o delta com sinal.
type Transaction struct {
	ID        string        `json:"id"`
	Seq       uint64        `json:"seq"`
	Kind      TxKind        `json:"kind"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Amount    float64       `json:"amount"`
	Timestamp time.Time     `json:"timestamp"`
	MarketID  string        `json:"market_id,omitempty"`
	BetID     string        `json:"bet_id,omitempty"`
	Outcome   SettleOutcome `json:"outcome,omitempty"`
	Memo      string        `json:"memo,omitempty"`
}

// TxID formata o id de uma transação a partir da sequência.
func TxID(seq uint64) string { return fmt.Sprintf("tx_%010d", seq) }

// Involves indica se o endereço participa da transação.
func (t Transaction) Involves(address string) bool {
	return address != "" && (t.From == address || t.To == address)
}
