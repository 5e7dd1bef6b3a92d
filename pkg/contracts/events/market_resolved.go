package events

import "time"

type Payout struct {
	BetID   string  `json:"betId"`
	Account string  `json:"account"`
	Amount  float64 `json:"amount"`
	Won     bool    `json:"won"`
	Refund  bool    `json:"refund,omitempty"`
}

// Evento emitido após a liquidação de um mercado.
type MarketResolved struct {
	MarketID       string    `json:"marketId"`
	WinningOutcome int       `json:"winningOutcome"`
	Payouts        []Payout  `json:"payouts"`
	JournalSeq     uint64    `json:"journalSeq"`
	Ts             time.Time `json:"ts"`
}
