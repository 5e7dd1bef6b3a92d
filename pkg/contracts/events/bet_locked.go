package events

// Evento publicado no tópico "bet_locked" quando o valor da aposta entra em escrow.
type BetLocked struct {
	BetID      string  `json:"bet_id"`
	Account    string  `json:"account"` // endereço canônico
	MarketID   string  `json:"market_id"`
	Outcome    int     `json:"outcome"`
	Amount     float64 `json:"amount"`
	JournalSeq uint64  `json:"journal_seq"`
	TsUnixMs   int64   `json:"ts_unix_ms"`
}
