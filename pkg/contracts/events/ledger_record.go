package events

import (
	"encoding/json"
	"time"
)

// Evento publicado no tópico "ledger_journal": espelho de journal.Record
type LedgerRecord struct {
	Seq    uint64          `json:"seq"`
	Op     string          `json:"op"`
	At     time.Time       `json:"at"`
	Args   json.RawMessage `json:"args"`
	Result json.RawMessage `json:"result,omitempty"`
}
