package domain

import "time"

// MarketStatus representa o estado do mercado: open → closed → resolved
// (ou open → resolved). resolved é terminal.
type MarketStatus string

const (
	MarketOpen     MarketStatus = "open"
	MarketClosed   MarketStatus = "closed"
	MarketResolved MarketStatus = "resolved"
)

// BetStatus representa o estado de uma aposta.
type BetStatus string

const (
	BetLocked BetStatus = "locked"
	BetWon    BetStatus = "won"
	BetLost   BetStatus = "lost"
)

// MarketSpec contém os parâmetros de criação de um mercado.
type MarketSpec struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Outcomes         []string `json:"outcomes"`
	Category         string   `json:"category"`
	ResolutionSource string   `json:"resolution_source"`
}

// Market é um mercado de previsão com pools por resultado.
type Market struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Category         string       `json:"category"`
	Outcomes         []string     `json:"outcomes"`
	Pools            []float64    `json:"pools"`
	Status           MarketStatus `json:"status"`
	ResolutionSource string       `json:"resolution_source"`
	WinningOutcome   *int         `json:"winning_outcome,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	ClosedAt         *time.Time   `json:"closed_at,omitempty"`
	ResolvedAt       *time.Time   `json:"resolved_at,omitempty"`
}

// Clone devolve uma cópia sem aliasing de slices ou ponteiros.
func (m Market) Clone() Market {
	out := m
	out.Outcomes = append([]string(nil), m.Outcomes...)
	out.Pools = append([]float64(nil), m.Pools...)
	if m.WinningOutcome != nil {
		w := *m.WinningOutcome
		out.WinningOutcome = &w
	}
	if m.ClosedAt != nil {
		t := *m.ClosedAt
		out.ClosedAt = &t
	}
	if m.ResolvedAt != nil {
		t := *m.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}

// Bet é uma aposta em um resultado de um mercado.
type Bet struct {
	ID           string     `json:"id"`
	Account      string     `json:"account"`
	MarketID     string     `json:"market_id"`
	OutcomeIndex int        `json:"outcome_index"`
	Amount       float64    `json:"amount"`
	Status       BetStatus  `json:"status"`
	Payout       float64    `json:"payout"`
	Timestamp    time.Time  `json:"timestamp"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

// EscrowEntry existe exatamente enquanto a aposta está travada.
type EscrowEntry struct {
	BetID    string    `json:"bet_id"`
	Account  string    `json:"account"`
	Amount   float64   `json:"amount"`
	MarketID string    `json:"market_id"`
	LockedAt time.Time `json:"locked_at"`
}

// Payout é o resultado da liquidação de uma aposta.
type Payout struct {
	BetID   string  `json:"bet_id"`
	Account string  `json:"account"`
	Amount  float64 `json:"amount"`
	Won     bool    `json:"won"`
	Refund  bool    `json:"refund,omitempty"`
}

// OutcomeStats é o pool e o preço implícito (CSMM) de um resultado.
type OutcomeStats struct {
	Label string  `json:"label"`
	Pool  float64 `json:"pool"`
	Price float64 `json:"price"`
}

// MarketStats resume um mercado para leitura.
type MarketStats struct {
	MarketID       string         `json:"market_id"`
	Status         MarketStatus   `json:"status"`
	Outcomes       []OutcomeStats `json:"outcomes"`
	TotalVolume    float64        `json:"total_volume"`
	BetCount       int            `json:"bet_count"`
	Resolved       bool           `json:"resolved"`
	WinningOutcome *int           `json:"winning_outcome,omitempty"`
}
