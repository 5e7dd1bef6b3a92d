package events

import "time"

// Evento publicado no canal Redis e repassado aos clientes websocket
type OutcomePrice struct {
	Label string  `json:"label"`
	Pool  float64 `json:"pool"`
	Price float64 `json:"price"`
}

type MarketUpdate struct {
	MarketID    string         `json:"market_id"`
	Status      string         `json:"status"` // "open" | "closed" | "resolved"
	Outcomes    []OutcomePrice `json:"outcomes"`
	TotalVolume float64        `json:"total_volume"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Version     uint64         `json:"version"` // seq do journal que gerou a atualização
}
