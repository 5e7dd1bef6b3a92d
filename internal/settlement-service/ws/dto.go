package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// MarketID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type     string `json:"type"`
	MarketID string `json:"marketId"`
}

// ServerMsg é o envelope enviado aos clientes
type ServerMsg struct {
	Type     string      `json:"type"` // update | pong | error
	MarketID string      `json:"marketId,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
}
