package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/radieske/prediction-ledger/pkg/contracts/events"
)

// client serializa as escritas numa conexão (gorilla não aceita escritores
// concorrentes).
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) write(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por mercado
// subs: mapeia marketID para o conjunto de clientes inscritos
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em mercados e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.MarketID == "" {
				h.reply(c, ServerMsg{Type: "error", Payload: "marketId required"})
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.MarketID]; !ok {
				h.subs[msg.MarketID] = make(map[*client]struct{})
			}
			h.subs[msg.MarketID][c] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.MarketID]; ok {
				delete(m, c)
				if len(m) == 0 {
					delete(h.subs, msg.MarketID)
				}
			}
			h.mu.Unlock()
		case "ping":
			h.reply(c, ServerMsg{Type: "pong"})
		}
	}
	// Remove o cliente de todas as assinaturas ao desconectar
	h.mu.Lock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) reply(c *client, msg ServerMsg) {
	b, _ := json.Marshal(msg)
	_ = c.write(b)
}

// Subscribers retorna quantos clientes acompanham o mercado
func (h *Hub) Subscribers(marketID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[marketID])
}

// Broadcast envia a atualização a todos os clientes inscritos no mercado
func (h *Hub) Broadcast(update events.MarketUpdate) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.subs[update.MarketID]))
	for c := range h.subs[update.MarketID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	b, _ := json.Marshal(ServerMsg{Type: "update", MarketID: update.MarketID, Payload: update})
	for _, c := range clients {
		_ = c.write(b)
	}
}
