// Package journal define o log append-only de comandos do engine e suas
// implementações de armazenamento.
package journal

import (
	"context"
	"encoding/json"
	"time"
)

// Operações registradas no journal.
const (
	OpRegister        = "register"
	OpMint            = "mint"
	OpWithdraw        = "withdraw"
	OpTransfer        = "transfer"
	OpAdminSetBalance = "admin_set_balance"
	OpCreateMarket    = "create_market"
	OpCloseMarket     = "close_market"
	OpPlaceBet        = "place_bet"
	OpResolveMarket   = "resolve_market"
	OpUpgrade         = "upgrade"
)

// Record é um comando bem-sucedido, com o instante e os ids usados na
// execução original, para que o replay seja determinístico.
type Record struct {
	Seq    uint64          `json:"seq"`
	Op     string          `json:"op"`
	At     time.Time       `json:"at"`
	Args   json.RawMessage `json:"args"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Reader lê registros com seq maior que after, em ordem crescente.
type Reader interface {
	Records(ctx context.Context, after uint64) ([]Record, error)
}

// Store é o armazenamento durável do journal. Append é idempotente por seq.
type Store interface {
	Reader
	Append(ctx context.Context, recs ...Record) error
	LastSeq(ctx context.Context) (uint64, error)
}

// MarketID retorna o mercado afetado pelo registro, ou "" para operações
// só de contas.
func (r Record) MarketID() string {
	var args struct {
		MarketID string `json:"market_id"`
		Spec     struct {
			ID string `json:"id"`
		} `json:"spec"`
	}
	switch r.Op {
	case OpCreateMarket, OpCloseMarket, OpPlaceBet, OpResolveMarket:
	default:
		return ""
	}
	if err := json.Unmarshal(r.Args, &args); err != nil {
		return ""
	}
	if args.MarketID != "" {
		return args.MarketID
	}
	return args.Spec.ID
}
