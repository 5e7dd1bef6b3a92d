package domain

import "time"

// Contrapartes de sistema usadas nas transações que não envolvem duas contas.
const (
	SystemMint   = "system:mint"
	SystemBurn   = "system:burn"
	SystemAdmin  = "system:admin"
	EscrowPrefix = "escrow:"
)

// EscrowAccount retorna a contraparte de escrow de um mercado.
func EscrowAccount(marketID string) string { return EscrowPrefix + marketID }

// Account é uma conta do ledger. Balance é apenas o saldo gastável
// (não inclui valores travados em escrow).
type Account struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats agrega números globais do ledger.
type Stats struct {
	TotalSupply      float64 `json:"total_supply"`
	Circulating      float64 `json:"circulating"`
	Escrowed         float64 `json:"escrowed"`
	TransactionCount int     `json:"transaction_count"`
	AccountCount     int     `json:"account_count"`
}
