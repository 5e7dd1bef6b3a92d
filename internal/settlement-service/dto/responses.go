package dto

import (
	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/ledger"
)

type ErrorResponse struct {
	Error   string `json:"error"`   // nome estável do erro (ex: "InsufficientBalance")
	Message string `json:"message"` // detalhe legível
}

type BalanceResponse struct {
	Account string  `json:"account"`
	Balance float64 `json:"balance"`
}

type ResolveResponse struct {
	MarketID string          `json:"market_id"`
	Payouts  []domain.Payout `json:"payouts"`
	Total    float64         `json:"total"`
}

type ReconcileResponse struct {
	OK         bool              `json:"ok"`
	Mismatches []ledger.Mismatch `json:"mismatches"`
}

type UpgradeResponse struct {
	Version int `json:"version"`
}
