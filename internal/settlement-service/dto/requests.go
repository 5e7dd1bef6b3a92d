package dto

type RegisterRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address,omitempty"` // opcional: derivado do nome
}

type TransferRequest struct {
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount"`
}

// AmountRequest serve para mint e withdraw
type AmountRequest struct {
	Account string  `json:"account" validate:"required"`
	Amount  float64 `json:"amount"`
}

type SetBalanceRequest struct {
	Account string   `json:"account" validate:"required"`
	Balance *float64 `json:"balance" validate:"required"`
}

type UpgradeRequest struct {
	Version int `json:"version" validate:"required,gt=0"`
}

type CreateMarketRequest struct {
	ID               string   `json:"id,omitempty"` // opcional: UUID gerado
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description"`
	Outcomes         []string `json:"outcomes" validate:"required"`
	Category         string   `json:"category"`
	ResolutionSource string   `json:"resolution_source"`
}

type PlaceBetRequest struct {
	BetID   string  `json:"bet_id,omitempty"` // opcional: UUID gerado
	Account string  `json:"account" validate:"required"`
	Outcome *int    `json:"outcome" validate:"required"`
	Amount  float64 `json:"amount"`
}

type ResolveRequest struct {
	WinningOutcome *int `json:"winning_outcome" validate:"required"`
}
