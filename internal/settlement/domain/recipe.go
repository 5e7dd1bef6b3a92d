package domain

import "time"

// RecipeType é o tipo de exibição de uma atividade.
type RecipeType string

const (
	RecipeTransfer   RecipeType = "transfer"
	RecipeDeposit    RecipeType = "deposit"
	RecipeWithdrawal RecipeType = "withdrawal"
	RecipeBetPlaced  RecipeType = "bet_placed"
	RecipeBetWon     RecipeType = "bet_won"
	RecipeBetLost    RecipeType = "bet_lost"
	RecipeAdminSet   RecipeType = "admin_set"
)

// Recipe é a projeção de leitura de uma transação. Nunca é persistida.
type Recipe struct {
	ID          string            `json:"id"`
	Seq         uint64            `json:"seq"`
	Type        RecipeType        `json:"type"`
	Account     string            `json:"account"`
	Address     string            `json:"address"`
	Amount      float64           `json:"amount"`
	Description string            `json:"description"`
	RelatedID   string            `json:"related_id,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata"`
}
