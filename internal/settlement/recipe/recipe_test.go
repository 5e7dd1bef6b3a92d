package recipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

func names(a string) string {
	switch a {
	case "L1_a":
		return "alice"
	case "L1_b":
		return "bob"
	}
	return a
}

func TestProject(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		tx       domain.Transaction
		wantType domain.RecipeType
		wantAcc  string
		wantDesc string
	}{
		{
			"transfer",
			domain.Transaction{Kind: domain.TxTransfer, From: "L1_a", To: "L1_b", Amount: 12.5},
			domain.RecipeTransfer, "alice", "Transfer 12.5 BB from alice to bob",
		},
		{
			"deposit",
			domain.Transaction{Kind: domain.TxDeposit, From: domain.SystemMint, To: "L1_a", Amount: 50},
			domain.RecipeDeposit, "alice", "Deposit 50 BB to alice",
		},
		{
			"withdrawal",
			domain.Transaction{Kind: domain.TxWithdrawal, From: "L1_b", To: domain.SystemBurn, Amount: 3},
			domain.RecipeWithdrawal, "bob", "Withdrawal 3 BB from bob",
		},
		{
			"bet placed",
			domain.Transaction{Kind: domain.TxBetLock, From: "L1_a", To: "escrow:m1", Amount: 100, MarketID: "m1", BetID: "b1"},
			domain.RecipeBetPlaced, "alice", "Bet 100 BB on market m1",
		},
		{
			"bet won",
			domain.Transaction{Kind: domain.TxBetSettle, From: "escrow:m1", To: "L1_a", Amount: 400, MarketID: "m1", BetID: "b1", Outcome: domain.OutcomeWon},
			domain.RecipeBetWon, "alice", "Won 400 BB on market m1",
		},
		{
			"bet lost",
			domain.Transaction{Kind: domain.TxBetSettle, From: "escrow:m1", To: "L1_b", Amount: 300, MarketID: "m1", BetID: "b2", Outcome: domain.OutcomeLost},
			domain.RecipeBetLost, "bob", "Lost 300 BB on market m1",
		},
		{
			"admin set",
			domain.Transaction{Kind: domain.TxAdminSet, From: domain.SystemAdmin, To: "L1_a", Amount: -40},
			domain.RecipeAdminSet, "alice", "Balance of alice adjusted by admin (-40 BB)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.tx.Timestamp = at
			r := Project(tt.tx, names)
			assert.Equal(t, tt.wantType, r.Type)
			assert.Equal(t, tt.wantAcc, r.Account)
			assert.Equal(t, tt.wantDesc, r.Description)
			assert.Equal(t, string(tt.tx.Kind), r.Metadata["tx_type"])
			assert.Equal(t, tt.tx.BetID, r.RelatedID)
			assert.Equal(t, at, r.Timestamp)
		})
	}
}

func TestProjectNilNames(t *testing.T) {
	r := Project(domain.Transaction{Kind: domain.TxDeposit, To: "L1_x", Amount: 1}, nil)
	assert.Equal(t, "L1_x", r.Account)
}

func TestSortedNewestFirstTieBySeq(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rs := []domain.Recipe{
		{ID: "tx_1", Seq: 1, Timestamp: at},
		{ID: "tx_2", Seq: 2, Timestamp: at.Add(time.Minute)},
		{ID: "tx_3", Seq: 3, Timestamp: at},
	}
	got := Sorted(rs)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"tx_2", "tx_3", "tx_1"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestFilterTypeUnknownIsEmpty(t *testing.T) {
	rs := []domain.Recipe{{Type: domain.RecipeDeposit}, {Type: domain.RecipeTransfer}}
	assert.Len(t, FilterType(rs, domain.RecipeDeposit), 1)
	got := FilterType(rs, "nope")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
