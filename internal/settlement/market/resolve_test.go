package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/ledger"
)

func TestResolveYesNoScenario(t *testing.T) {
	l, m := setup(t, map[string]float64{"x": 100, "y": 300})
	_, err := m.CreateMarket(yesNo("M"), t0)
	require.NoError(t, err)
	_, err = m.PlaceBet("bet1", "x", "M", 0, 100, t0)
	require.NoError(t, err)
	_, err = m.PlaceBet("bet2", "y", "M", 1, 300, t0)
	require.NoError(t, err)

	payouts, err := m.Resolve("M", 0, t0)
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	assert.Equal(t, domain.Payout{BetID: "bet1", Account: ledger.DeriveAddress("x"), Amount: 400, Won: true}, payouts[0])
	assert.Equal(t, domain.Payout{BetID: "bet2", Account: ledger.DeriveAddress("y"), Amount: 0}, payouts[1])
	assert.Equal(t, 400.0, l.Balance("x"))
	assert.Zero(t, l.Balance("y"))
	assert.Zero(t, m.Escrow().Total())

	mk, _ := m.Market("M")
	assert.Equal(t, domain.MarketResolved, mk.Status)
	require.NotNil(t, mk.WinningOutcome)
	assert.Equal(t, 0, *mk.WinningOutcome)

	b1, _ := m.Bet("bet1")
	b2, _ := m.Bet("bet2")
	assert.Equal(t, domain.BetWon, b1.Status)
	assert.Equal(t, domain.BetLost, b2.Status)
	assert.NotNil(t, b1.SettledAt)
	assert.Empty(t, l.Reconcile())
}

func TestResolveProportionalSplit(t *testing.T) {
	_, m := setup(t, map[string]float64{"a": 1000, "b": 1000, "c": 1000})
	_, err := m.CreateMarket(domain.MarketSpec{ID: "m", Title: "t", Outcomes: []string{"A", "B", "C"}}, t0)
	require.NoError(t, err)

	bets := []struct {
		id, account string
		outcome     int
		amount      float64
	}{
		{"1", "a", 0, 10},
		{"2", "b", 0, 20},
		{"3", "c", 1, 0.7},
		{"4", "a", 2, 33.3},
		{"5", "c", 0, 0.1},
	}
	for _, b := range bets {
		_, err := m.PlaceBet(b.id, b.account, "m", b.outcome, b.amount, t0)
		require.NoError(t, err)
	}
	const total, winning = 10 + 20 + 0.7 + 33.3 + 0.1, 10 + 20 + 0.1

	payouts, err := m.Resolve("m", 0, t0)
	require.NoError(t, err)
	require.Len(t, payouts, 5)

	var sum float64
	for i, p := range payouts {
		assert.Equal(t, bets[i].id, p.BetID, "processing order")
		if bets[i].outcome == 0 {
			assert.InDelta(t, bets[i].amount*total/winning, p.Amount, 1e-9)
			assert.True(t, p.Won)
		} else {
			assert.Zero(t, p.Amount)
		}
		sum += p.Amount
	}
	assert.InDelta(t, total, sum, 1e-9)
}

func TestResolveEmptyWinningPoolRefunds(t *testing.T) {
	l, m := setup(t, map[string]float64{"x": 100, "y": 100})
	_, err := m.CreateMarket(yesNo("m"), t0)
	require.NoError(t, err)
	_, err = m.PlaceBet("b1", "x", "m", 1, 60, t0)
	require.NoError(t, err)
	_, err = m.PlaceBet("b2", "y", "m", 1, 40, t0)
	require.NoError(t, err)

	payouts, err := m.Resolve("m", 0, t0)
	require.NoError(t, err)
	for _, p := range payouts {
		assert.True(t, p.Refund)
		assert.False(t, p.Won)
	}
	assert.Equal(t, 100.0, l.Balance("x"))
	assert.Equal(t, 100.0, l.Balance("y"))
}

func TestResolveTwiceFails(t *testing.T) {
	l, m := setup(t, map[string]float64{"x": 100, "y": 300})
	_, err := m.CreateMarket(yesNo("M"), t0)
	require.NoError(t, err)
	_, err = m.PlaceBet("bet1", "x", "M", 0, 100, t0)
	require.NoError(t, err)
	_, err = m.PlaceBet("bet2", "y", "M", 1, 300, t0)
	require.NoError(t, err)
	_, err = m.Resolve("M", 0, t0)
	require.NoError(t, err)
	txCount := len(l.Transactions())

	payouts, err := m.Resolve("M", 1, t0)
	assert.ErrorIs(t, err, domain.ErrMarketAlreadyResolved)
	assert.Nil(t, payouts)
	assert.Equal(t, 400.0, l.Balance("x"))
	assert.Len(t, l.Transactions(), txCount)

	mk, _ := m.Market("M")
	assert.Equal(t, []float64{100, 300}, mk.Pools)
	assert.Equal(t, 0, *mk.WinningOutcome)
}

func TestResolveValidation(t *testing.T) {
	_, m := setup(t, nil)
	_, err := m.CreateMarket(yesNo("M"), t0)
	require.NoError(t, err)

	_, err = m.Resolve("nope", 0, t0)
	assert.ErrorIs(t, err, domain.ErrUnknownMarket)
	_, err = m.Resolve("M", 2, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidOutcomeIndex)

	mk, _ := m.Market("M")
	assert.Equal(t, domain.MarketOpen, mk.Status)
}

func TestResolveStagingFailureLeavesMarketIntact(t *testing.T) {
	l, m := setup(t, map[string]float64{"x": 100, "y": 100})
	_, err := m.CreateMarket(yesNo("M"), t0)
	require.NoError(t, err)
	_, err = m.PlaceBet("b1", "x", "M", 0, 50, t0)
	require.NoError(t, err)
	_, err = m.PlaceBet("b2", "y", "M", 1, 50, t0)
	require.NoError(t, err)

	// escrow liberado por fora: o staging tem que detectar antes de pagar
	_, err = m.Escrow().ReleaseLoss("b2", t0)
	require.NoError(t, err)

	_, err = m.Resolve("M", 0, t0)
	require.ErrorIs(t, err, domain.ErrEscrowNotFound)

	assert.Equal(t, 50.0, l.Balance("x"))
	b1, _ := m.Bet("b1")
	assert.Equal(t, domain.BetLocked, b1.Status)
	_, ok := m.Escrow().Entry("b1")
	assert.True(t, ok)
	mk, _ := m.Market("M")
	assert.Equal(t, domain.MarketOpen, mk.Status)
	assert.Nil(t, mk.WinningOutcome)
}

func TestPayoutForIsExactOnTerminatingDecimals(t *testing.T) {
	got, err := payoutFor(100, 400, 100)
	require.NoError(t, err)
	assert.Equal(t, 400.0, got)

	got, err = payoutFor(0.1, 0.3, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, got, 1e-15)
}
