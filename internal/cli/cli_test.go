package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/engine"
	"github.com/radieske/prediction-ledger/internal/settlement/journal"
	"github.com/radieske/prediction-ledger/internal/shared/db"
)

// seedJournal grava um journal sqlite com um mercado resolvido.
func seedJournal(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	sqlDB, err := db.OpenSQLite(path)
	require.NoError(t, err)
	defer sqlDB.Close()
	store, err := journal.NewSQLiteStore(ctx, sqlDB)
	require.NoError(t, err)

	outbox := journal.NewOutbox()
	e := engine.New(engine.WithRecorder(outbox))
	_, err = e.Register("a", "")
	require.NoError(t, err)
	_, err = e.Register("b", "")
	require.NoError(t, err)
	_, err = e.Mint("a", 100)
	require.NoError(t, err)
	_, err = e.Mint("b", 50)
	require.NoError(t, err)
	_, err = e.CreateMarket(domain.MarketSpec{ID: "m1", Title: "rain?", Outcomes: []string{"YES", "NO"}})
	require.NoError(t, err)
	_, err = e.CreateMarket(domain.MarketSpec{ID: "m2", Title: "sun?", Outcomes: []string{"YES", "NO"}})
	require.NoError(t, err)
	_, err = e.PlaceBet("a", "m1", 0, 10)
	require.NoError(t, err)
	_, err = e.PlaceBet("b", "m1", 1, 20)
	require.NoError(t, err)
	_, err = e.Resolve("m1", 0)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, outbox.Drain()...))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// flags de pacote sobrevivem entre execuções
	require.NoError(t, recipesCmd.Flags().Set("type", ""))
	require.NoError(t, marketsCmd.Flags().Set("open", "false"))

	var out bytes.Buffer
	err := Execute(context.Background(), args, &out)
	return out.String(), err
}

func TestReplayPrintsStats(t *testing.T) {
	path := seedJournal(t)

	out, err := run(t, "replay", "--driver", "sqlite", "--sqlite", path)
	require.NoError(t, err)

	var got struct {
		Seq   uint64       `json:"seq"`
		Stats domain.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, uint64(9), got.Seq)
	assert.Equal(t, 150.0, got.Stats.TotalSupply)
	assert.Equal(t, 150.0, got.Stats.Circulating)
	assert.Zero(t, got.Stats.Escrowed)
	assert.Equal(t, 2, got.Stats.AccountCount)
}

func TestVerify(t *testing.T) {
	path := seedJournal(t)

	out, err := run(t, "verify", "--driver", "sqlite", "--sqlite", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK 2 accounts")
}

func TestRecipesFilters(t *testing.T) {
	path := seedJournal(t)

	out, err := run(t, "recipes", "a", "--type", "bet_won", "--driver", "sqlite", "--sqlite", path)
	require.NoError(t, err)
	var rs []domain.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	require.Len(t, rs, 1)
	assert.Equal(t, domain.RecipeBetWon, rs[0].Type)

	out, err = run(t, "recipes", "--type", "bet_lost", "--driver", "sqlite", "--sqlite", path)
	require.NoError(t, err)
	rs = nil
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	require.Len(t, rs, 1)
	assert.Equal(t, domain.RecipeBetLost, rs[0].Type)
}

func TestMarkets(t *testing.T) {
	path := seedJournal(t)

	out, err := run(t, "markets", "--driver", "sqlite", "--sqlite", path)
	require.NoError(t, err)
	var all []domain.MarketStats
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all, 2)

	out, err = run(t, "markets", "--open", "--driver", "sqlite", "--sqlite", path)
	require.NoError(t, err)
	var open []domain.MarketStats
	require.NoError(t, json.Unmarshal([]byte(out), &open))
	assert.Len(t, open, 1)
}

func TestUnknownDriverFails(t *testing.T) {
	_, err := run(t, "replay", "--driver", "etcd")
	assert.Error(t, err)
}
