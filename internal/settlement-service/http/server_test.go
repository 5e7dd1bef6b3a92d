package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/radieske/prediction-ledger/internal/settlement-service/dto"
	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/engine"
)

type client struct {
	t *testing.T
	h http.Handler
}

func (c client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func newClient(t *testing.T, opts ...Option) (client, *engine.Engine) {
	e := engine.New()
	return client{t: t, h: NewServer(zap.NewNop(), e, opts...).Router()}, e
}

func intp(v int) *int { return &v }

func TestMarketFlowOverHTTP(t *testing.T) {
	c, _ := newClient(t)

	for _, name := range []string{"x", "y"} {
		require.Equal(t, http.StatusCreated, c.do("POST", "/v1/accounts", dto.RegisterRequest{Name: name}, nil))
	}
	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/admin/mint", dto.AmountRequest{Account: "x", Amount: 100}, nil))
	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/admin/mint", dto.AmountRequest{Account: "y", Amount: 300}, nil))

	var mk domain.Market
	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/markets", dto.CreateMarketRequest{
		ID: "M", Title: "Will it rain?", Outcomes: []string{"YES", "NO"},
	}, &mk))
	assert.Equal(t, domain.MarketOpen, mk.Status)

	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/markets/M/bets", dto.PlaceBetRequest{Account: "x", Outcome: intp(0), Amount: 100}, nil))
	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/markets/M/bets", dto.PlaceBetRequest{Account: "y", Outcome: intp(1), Amount: 300}, nil))

	var st domain.MarketStats
	require.Equal(t, http.StatusOK, c.do("GET", "/v1/markets/M/stats", nil, &st))
	assert.Equal(t, 400.0, st.TotalVolume)
	assert.InDelta(t, 0.25, st.Outcomes[0].Price, 1e-12)

	var res dto.ResolveResponse
	require.Equal(t, http.StatusOK, c.do("POST", "/v1/markets/M/resolve", dto.ResolveRequest{WinningOutcome: intp(0)}, &res))
	assert.Equal(t, 400.0, res.Total)
	require.Len(t, res.Payouts, 2)

	var bal dto.BalanceResponse
	require.Equal(t, http.StatusOK, c.do("GET", "/v1/accounts/x/balance", nil, &bal))
	assert.Equal(t, 400.0, bal.Balance)

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, c.do("POST", "/v1/markets/M/resolve", dto.ResolveRequest{WinningOutcome: intp(1)}, &errResp))
	assert.Equal(t, "MarketAlreadyResolved", errResp.Error)

	var won []domain.Recipe
	require.Equal(t, http.StatusOK, c.do("GET", "/v1/recipes?type=bet_won", nil, &won))
	require.Len(t, won, 1)
	assert.Equal(t, "x", won[0].Account)

	var rc dto.ReconcileResponse
	require.Equal(t, http.StatusOK, c.do("GET", "/v1/reconcile", nil, &rc))
	assert.True(t, rc.OK)
}

func TestErrorStatuses(t *testing.T) {
	c, _ := newClient(t)
	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/accounts", dto.RegisterRequest{Name: "a"}, nil))

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantKind   string
	}{
		{"duplicate account", "POST", "/v1/accounts", dto.RegisterRequest{Name: "a"}, http.StatusConflict, "DuplicateAccount"},
		{"unknown account", "GET", "/v1/accounts/zed", nil, http.StatusNotFound, "UnknownAccount"},
		{"insufficient", "POST", "/v1/withdrawals", dto.AmountRequest{Account: "a", Amount: 1}, http.StatusUnprocessableEntity, "InsufficientBalance"},
		{"invalid amount", "POST", "/v1/admin/mint", dto.AmountRequest{Account: "a", Amount: -1}, http.StatusUnprocessableEntity, "InvalidAmount"},
		{"unknown market", "GET", "/v1/markets/nope/stats", nil, http.StatusNotFound, "UnknownMarket"},
		{"unknown market bets", "GET", "/v1/markets/nope/bets", nil, http.StatusNotFound, "UnknownMarket"},
		{"invalid market", "POST", "/v1/markets", dto.CreateMarketRequest{Title: "t", Outcomes: []string{"only"}}, http.StatusUnprocessableEntity, "InvalidMarket"},
		{"missing field", "POST", "/v1/transfers", dto.TransferRequest{From: "a"}, http.StatusBadRequest, "BadRequest"},
		{"missing outcome", "POST", "/v1/markets/m/bets", map[string]any{"account": "a", "amount": 1}, http.StatusBadRequest, "BadRequest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp dto.ErrorResponse
			assert.Equal(t, tt.wantStatus, c.do(tt.method, tt.path, tt.body, &resp))
			assert.Equal(t, tt.wantKind, resp.Error)
		})
	}
}

func TestUnknownBalanceIsZero(t *testing.T) {
	c, _ := newClient(t)
	var bal dto.BalanceResponse
	require.Equal(t, http.StatusOK, c.do("GET", "/v1/accounts/ghost/balance", nil, &bal))
	assert.Zero(t, bal.Balance)
}

func TestRateLimitOnWrites(t *testing.T) {
	c, _ := newClient(t, WithRateLimit(rate.NewLimiter(0, 1)))

	assert.Equal(t, http.StatusCreated, c.do("POST", "/v1/accounts", dto.RegisterRequest{Name: "a"}, nil))
	var resp dto.ErrorResponse
	assert.Equal(t, http.StatusTooManyRequests, c.do("POST", "/v1/accounts", dto.RegisterRequest{Name: "b"}, &resp))
	assert.Equal(t, "RateLimited", resp.Error)

	// leituras não passam pelo limiter
	assert.Equal(t, http.StatusOK, c.do("GET", "/v1/accounts", nil, nil))
}

// memCache guarda JSON em memória com a mesma chave versionada do Redis.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func (m *memCache) get(key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = b
	return nil
}

func (m *memCache) GetMarketStats(_ context.Context, id string, seq uint64, dst any) (bool, error) {
	return m.get(fmt.Sprintf("m:%s:%d", id, seq), dst)
}

func (m *memCache) SetMarketStats(_ context.Context, id string, seq uint64, v any) error {
	return m.set(fmt.Sprintf("m:%s:%d", id, seq), v)
}

func (m *memCache) GetLedgerStats(_ context.Context, seq uint64, dst any) (bool, error) {
	return m.get(fmt.Sprintf("l:%d", seq), dst)
}

func (m *memCache) SetLedgerStats(_ context.Context, seq uint64, v any) error {
	return m.set(fmt.Sprintf("l:%d", seq), v)
}

func TestCachedStatsReflectPrecedingWrites(t *testing.T) {
	cache := &memCache{}
	c, _ := newClient(t, WithCache(cache))

	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/accounts", dto.RegisterRequest{Name: "x"}, nil))
	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/admin/mint", dto.AmountRequest{Account: "x", Amount: 100}, nil))
	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/markets", dto.CreateMarketRequest{
		ID: "M", Title: "Will it rain?", Outcomes: []string{"YES", "NO"},
	}, nil))

	// aquece o cache e confirma que a segunda leitura é hit
	var st domain.Stats
	var ms domain.MarketStats
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, c.do("GET", "/v1/stats", nil, &st))
		require.Equal(t, http.StatusOK, c.do("GET", "/v1/markets/M/stats", nil, &ms))
	}
	assert.Equal(t, 2, cache.hits)
	assert.Equal(t, 100.0, st.TotalSupply)

	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/markets/M/bets", dto.PlaceBetRequest{Account: "x", Outcome: intp(0), Amount: 40}, nil))
	require.Equal(t, http.StatusCreated, c.do("POST", "/v1/admin/mint", dto.AmountRequest{Account: "x", Amount: 50}, nil))

	var bal dto.BalanceResponse
	require.Equal(t, http.StatusOK, c.do("GET", "/v1/accounts/x/balance", nil, &bal))
	assert.Equal(t, 110.0, bal.Balance)

	st, ms = domain.Stats{}, domain.MarketStats{}
	require.Equal(t, http.StatusOK, c.do("GET", "/v1/stats", nil, &st))
	require.Equal(t, http.StatusOK, c.do("GET", "/v1/markets/M/stats", nil, &ms))
	assert.Equal(t, 150.0, st.TotalSupply)
	assert.Equal(t, 40.0, st.Escrowed)
	assert.Equal(t, 40.0, ms.TotalVolume)
	assert.Equal(t, 40.0, ms.Outcomes[0].Pool)
	assert.Equal(t, 2, cache.hits)
}
