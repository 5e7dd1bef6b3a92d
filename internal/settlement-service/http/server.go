package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/radieske/prediction-ledger/internal/settlement-service/dto"
	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/engine"
)

// StatsCache é o cache opcional das leituras agregadas, versionado pela seq
// do engine: só há hit para a seq corrente.
type StatsCache interface {
	GetMarketStats(ctx context.Context, marketID string, seq uint64, dst any) (bool, error)
	SetMarketStats(ctx context.Context, marketID string, seq uint64, v any) error
	GetLedgerStats(ctx context.Context, seq uint64, dst any) (bool, error)
	SetLedgerStats(ctx context.Context, seq uint64, v any) error
}

// Server expõe o engine de liquidação via REST
type Server struct {
	log      *zap.Logger
	engine   *engine.Engine
	cache    StatsCache    // pode ser nil
	limiter  *rate.Limiter // pode ser nil
	ws       http.Handler  // pode ser nil
	validate *validator.Validate
}

type Option func(*Server)

func WithCache(c StatsCache) Option { return func(s *Server) { s.cache = c } }

func WithRateLimit(l *rate.Limiter) Option { return func(s *Server) { s.limiter = l } }

func WithWebsocket(h http.Handler) Option { return func(s *Server) { s.ws = h } }

// NewServer instancia o servidor HTTP do ledger
func NewServer(log *zap.Logger, e *engine.Engine, opts ...Option) *Server {
	s := &Server{log: log, engine: e, validate: validator.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router retorna o roteador com todas as rotas
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if s.ws != nil {
		r.Handle("/ws", s.ws) // atualizações de mercado ao vivo
	}

	r.Route("/v1", func(r chi.Router) {
		// leituras
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/{id}", s.getAccount)
		r.Get("/accounts/{id}/balance", s.getBalance)
		r.Get("/accounts/{id}/transactions", s.accountTransactions)
		r.Get("/accounts/{id}/recipes", s.accountRecipes)
		r.Get("/accounts/{id}/bets", s.accountBets)
		r.Get("/transactions", s.listTransactions)
		r.Get("/recipes", s.listRecipes) // ?type=bet_won
		r.Get("/stats", s.getStats)
		r.Get("/reconcile", s.reconcile)
		r.Get("/markets", s.listMarkets) // ?status=open
		r.Get("/markets/{id}", s.getMarket)
		r.Get("/markets/{id}/stats", s.marketStats)
		r.Get("/markets/{id}/bets", s.marketBets)

		// escritas
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(s.limiter))
			r.Post("/accounts", s.register)
			r.Post("/transfers", s.transfer)
			r.Post("/withdrawals", s.withdraw)
			r.Post("/admin/mint", s.mint)
			r.Post("/admin/balance", s.setBalance)
			r.Post("/admin/upgrade", s.upgrade)
			r.Post("/markets", s.createMarket)
			r.Post("/markets/{id}/close", s.closeMarket)
			r.Post("/markets/{id}/bets", s.placeBet)
			r.Post("/markets/{id}/resolve", s.resolve)
		})
	})
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail traduz o erro de domínio em status + corpo padrão
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, dto.ErrorResponse{Error: domain.Kind(err), Message: err.Error()})
}

// decode lê e valida o corpo da requisição
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "BadRequest", Message: "bad json"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "BadRequest", Message: err.Error()})
		return false
	}
	return true
}
