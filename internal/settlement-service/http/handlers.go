package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/prediction-ledger/internal/settlement-service/dto"
	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}
	acc, err := s.engine.Register(req.Name, req.Address)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accs, err := s.engine.Accounts()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accs)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.engine.Account(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// getBalance segue a semântica do ledger: conta desconhecida tem saldo 0
func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bal, err := s.engine.Balance(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{Account: id, Balance: bal})
}

func (s *Server) accountTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.engine.AccountTransactions(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) accountRecipes(w http.ResponseWriter, r *http.Request) {
	rs, err := s.engine.AccountRecipes(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) accountBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.engine.AccountBets(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if !s.decode(w, r, &req) {
		return
	}
	tx, err := s.engine.Transfer(req.From, req.To, req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.AmountRequest
	if !s.decode(w, r, &req) {
		return
	}
	tx, err := s.engine.Withdraw(req.Account, req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) mint(w http.ResponseWriter, r *http.Request) {
	var req dto.AmountRequest
	if !s.decode(w, r, &req) {
		return
	}
	tx, err := s.engine.Mint(req.Account, req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) setBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.SetBalanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	tx, err := s.engine.AdminSetBalance(req.Account, *req.Balance)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) upgrade(w http.ResponseWriter, r *http.Request) {
	var req dto.UpgradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.engine.Upgrade(req.Version)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("ledger upgraded", zap.Int("version", v))
	writeJSON(w, http.StatusOK, dto.UpgradeResponse{Version: v})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.engine.Transactions()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// listRecipes retorna todas as recipes ou, com ?type=, só as do tipo
func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	var (
		rs  []domain.Recipe
		err error
	)
	if kind := r.URL.Query().Get("type"); kind != "" {
		rs, err = s.engine.RecipesByType(domain.RecipeType(kind))
	} else {
		rs, err = s.engine.Recipes()
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// getStats consulta o cache da seq corrente antes do engine. A seq é lida
// antes do cálculo: se uma mutação entrar no meio, a entrada gravada fica
// numa seq que ninguém mais consulta.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	seq, err := s.engine.Seq()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var st domain.Stats
	if s.cache != nil {
		if ok, _ := s.cache.GetLedgerStats(r.Context(), seq, &st); ok {
			writeJSON(w, http.StatusOK, st)
			return
		}
	}
	st, err = s.engine.Stats()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.cache != nil {
		if err := s.cache.SetLedgerStats(r.Context(), seq, st); err != nil {
			s.log.Debug("stats cache set failed", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) {
	mm, err := s.engine.Reconcile()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(mm) > 0 {
		s.log.Error("ledger reconciliation mismatch", zap.Int("accounts", len(mm)))
	}
	writeJSON(w, http.StatusOK, dto.ReconcileResponse{OK: len(mm) == 0, Mismatches: mm})
}

func (s *Server) createMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMarketRequest
	if !s.decode(w, r, &req) {
		return
	}
	mk, err := s.engine.CreateMarket(domain.MarketSpec{
		ID:               req.ID,
		Title:            req.Title,
		Description:      req.Description,
		Outcomes:         req.Outcomes,
		Category:         req.Category,
		ResolutionSource: req.ResolutionSource,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mk)
}

func (s *Server) listMarkets(w http.ResponseWriter, r *http.Request) {
	var (
		mks []domain.Market
		err error
	)
	if r.URL.Query().Get("status") == string(domain.MarketOpen) {
		mks, err = s.engine.OpenMarkets()
	} else {
		mks, err = s.engine.Markets()
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mks)
}

func (s *Server) getMarket(w http.ResponseWriter, r *http.Request) {
	mk, err := s.engine.Market(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mk)
}

func (s *Server) marketStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	seq, err := s.engine.Seq()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var st domain.MarketStats
	if s.cache != nil {
		if ok, _ := s.cache.GetMarketStats(r.Context(), id, seq, &st); ok {
			writeJSON(w, http.StatusOK, st)
			return
		}
	}
	st, err = s.engine.MarketStats(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.cache != nil {
		if err := s.cache.SetMarketStats(r.Context(), id, seq, st); err != nil {
			s.log.Debug("market stats cache set failed", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) marketBets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.engine.Market(id); err != nil {
		s.fail(w, r, err)
		return
	}
	bets, err := s.engine.MarketBets(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

func (s *Server) closeMarket(w http.ResponseWriter, r *http.Request) {
	mk, err := s.engine.CloseMarket(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mk)
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")

	var (
		bet domain.Bet
		err error
	)
	if req.BetID != "" {
		bet, err = s.engine.PlaceBetWithID(req.BetID, req.Account, id, *req.Outcome, req.Amount)
	} else {
		bet, err = s.engine.PlaceBet(req.Account, id, *req.Outcome, req.Amount)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bet)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var req dto.ResolveRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	payouts, err := s.engine.Resolve(id, *req.WinningOutcome)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var total float64
	for _, p := range payouts {
		total += p.Amount
	}
	s.log.Info("market resolved",
		zap.String("market_id", id),
		zap.Int("winning_outcome", *req.WinningOutcome),
		zap.Int("bets", len(payouts)),
		zap.Float64("paid_out", total),
	)
	writeJSON(w, http.StatusOK, dto.ResolveResponse{MarketID: id, Payouts: payouts, Total: total})
}
