package engine

import (
	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/ledger"
)

// Register cria uma conta com saldo zero. address vazio é derivado do nome.
func (e *Engine) Register(name, address string) (domain.Account, error) {
	return cast[domain.Account](e.exec(registerCmd{Name: name, Address: address}))
}

func (e *Engine) Mint(account string, amount float64) (domain.Transaction, error) {
	return cast[domain.Transaction](e.exec(mintCmd{Account: account, Amount: amount}))
}

func (e *Engine) Withdraw(account string, amount float64) (domain.Transaction, error) {
	return cast[domain.Transaction](e.exec(withdrawCmd{Account: account, Amount: amount}))
}

func (e *Engine) Transfer(from, to string, amount float64) (domain.Transaction, error) {
	return cast[domain.Transaction](e.exec(transferCmd{From: from, To: to, Amount: amount}))
}

// AdminSetBalance força o saldo; a transação retornada carrega o delta.
func (e *Engine) AdminSetBalance(account string, balance float64) (domain.Transaction, error) {
	return cast[domain.Transaction](e.exec(adminSetCmd{Account: account, Balance: balance}))
}

// Balance retorna o saldo gastável (conta desconhecida → 0).
func (e *Engine) Balance(id string) (float64, error) {
	return read(e, func(s *State) float64 { return s.Ledger.Balance(id) })
}

// Account retorna a conta por nome ou endereço.
func (e *Engine) Account(id string) (domain.Account, error) {
	type result struct {
		acc domain.Account
		ok  bool
	}
	r, err := read(e, func(s *State) result {
		acc, ok := s.Ledger.Account(id)
		return result{acc, ok}
	})
	if err != nil {
		return domain.Account{}, err
	}
	if !r.ok {
		return domain.Account{}, domain.ErrUnknownAccount
	}
	return r.acc, nil
}

func (e *Engine) Accounts() ([]domain.Account, error) {
	return read(e, func(s *State) []domain.Account { return s.Ledger.Accounts() })
}

func (e *Engine) Transactions() ([]domain.Transaction, error) {
	return read(e, func(s *State) []domain.Transaction { return s.Ledger.Transactions() })
}

func (e *Engine) AccountTransactions(id string) ([]domain.Transaction, error) {
	return read(e, func(s *State) []domain.Transaction { return s.Ledger.AccountTransactions(id) })
}

func (e *Engine) Recipes() ([]domain.Recipe, error) {
	return read(e, func(s *State) []domain.Recipe { return s.Ledger.Recipes() })
}

func (e *Engine) AccountRecipes(id string) ([]domain.Recipe, error) {
	return read(e, func(s *State) []domain.Recipe { return s.Ledger.AccountRecipes(id) })
}

func (e *Engine) RecipesByType(kind domain.RecipeType) ([]domain.Recipe, error) {
	return read(e, func(s *State) []domain.Recipe { return s.Ledger.RecipesByType(kind) })
}

// Stats soma os agregados do ledger ao total em escrow.
func (e *Engine) Stats() (domain.Stats, error) {
	return read(e, func(s *State) domain.Stats {
		st := s.Ledger.Stats()
		st.Escrowed = s.Escrow.Total()
		return st
	})
}

// Reconcile compara os saldos em cache com o replay do log de transações.
func (e *Engine) Reconcile() ([]ledger.Mismatch, error) {
	return read(e, func(s *State) []ledger.Mismatch { return s.Ledger.Reconcile() })
}

// Escrowed retorna as entradas de escrow ativas.
func (e *Engine) Escrowed() ([]domain.EscrowEntry, error) {
	return read(e, func(s *State) []domain.EscrowEntry { return s.Escrow.Entries() })
}
