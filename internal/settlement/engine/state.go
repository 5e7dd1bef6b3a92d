package engine

import (
	"github.com/radieske/prediction-ledger/internal/settlement/escrow"
	"github.com/radieske/prediction-ledger/internal/settlement/ledger"
	"github.com/radieske/prediction-ledger/internal/settlement/market"
)

// State agrupa os três componentes com estado. É a unidade de exclusão
// mútua do engine e o alvo das migrações.
type State struct {
	Ledger  *ledger.Ledger
	Escrow  *escrow.Escrow
	Markets *market.Manager
	Version int
}

func newState() *State {
	l := ledger.New()
	e := escrow.New(l)
	return &State{Ledger: l, Escrow: e, Markets: market.NewManager(e)}
}

// Clone devolve uma cópia profunda, com os ponteiros internos reapontados
// para os componentes copiados.
func (s *State) Clone() *State {
	l := s.Ledger.Clone()
	e := s.Escrow.Clone(l)
	return &State{Ledger: l, Escrow: e, Markets: s.Markets.Clone(e), Version: s.Version}
}
