package engine

import (
	"fmt"
	"math"
)

// Builtin são as migrações distribuídas com o serviço.
var Builtin = []Migration{
	{Version: 1, Name: "verify-balances", Apply: verifyBalances},
}

// verifyBalances recusa o upgrade se algum saldo em cache divergir do log
// ou se o total em escrow não bater com os pools dos mercados abertos.
func verifyBalances(s *State) error {
	if mm := s.Ledger.Reconcile(); len(mm) > 0 {
		return fmt.Errorf("%d account balances diverge from the transaction log", len(mm))
	}
	var pooled float64
	for _, mk := range s.Markets.Markets() {
		if mk.WinningOutcome != nil {
			continue
		}
		for _, p := range mk.Pools {
			pooled += p
		}
	}
	if escrowed := s.Escrow.Total(); math.Abs(escrowed-pooled) > 1e-9*math.Max(1, pooled) {
		return fmt.Errorf("escrow total %v does not match unresolved pools %v", escrowed, pooled)
	}
	return nil
}
