// Package recipe projeta transações do ledger em registros de atividade
// para exibição. A projeção é pura: depende apenas da transação e do
// resolvedor de nomes recebido explicitamente.
package recipe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

// Unit é a unidade monetária exibida nas descrições.
const Unit = "BB"

// NameFunc resolve endereço → nome de conta.
type NameFunc func(address string) string

// Project converte uma transação em Recipe.
func Project(tx domain.Transaction, names NameFunc) domain.Recipe {
	if names == nil {
		names = func(a string) string { return a }
	}
	amt := formatAmount(tx.Amount)

	var (
		typ     domain.RecipeType
		primary string
		desc    string
	)
	switch tx.Kind {
	case domain.TxTransfer:
		typ, primary = domain.RecipeTransfer, tx.From
		desc = fmt.Sprintf("Transfer %s %s from %s to %s", amt, Unit, names(tx.From), names(tx.To))
	case domain.TxDeposit:
		typ, primary = domain.RecipeDeposit, tx.To
		desc = fmt.Sprintf("Deposit %s %s to %s", amt, Unit, names(tx.To))
	case domain.TxWithdrawal:
		typ, primary = domain.RecipeWithdrawal, tx.From
		desc = fmt.Sprintf("Withdrawal %s %s from %s", amt, Unit, names(tx.From))
	case domain.TxBetLock:
		typ, primary = domain.RecipeBetPlaced, tx.From
		desc = fmt.Sprintf("Bet %s %s on market %s", amt, Unit, tx.MarketID)
	case domain.TxBetSettle:
		primary = tx.To
		if tx.Outcome == domain.OutcomeWon {
			typ = domain.RecipeBetWon
			desc = fmt.Sprintf("Won %s %s on market %s", amt, Unit, tx.MarketID)
		} else {
			typ = domain.RecipeBetLost
			desc = fmt.Sprintf("Lost %s %s on market %s", amt, Unit, tx.MarketID)
		}
	case domain.TxAdminSet:
		typ, primary = domain.RecipeAdminSet, tx.To
		sign := ""
		if tx.Amount >= 0 {
			sign = "+"
		}
		desc = fmt.Sprintf("Balance of %s adjusted by admin (%s%s %s)", names(tx.To), sign, amt, Unit)
	default:
		typ, primary = domain.RecipeType(strings.ToLower(string(tx.Kind))), tx.From
		desc = fmt.Sprintf("%s - %s %s", tx.Kind, amt, Unit)
	}

	meta := map[string]string{
		"tx_type": string(tx.Kind),
		"from":    tx.From,
		"to":      tx.To,
	}
	if tx.MarketID != "" {
		meta["market_id"] = tx.MarketID
	}
	if tx.BetID != "" {
		meta["bet_id"] = tx.BetID
	}
	if tx.Outcome != "" {
		meta["outcome"] = string(tx.Outcome)
	}
	if tx.Memo != "" {
		meta["memo"] = tx.Memo
	}

	return domain.Recipe{
		ID:          tx.ID,
		Seq:         tx.Seq,
		Type:        typ,
		Account:     names(primary),
		Address:     primary,
		Amount:      tx.Amount,
		Description: desc,
		RelatedID:   tx.BetID,
		Timestamp:   tx.Timestamp,
		Metadata:    meta,
	}
}

// ProjectAll projeta uma lista de transações preservando a ordem.
func ProjectAll(txs []domain.Transaction, names NameFunc) []domain.Recipe {
	out := make([]domain.Recipe, 0, len(txs))
	for _, tx := range txs {
		out = append(out, Project(tx, names))
	}
	return out
}

// Sorted ordena do mais novo para o mais antigo; empate pela maior sequência.
func Sorted(rs []domain.Recipe) []domain.Recipe {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].Timestamp.Equal(rs[j].Timestamp) {
			return rs[i].Timestamp.After(rs[j].Timestamp)
		}
		return rs[i].Seq > rs[j].Seq
	})
	return rs
}

// FilterType mantém apenas recipes do tipo informado.
func FilterType(rs []domain.Recipe, kind domain.RecipeType) []domain.Recipe {
	out := []domain.Recipe{}
	for _, r := range rs {
		if r.Type == kind {
			out = append(out, r)
		}
	}
	return out
}

func formatAmount(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
