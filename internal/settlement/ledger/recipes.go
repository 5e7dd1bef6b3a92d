package ledger

import (
	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/recipe"
)

// Recipes projeta o log inteiro, do mais novo para o mais antigo.
func (l *Ledger) Recipes() []domain.Recipe {
	return recipe.Sorted(recipe.ProjectAll(l.txs, l.NameOf))
}

// AccountRecipes projeta apenas as transações da conta.
func (l *Ledger) AccountRecipes(id string) []domain.Recipe {
	return recipe.Sorted(recipe.ProjectAll(l.AccountTransactions(id), l.NameOf))
}

// RecipesByType filtra por tipo de recipe. Tipo desconhecido retorna vazio.
func (l *Ledger) RecipesByType(kind domain.RecipeType) []domain.Recipe {
	return recipe.FilterType(l.Recipes(), kind)
}
