package cli

import (
	"github.com/spf13/cobra"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/recipe"
)

func init() {
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(marketsCmd)

	recipesCmd.Flags().StringP("type", "t", "", "only recipes of this type (e.g. bet_won)")
	marketsCmd.Flags().Bool("open", false, "only open markets")
}

var recipesCmd = &cobra.Command{
	Use:   "recipes [ACCOUNT]",
	Short: "Print activity records, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := restore(cmd)
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("type")

		var rs []domain.Recipe
		switch {
		case len(args) == 1:
			rs, err = e.AccountRecipes(args[0])
		case kind != "":
			rs, err = e.RecipesByType(domain.RecipeType(kind))
		default:
			rs, err = e.Recipes()
		}
		if err != nil {
			return err
		}
		if len(args) == 1 && kind != "" {
			rs = recipe.FilterType(rs, domain.RecipeType(kind))
		}
		return printJSON(cmd, rs)
	},
}

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Print markets with their current stats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := restore(cmd)
		if err != nil {
			return err
		}
		var mks []domain.Market
		if open, _ := cmd.Flags().GetBool("open"); open {
			mks, err = e.OpenMarkets()
		} else {
			mks, err = e.Markets()
		}
		if err != nil {
			return err
		}

		out := make([]domain.MarketStats, 0, len(mks))
		for _, mk := range mks {
			st, err := e.MarketStats(mk.ID)
			if err != nil {
				return err
			}
			out = append(out, st)
		}
		return printJSON(cmd, out)
	},
}
