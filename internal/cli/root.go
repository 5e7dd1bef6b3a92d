// Package cli implementa o ledgerctl, ferramenta de operação que lê o
// journal configurado sem passar pelo serviço.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radieske/prediction-ledger/internal/settlement-service/storage"
	"github.com/radieske/prediction-ledger/internal/settlement/engine"
	"github.com/radieske/prediction-ledger/internal/shared/config"
	"github.com/radieske/prediction-ledger/internal/shared/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Inspect and verify the settlement ledger journal",
	Long: `ledgerctl rebuilds the ledger from its command journal and runs
read-only checks against it. Connection settings come from the same
environment / CONFIG_FILE as the settlement service; --driver and --sqlite
override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		l, err := logger.NewCLI(level)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

var log = zap.NewNop()

func init() {
	rootCmd.PersistentFlags().String("driver", "", "journal driver override (memory|sqlite|postgres)")
	rootCmd.PersistentFlags().String("sqlite", "", "sqlite journal path override")
	rootCmd.PersistentFlags().String("log-level", "", "stderr log level (default warn)")
}

// Execute roda o comando raiz.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.JournalDriver = v
	}
	if v, _ := cmd.Flags().GetString("sqlite"); v != "" {
		cfg.SQLitePath = v
	}
	return cfg, nil
}

// restore abre o journal e reconstrói o engine em memória.
func restore(cmd *cobra.Command) (*engine.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := storage.OpenJournal(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer closeStore()

	start := time.Now()
	e, err := engine.Restore(cmd.Context(), store, engine.WithMigrations(engine.Builtin...))
	if err != nil {
		log.Error("replay failed", zap.String("driver", cfg.JournalDriver), zap.Error(err))
		return nil, err
	}
	seq, _ := e.Seq()
	log.Info("journal replayed", zap.String("driver", cfg.JournalDriver), zap.Uint64("seq", seq), zap.Duration("took", time.Since(start)))
	return e, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
