package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radieske/prediction-ledger/internal/shared/kafka"
	"github.com/radieske/prediction-ledger/pkg/contracts/events"
)

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().String("group", "ledgerctl-tail", "kafka consumer group")
	tailCmd.Flags().Bool("from-start", false, "start at the first record when the group has no committed offset")
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the journal topic on Kafka and print one line per record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		group, _ := cmd.Flags().GetString("group")
		fromStart, _ := cmd.Flags().GetBool("from-start")

		r := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicJournal, group, fromStart)
		defer r.Close()

		for {
			_, value, err := kafka.ReadNext(cmd.Context(), r)
			if err != nil {
				if errors.Is(cmd.Context().Err(), context.Canceled) {
					return nil
				}
				return err
			}
			var rec events.LedgerRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				log.Warn("skipping undecodable record", zap.Error(err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", rec.Seq, rec.At.Format("2006-01-02T15:04:05.000Z07:00"), rec.Op, rec.Args)
		}
	},
}
