package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/kafka"
)

var (
	eventsFromBeginning bool
	eventsTopN          int
)

// newEventsCmd consumes the match-event topic and prints aggregated stats
// when interrupted.
func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Aggregate published match events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			agg := analytics.NewAggregator(eventsTopN)
			consumer := kafka.NewConsumer(cfg.Kafka, eventsFromBeginning, agg.Handler())
			slog.Info("consuming match events",
				"topic", cfg.Kafka.Topic,
				"group", cfg.Kafka.ConsumerGroup,
				"from_beginning", eventsFromBeginning,
			)
			if err := consumer.Run(ctx); err != nil {
				slog.Error("consumer error", "error", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(agg.Stats())
		},
	}
	cmd.Flags().BoolVar(&eventsFromBeginning, "from-beginning", false, "read the topic from its first offset")
	cmd.Flags().IntVar(&eventsTopN, "top", 10, "entries kept in each top list")
	return cmd
}
