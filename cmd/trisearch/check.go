package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe the enabled Redis, PostgreSQL and Kafka collaborators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			deps := connect(ctx, cfg, metrics.New(prometheus.NewRegistry()))
			defer deps.Close()

			report := deps.checker.Run(ctx)
			out := cmd.OutOrStdout()
			for _, name := range report.Names() {
				c := report.Components[name]
				fmt.Fprintf(out, "%-10s %-5s %s %s\n", name, c.Status, c.Latency, c.Message)
			}
			fmt.Fprintf(out, "overall: %s\n", report.Status)
			if report.Status != health.StatusUp {
				return fmt.Errorf("dependencies down")
			}
			return nil
		},
	}
}
