package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/runner"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

var (
	configPath   string
	windowSize   int
	maxDocuments int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trisearch <data-dir> <query-file> <output-file>",
		Short: "Answer prefix, suffix, exact and wildcard queries over a numbered text corpus",
		Long: `trisearch reads documents 0.txt, 1.txt, ... from <data-dir> until the first
missing id, evaluates every line of <query-file> against each document and
writes the matching titles per query to <output-file>.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSearch,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.Flags().IntVar(&windowSize, "window-size", 0, "documents loaded per window (overrides config)")
	root.Flags().IntVar(&maxDocuments, "max-docs", 0, "upper bound on document ids (overrides config)")

	root.AddCommand(newEventsCmd(), newCheckCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return nil, err
	}
	if windowSize > 0 {
		cfg.Engine.WindowSize = windowSize
	}
	if maxDocuments > 0 {
		cfg.Engine.MaxDocuments = maxDocuments
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	deps := connect(ctx, cfg, m)
	defer deps.Close()

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, reg, deps.checker.ReadyHandler(5*time.Second))
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
	}

	job := runner.Job{DataDir: args[0], QueryFile: args[1], OutputFile: args[2]}
	report, err := runner.New(cfg, m, deps.options()...).Run(ctx, job)
	if err != nil {
		slog.Error("search failed", "error", err)
		fmt.Fprintf(os.Stderr, "trisearch: %v\n", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Elapsed time: %d ms\n", report.Elapsed.Milliseconds())
	return nil
}
