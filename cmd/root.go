package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visa-movement/bulletin-cli/internal/category"
	"github.com/visa-movement/bulletin-cli/internal/config"
	"github.com/visa-movement/bulletin-cli/internal/fetcher"
	"github.com/visa-movement/bulletin-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bulletin-cli",
	Short: "Visa bulletin ingestion and forecasting pipeline",
	Long:  "Scrapes State Department visa bulletins, normalizes filing-date cutoffs, projects category movement, and serves the chatbot relay.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore opens the configured ledger and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// newFetcher builds the document fetcher from config.
func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	})
}

// loadMapper builds the category label mapper, from file when configured.
func loadMapper() (*category.Mapper, error) {
	if cfg.Categories.MappingFile != "" {
		return category.LoadMapper(cfg.Categories.MappingFile)
	}
	return category.NewMapper(), nil
}
