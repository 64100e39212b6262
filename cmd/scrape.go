package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
	"github.com/visa-movement/bulletin-cli/internal/extract"
	"github.com/visa-movement/bulletin-cli/internal/fetcher"
	"github.com/visa-movement/bulletin-cli/internal/store"
)

var (
	scrapeStartFY int
	scrapeEndFY   int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Backfill bulletin records across fiscal years",
	Long: `Backfill bulletin records for a range of fiscal years.

Enumerates every monthly bulletin of each fiscal year (October of the
prior calendar year through September), fetches the published HTML,
extracts the cutoff tables, and writes one record file per month. Every
document is logged to the ingest ledger; the command exits non-zero if
any target failed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if scrapeStartFY != 0 {
			cfg.Scrape.StartFY = scrapeStartFY
		}
		if scrapeEndFY != 0 {
			cfg.Scrape.EndFY = scrapeEndFY
		}
		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.CreateRun(ctx, "scrape")
		if err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "scrape"), zap.String("run_id", run.ID))
		targets := bulletin.Targets(cfg.Scrape.BaseURL, cfg.Scrape.StartFY, cfg.Scrape.EndFY)
		log.Info("starting backfill",
			zap.Int("start_fy", cfg.Scrape.StartFY),
			zap.Int("end_fy", cfg.Scrape.EndFY),
			zap.Int("targets", len(targets)),
		)

		f := newFetcher()
		var stored, failed int
		for _, target := range targets {
			if ctx.Err() != nil {
				break
			}
			if err := processTarget(ctx, f, target); err != nil {
				failed++
				log.Warn("target failed",
					zap.String("month", target.Month.String()),
					zap.Error(err),
				)
				if _, rerr := st.RecordDocument(ctx, run.ID, target.URL, target.Month.String(), store.DocStatusFailed, err.Error()); rerr != nil {
					log.Error("record document", zap.Error(rerr))
				}
				continue
			}
			stored++
			if _, rerr := st.RecordDocument(ctx, run.ID, target.URL, target.Month.String(), store.DocStatusStored, ""); rerr != nil {
				log.Error("record document", zap.Error(rerr))
			}
		}

		detail := fmt.Sprintf("%d stored, %d failed of %d targets", stored, failed, len(targets))
		status := store.RunStatusComplete
		if failed > 0 || ctx.Err() != nil {
			status = store.RunStatusFailed
		}
		if err := st.FinishRun(ctx, run.ID, status, detail); err != nil {
			log.Error("finish run", zap.Error(err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), detail)
		if failed > 0 {
			return eris.Errorf("scrape: %d of %d targets failed", failed, len(targets))
		}
		log.Info("backfill complete", zap.Int("stored", stored))
		return ctx.Err()
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeStartFY, "start-fy", 0, "first fiscal year (default from config)")
	scrapeCmd.Flags().IntVar(&scrapeEndFY, "end-fy", 0, "last fiscal year (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}

// processTarget fetches one bulletin, persists the raw HTML, extracts the
// cutoff tables, and writes the normalized record file.
func processTarget(ctx context.Context, f fetcher.Fetcher, target bulletin.Target) error {
	markup, err := f.Fetch(ctx, target.URL)
	if err != nil {
		return err
	}

	fy := fmt.Sprintf("FY%d", target.Month.FiscalYear())
	htmlDir := filepath.Join(cfg.Scrape.HTMLDir, fy)
	if err := os.MkdirAll(htmlDir, 0o755); err != nil {
		return eris.Wrapf(err, "scrape: create html dir %s", htmlDir)
	}
	htmlPath := filepath.Join(htmlDir, target.Month.String()+".html")
	if err := os.WriteFile(htmlPath, markup, 0o644); err != nil {
		return eris.Wrapf(err, "scrape: write html %s", htmlPath)
	}

	rec, err := extract.Extract(markup)
	if err != nil {
		return err
	}

	recordDir := filepath.Join(cfg.Scrape.RecordDir, fy)
	if err := os.MkdirAll(recordDir, 0o755); err != nil {
		return eris.Wrapf(err, "scrape: create record dir %s", recordDir)
	}
	return bulletin.WriteRecord(filepath.Join(recordDir, target.Month.FileName()), rec)
}
