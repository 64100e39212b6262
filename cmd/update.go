package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
	"github.com/visa-movement/bulletin-cli/internal/store"
	"github.com/visa-movement/bulletin-cli/pkg/jsonbin"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch and store the current month's bulletin",
	Long: `Fetch the bulletin for the current calendar month, extract its
cutoff tables, and write the record file. When JSONBin credentials are
configured the record is also uploaded; upload failure is logged but
never fails the command once the local record is written.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("update"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.CreateRun(ctx, "update")
		if err != nil {
			return err
		}

		target := bulletin.CurrentTarget(cfg.Scrape.BaseURL, time.Now().UTC())
		log := zap.L().With(
			zap.String("command", "update"),
			zap.String("run_id", run.ID),
			zap.String("month", target.Month.String()),
		)
		log.Info("fetching current bulletin", zap.String("url", target.URL))

		if err := processTarget(ctx, newFetcher(), target); err != nil {
			if _, rerr := st.RecordDocument(ctx, run.ID, target.URL, target.Month.String(), store.DocStatusFailed, err.Error()); rerr != nil {
				log.Error("record document", zap.Error(rerr))
			}
			if ferr := st.FinishRun(ctx, run.ID, store.RunStatusFailed, err.Error()); ferr != nil {
				log.Error("finish run", zap.Error(ferr))
			}
			return err
		}

		if _, rerr := st.RecordDocument(ctx, run.ID, target.URL, target.Month.String(), store.DocStatusStored, ""); rerr != nil {
			log.Error("record document", zap.Error(rerr))
		}
		if err := st.FinishRun(ctx, run.ID, store.RunStatusComplete, "stored "+target.Month.String()); err != nil {
			log.Error("finish run", zap.Error(err))
		}

		publishBulletin(ctx, log, target.Month)

		log.Info("update complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

// publishBulletin uploads the freshly written record to JSONBin. Best
// effort: missing credentials skip the upload, failures are logged only.
func publishBulletin(ctx context.Context, log *zap.Logger, m bulletin.Month) {
	if cfg.JSONBin.Key == "" || cfg.JSONBin.BulletinBinID == "" {
		log.Debug("jsonbin not configured, skipping upload")
		return
	}

	fy := fmt.Sprintf("FY%d", m.FiscalYear())
	rec, err := bulletin.ReadRecord(filepath.Join(cfg.Scrape.RecordDir, fy, m.FileName()))
	if err != nil {
		log.Warn("jsonbin upload skipped", zap.Error(err))
		return
	}

	client := jsonbin.NewClient(cfg.JSONBin.Key, jsonbin.WithBaseURL(cfg.JSONBin.BaseURL))
	payload := struct {
		Month  string           `json:"month"`
		Record *bulletin.Record `json:"record"`
	}{Month: m.String(), Record: rec}

	if err := client.Update(ctx, cfg.JSONBin.BulletinBinID, payload); err != nil {
		log.Warn("jsonbin upload failed", zap.Error(err))
		return
	}
	log.Info("bulletin uploaded", zap.String("bin", cfg.JSONBin.BulletinBinID))
}
