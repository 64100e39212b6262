package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visa-movement/bulletin-cli/internal/dol"
	"github.com/visa-movement/bulletin-cli/internal/store"
	"github.com/visa-movement/bulletin-cli/pkg/jsonbin"
)

var dolCmd = &cobra.Command{
	Use:   "dol",
	Short: "Update DOL PERM processing times",
	Long: `Fetch the DOL processing-times page, extract the Analyst Review
month and calendar-day count, and write the dated JSON snapshot. When
JSONBin credentials are configured the snapshot is also uploaded; upload
failure is logged but never fails the command.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("dol"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.CreateRun(ctx, "dol")
		if err != nil {
			return err
		}
		log := zap.L().With(zap.String("command", "dol"), zap.String("run_id", run.ID))

		fail := func(err error) error {
			if _, rerr := st.RecordDocument(ctx, run.ID, cfg.DOL.URL, "", store.DocStatusFailed, err.Error()); rerr != nil {
				log.Error("record document", zap.Error(rerr))
			}
			if ferr := st.FinishRun(ctx, run.ID, store.RunStatusFailed, err.Error()); ferr != nil {
				log.Error("finish run", zap.Error(ferr))
			}
			return err
		}

		markup, err := newFetcher().Fetch(ctx, cfg.DOL.URL)
		if err != nil {
			return fail(err)
		}

		pt, err := dol.Extract(markup)
		if err != nil {
			return fail(err)
		}
		log.Info("extracted processing time",
			zap.String("month", pt.Month),
			zap.Int("calendar_days", pt.CalendarDays),
		)

		path, err := dol.Write(cfg.DOL.OutputDir, pt, time.Now().UTC())
		if err != nil {
			return fail(err)
		}
		log.Info("snapshot written", zap.String("path", path))

		if _, rerr := st.RecordDocument(ctx, run.ID, cfg.DOL.URL, pt.Month, store.DocStatusStored, ""); rerr != nil {
			log.Error("record document", zap.Error(rerr))
		}
		if err := st.FinishRun(ctx, run.ID, store.RunStatusComplete, "stored "+pt.Month); err != nil {
			log.Error("finish run", zap.Error(err))
		}

		if cfg.JSONBin.Key != "" && cfg.JSONBin.DOLBinID != "" {
			client := jsonbin.NewClient(cfg.JSONBin.Key, jsonbin.WithBaseURL(cfg.JSONBin.BaseURL))
			if err := client.Update(ctx, cfg.JSONBin.DOLBinID, pt); err != nil {
				log.Warn("jsonbin upload failed", zap.Error(err))
			} else {
				log.Info("processing time uploaded", zap.String("bin", cfg.JSONBin.DOLBinID))
			}
		}

		log.Info("dol update complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dolCmd)
}
