package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
	"github.com/visa-movement/bulletin-cli/pkg/jsonbin"
)

var publishMonth string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload a stored bulletin record to JSONBin",
	Long: `Upload a previously stored bulletin record to the configured
JSONBin bin. Defaults to the most recent stored month; use --month to
publish a specific issue, e.g. --month october-2025. Unlike the upload
step of update, a publish failure exits non-zero.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("publish"); err != nil {
			return err
		}

		var m bulletin.Month
		var err error
		if publishMonth != "" {
			m, err = bulletin.ParseMonth(publishMonth)
		} else {
			m, err = latestStoredMonth(cfg.Scrape.RecordDir)
		}
		if err != nil {
			return err
		}

		fy := fmt.Sprintf("FY%d", m.FiscalYear())
		rec, err := bulletin.ReadRecord(filepath.Join(cfg.Scrape.RecordDir, fy, m.FileName()))
		if err != nil {
			return err
		}

		client := jsonbin.NewClient(cfg.JSONBin.Key, jsonbin.WithBaseURL(cfg.JSONBin.BaseURL))
		payload := struct {
			Month  string           `json:"month"`
			Record *bulletin.Record `json:"record"`
		}{Month: m.String(), Record: rec}

		if err := client.Update(ctx, cfg.JSONBin.BulletinBinID, payload); err != nil {
			return err
		}

		zap.L().Info("bulletin published",
			zap.String("month", m.String()),
			zap.String("bin", cfg.JSONBin.BulletinBinID),
		)
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishMonth, "month", "", "bulletin issue to publish, e.g. october-2025 (default latest stored)")
	rootCmd.AddCommand(publishCmd)
}

// latestStoredMonth scans the record directory for the newest issue.
func latestStoredMonth(recordDir string) (bulletin.Month, error) {
	fys, err := os.ReadDir(recordDir)
	if err != nil {
		return bulletin.Month{}, eris.Wrapf(err, "publish: read record dir %s", recordDir)
	}

	var months []bulletin.Month
	for _, fy := range fys {
		if !fy.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(recordDir, fy.Name()))
		if err != nil {
			return bulletin.Month{}, eris.Wrapf(err, "publish: read fiscal year dir %s", fy.Name())
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			m, err := bulletin.ParseMonthFile(f.Name())
			if err != nil {
				continue
			}
			months = append(months, m)
		}
	}
	if len(months) == 0 {
		return bulletin.Month{}, eris.Errorf("publish: no records under %s", recordDir)
	}

	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months[len(months)-1], nil
}
