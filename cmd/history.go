package main

import (
	"encoding/csv"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/visa-movement/bulletin-cli/internal/category"
	"github.com/visa-movement/bulletin-cli/internal/corpus"
)

var (
	historyGroup string
	historyOut   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Export per-category filing-date history as CSV",
	Long: `Export the historical filing-date cutoffs built from stored
records as CSV rows of date, cutoff, category, the input shape the
charting front end consumes. Writes to stdout unless --out is given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("forecast"); err != nil {
			return err
		}

		groups, err := parseGroups(historyGroup)
		if err != nil {
			return err
		}

		mapper, err := loadMapper()
		if err != nil {
			return err
		}

		series, err := corpus.NewBuilder(mapper, groups...).Build(cfg.Scrape.RecordDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyOut != "" {
			f, err := os.Create(historyOut)
			if err != nil {
				return eris.Wrapf(err, "history: create %s", historyOut)
			}
			defer f.Close()
			out = f
		}

		// Deterministic row order: category, then month.
		cats := make([]category.AppCategory, 0, len(series))
		for cat := range series {
			cats = append(cats, cat)
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

		w := csv.NewWriter(out)
		if err := w.Write([]string{"date", "cutoff", "category"}); err != nil {
			return eris.Wrap(err, "history: write header")
		}
		for _, cat := range cats {
			for _, p := range series[cat] {
				row := []string{
					p.Month.Time().Format("2006-01-02"),
					p.Cutoff.Format("2006-01-02"),
					string(cat),
				}
				if err := w.Write(row); err != nil {
					return eris.Wrap(err, "history: write row")
				}
			}
		}
		w.Flush()
		return eris.Wrap(w.Error(), "history: flush")
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyGroup, "group", "all", "table group: employment, family, all")
	historyCmd.Flags().StringVar(&historyOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(historyCmd)
}
