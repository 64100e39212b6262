package main

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/visa-movement/bulletin-cli/internal/artifact"
	"github.com/visa-movement/bulletin-cli/internal/category"
	"github.com/visa-movement/bulletin-cli/internal/corpus"
	"github.com/visa-movement/bulletin-cli/internal/forecast"
)

var (
	forecastGroup   string
	forecastHorizon int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project filing-date movement per category",
	Long: `Build the historical corpus from stored records and project each
category's filing-date cutoff forward. Categories with insufficient
history are skipped with a warning. Output artifacts are written
atomically, one per table group.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if forecastHorizon != 0 {
			cfg.Forecast.HorizonMonths = forecastHorizon
		}
		if err := cfg.Validate("forecast"); err != nil {
			return err
		}

		groups, err := parseGroups(forecastGroup)
		if err != nil {
			return err
		}

		mapper, err := loadMapper()
		if err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "forecast"))

		builder := corpus.NewBuilder(mapper, groups...)
		series, err := builder.Build(cfg.Scrape.RecordDir)
		if err != nil {
			return err
		}
		log.Info("corpus built", zap.Int("categories", len(series)))

		engine := forecast.NewEngine(cfg.Forecast.HorizonMonths)
		engine.MinPoints = cfg.Forecast.MinPoints

		results := make(map[category.AppCategory][]forecast.Point, len(series))
		var mu sync.Mutex
		var g errgroup.Group
		for cat, s := range series {
			g.Go(func() error {
				points, err := engine.Forecast(s)
				if err != nil {
					var skip *forecast.SkipError
					if errors.As(err, &skip) {
						log.Warn("category skipped",
							zap.String("category", string(cat)),
							zap.String("reason", skip.Reason),
						)
						return nil
					}
					return eris.Wrapf(err, "forecast: %s", cat)
				}
				mu.Lock()
				results[cat] = points
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Forecast.OutputDir, 0o755); err != nil {
			return eris.Wrapf(err, "forecast: create output dir %s", cfg.Forecast.OutputDir)
		}
		for _, grp := range groups {
			byGroup := make(map[category.AppCategory][]forecast.Point)
			for cat, points := range results {
				if category.GroupOf(cat) == grp {
					byGroup[cat] = points
				}
			}
			path := filepath.Join(cfg.Forecast.OutputDir, string(grp)+"_forecast.json")
			if err := artifact.Write(path, artifact.Build(byGroup)); err != nil {
				return err
			}
			log.Info("artifact written",
				zap.String("path", path),
				zap.Int("categories", len(byGroup)),
			)
		}

		return nil
	},
}

func init() {
	forecastCmd.Flags().StringVar(&forecastGroup, "group", "all", "table group: employment, family, all")
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 0, "forecast horizon in months (default from config)")
	rootCmd.AddCommand(forecastCmd)
}

// parseGroups resolves the --group flag into table groups.
func parseGroups(s string) ([]category.Group, error) {
	switch s {
	case "employment":
		return []category.Group{category.GroupEmployment}, nil
	case "family":
		return []category.Group{category.GroupFamily}, nil
	case "all", "":
		return []category.Group{category.GroupEmployment, category.GroupFamily}, nil
	default:
		return nil, eris.Errorf("forecast: unknown group %q", s)
	}
}
