package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tariff-observer/src/analysis"
	"tariff-observer/src/dashboard"
	"tariff-observer/src/export"
	"tariff-observer/src/models"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------
// panel
// -----------------------------------------------------------------------------

func newPanelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "panel [name]",
		Short: "Print an aligned monthly panel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, svc, err := a.build(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			view, err := a.view(d, args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), view.Panel)
			}
			return export.WriteCSV(cmd.OutOrStdout(), export.PanelTable(view.Panel))
		},
	}
}

// -----------------------------------------------------------------------------
// compare
// -----------------------------------------------------------------------------

func newCompareCmd(a *app) *cobra.Command {
	var from, to string
	var top int
	cmd := &cobra.Command{
		Use:   "compare [panel]",
		Short: "Compare two months of a panel",
		Long: `Prints the value of every entity at both months with the absolute and
percentage change. With --json the top movers and the change summary are
included as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var monthA, monthB models.YearMonth
			var err error
			if from != "" {
				if monthA, err = models.ParseYearMonth(from); err != nil {
					return err
				}
			}
			if to != "" {
				if monthB, err = models.ParseYearMonth(to); err != nil {
					return err
				}
			}

			d, svc, err := a.build(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			view, err := a.view(d, args[0])
			if err != nil {
				return err
			}
			result, err := dashboard.CompareView(a.cfg.Analysis, view, monthA, monthB)
			if err != nil {
				return err
			}

			if !a.asJSON {
				return export.ComparisonCSV(cmd.OutOrStdout(), result)
			}
			n := top
			if n < 0 {
				n = a.cfg.Analysis.TopN
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"comparison": result,
				"movers": map[models.ChangeMetric]models.MTopMovers{
					models.MetricAbsolute: analysis.TopMovers(result, models.MetricAbsolute, n),
					models.MetricPercent:  analysis.TopMovers(result, models.MetricPercent, n),
				},
				"summary": analysis.SummarizeChanges(result),
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first month, e.g. 2020-06")
	cmd.Flags().StringVar(&to, "to", "", "second month, e.g. 2025-03")
	cmd.Flags().IntVar(&top, "top", -1, "number of movers in each direction (default analysis.top_n)")
	return cmd
}

// -----------------------------------------------------------------------------
// correlate
// -----------------------------------------------------------------------------

func newCorrelateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "correlate [panel]",
		Short: "Print the Pearson correlation matrix of a panel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, svc, err := a.build(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			view, err := a.view(d, args[0])
			if err != nil {
				return err
			}
			matrix := view.Correlation
			if matrix == nil {
				m, err := analysis.Correlate(view.Panel)
				if err != nil {
					return err
				}
				matrix = &m
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), matrix)
			}
			return export.WriteCSV(cmd.OutOrStdout(), export.CorrelationTable(*matrix))
		},
	}
}

// -----------------------------------------------------------------------------
// sentiment
// -----------------------------------------------------------------------------

func newSentimentCmd(a *app) *cobra.Command {
	var granularity, countries string
	var stats bool
	cmd := &cobra.Command{
		Use:   "sentiment",
		Short: "Print the news sentiment timeline or per-country statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, svc, err := a.build(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			if d.Sentiment == nil {
				return fmt.Errorf("no news source produced articles")
			}
			selected := d.Sentiment.Selected
			if countries != "" {
				selected = splitCountries(countries)
			}

			if stats {
				rows := analysis.CountryStatistics(d.Articles, selected)
				if a.asJSON {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				return export.SentimentStatsCSV(cmd.OutOrStdout(), rows)
			}

			g := d.Sentiment.Granularity
			if granularity != "" {
				g = models.Granularity(strings.ToLower(granularity))
				switch g {
				case models.GranularityMonthly, models.GranularityQuarterly, models.GranularityYearly:
				default:
					return fmt.Errorf("unknown granularity %q", granularity)
				}
			}
			periods := analysis.BuildTimeline(d.Articles, g, selected)
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), periods)
			}
			return export.SentimentTimelineCSV(cmd.OutOrStdout(), periods)
		},
	}
	cmd.Flags().StringVar(&granularity, "granularity", "", "monthly, quarterly or yearly")
	cmd.Flags().StringVar(&countries, "countries", "", "comma separated countries (default the top countries)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print per-country statistics instead of the timeline")
	return cmd
}

func splitCountries(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// export
// -----------------------------------------------------------------------------

func newExportCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every comparison and sentiment table plus the workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, svc, err := a.build(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			written, err := exportAll(d, outDir, time.Now())
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// exportAll returns the paths written so far even when a later file fails.
func exportAll(d *models.MDashboard, dir string, now time.Time) ([]string, error) {
	var written []string
	write := func(name string, fn func(f *os.File) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	for _, name := range d.PanelOrder {
		view := d.Panels[name]
		if view == nil || view.Comparison == nil {
			continue
		}
		if err := write(export.ComparisonFileName(name, now), func(f *os.File) error {
			return export.ComparisonCSV(f, *view.Comparison)
		}); err != nil {
			return written, err
		}
	}

	if d.Sentiment != nil {
		if err := write(export.SentimentStatsFileName(now), func(f *os.File) error {
			return export.SentimentStatsCSV(f, d.Sentiment.CountryStats)
		}); err != nil {
			return written, err
		}
		if err := write(export.SentimentTimelineFileName(now), func(f *os.File) error {
			return export.SentimentTimelineCSV(f, d.Sentiment.Timeline)
		}); err != nil {
			return written, err
		}
	}

	err := write(export.WorkbookFileName(now), func(f *os.File) error {
		return export.WorkbookXLSX(f, export.DashboardSheets(d))
	})
	return written, err
}
