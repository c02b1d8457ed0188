package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"tariff-observer/src/config"
	"tariff-observer/src/dashboard"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

// app carries the global flags and the loaded configuration.
type app struct {
	configPath string
	asJSON     bool

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tariff-observer",
		Short: "US-China tariff and trade analytics",
		Long: `tariff-observer normalizes the tariff, trade-balance, market and news
datasets declared in the config file onto monthly panels, then derives
comparisons, correlations and sentiment statistics from them.

Run "serve" for the HTTP/gRPC dashboard or one of the report commands
for a one-shot build printed to stdout.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config/default.yaml", "path to config file")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of CSV")

	root.AddCommand(
		newServeCmd(a),
		newPanelCmd(a),
		newCompareCmd(a),
		newCorrelateCmd(a),
		newSentimentCmd(a),
		newExportCmd(a),
		newCtlCmd(),
	)
	return root
}

// -----------------------------------------------------------------------------

func (a *app) load() error {
	cfg, err := config.NewConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewLogger(cfg.MConfig, cfg.Name)
	return nil
}

// build runs one pipeline pass.
func (a *app) build(ctx context.Context) (*models.MDashboard, *dashboard.Service, error) {
	svc, err := dashboard.New(ctx, a.cfg.MConfig, a.log)
	if err != nil {
		return nil, nil, err
	}
	d, err := svc.Build(ctx)
	if err != nil {
		svc.Close()
		return nil, nil, err
	}
	for _, diag := range d.Diagnostics {
		if diag.Severity == models.SeverityWarning {
			a.log.Warning("%s [%s]: %s", diag.Source, diag.Kind, diag.Message)
		}
	}
	return d, svc, nil
}

func (a *app) view(d *models.MDashboard, name string) (*models.MPanelView, error) {
	view := d.Panels[name]
	if view == nil || view.Panel == nil {
		return nil, fmt.Errorf("panel %s has no data (panels: %v)", name, d.PanelOrder)
	}
	return view, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
