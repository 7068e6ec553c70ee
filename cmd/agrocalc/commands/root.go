// Package commands implements the agrocalc command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/agrocalc/internal/domain/dose"
	"github.com/yanqian/agrocalc/internal/domain/harvest"
	"github.com/yanqian/agrocalc/internal/domain/history"
	"github.com/yanqian/agrocalc/internal/domain/units"
	"github.com/yanqian/agrocalc/internal/infra/config"
	"github.com/yanqian/agrocalc/internal/infra/historyrepo"
	"github.com/yanqian/agrocalc/pkg/logger"
)

// env holds the services shared by every subcommand.
type env struct {
	historyDB string
	logLevel  string

	harvest harvest.Service
	dose    dose.Service
	history history.Service
	repo    *historyrepo.SQLiteRepository
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "agrocalc",
		Short:         "Farm calculations: unit conversion, yield, dose and spray risk",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd.Context(), logger.NewText(cmd.ErrOrStderr(), e.logLevel))
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e.repo != nil {
				return e.repo.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&e.historyDB, "history-db", "", "sqlite file used to record calculations")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(convertCmd(e), yieldCmd(e), doseCmd(e), riskCmd(e), historyCmd(e))
	return root
}

func (e *env) setup(ctx context.Context, log *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var recorder history.Service
	if path := strings.TrimSpace(e.historyDB); path != "" {
		repo, err := historyrepo.OpenSQLiteRepository(ctx, path)
		if err != nil {
			return err
		}
		e.repo = repo
		recorder = history.NewService(history.Config{
			DefaultLimit: cfg.History.DefaultLimit,
			MaxLimit:     cfg.History.MaxLimit,
		}, repo, nil, nil, log)
		e.history = recorder
	}

	var (
		harvestRecorder harvest.Recorder
		doseRecorder    dose.Recorder
	)
	if recorder != nil {
		harvestRecorder = recorder
		doseRecorder = recorder
	}
	e.harvest = harvest.NewService(harvestRecorder, log)
	e.dose = dose.NewService(dose.Config{Adjustments: dose.Adjustments{
		Low:    cfg.Calculator.RiskAdjustment.Low,
		Medium: cfg.Calculator.RiskAdjustment.Medium,
		High:   cfg.Calculator.RiskAdjustment.High,
	}}, nil, nil, doseRecorder, log)
	return nil
}

// num renders a value rounded to two decimals without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(units.Round(v, 2), 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	return nil
}
