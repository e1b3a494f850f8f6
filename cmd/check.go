package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Runs one fetch/compare/persist pass and exits",
		Long: `Performs a single run: reads the recorded round, acquires the
current one from the results page, and on a date change notifies the
configured channel and records the new round. Exits non-zero when the
run aborts, so a scheduler can retry the whole run later.`,
		RunE: runCheckCommand,
	}
}

func runCheckCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadApp()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	w, cleanup, err := buildWatcher(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := w.Run(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("run finished",
		zap.String("state", string(report.State)),
		zap.Bool("changed", report.Outcome.Changed),
	)
	return nil
}
