// -- cmd/run.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/sitecheck/internal/browser"
	"github.com/xkilldash9x/sitecheck/internal/config"
	"github.com/xkilldash9x/sitecheck/internal/observability"
	"github.com/xkilldash9x/sitecheck/internal/report"
	"github.com/xkilldash9x/sitecheck/internal/runner"
	"github.com/xkilldash9x/sitecheck/internal/suite"
)

// ErrSuiteFailed is returned by `run` when a step failed or was skipped.
var ErrSuiteFailed = errors.New("suite failed")

const shutdownTimeout = 15 * time.Second

// starter launches the browser and returns it with its teardown.
type starter func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Driver, func(context.Context), error)

func defaultStarter(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Driver, func(context.Context), error) {
	s, err := browser.Start(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Stop, nil
}

// reportSink is the slice of *report.Sink a run needs.
type reportSink interface {
	runner.Recorder
	Init() error
	Flush() error
}

// newRunCmd creates and configures the `run` command.
func newRunCmd(start starter) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the homepage suite in a browser and writes the HTML report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			steps, err := runner.Select(suite.HomePage(), cfg.Suite.Only)
			if err != nil {
				return err
			}

			logger := observability.GetLogger()
			sink := report.New(cfg.Report, logger)
			summary, err := runSuite(cmd.Context(), cfg, steps, start, sink, logger)
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), summary, cfg.Report.Path())
			if err := cmd.Context().Err(); err != nil {
				return fmt.Errorf("run interrupted: %w", err)
			}
			if !summary.OK() {
				return fmt.Errorf("%w: %d failed, %d skipped", ErrSuiteFailed, summary.Failed, summary.Skipped)
			}
			return nil
		},
	}

	runCmd.Flags().String("start-url", "", "URL the browser opens before the first step. (Overrides config/env)")
	runCmd.Flags().Bool("headless", false, "Run the browser without a visible window. (Overrides config/env)")
	runCmd.Flags().String("exec-path", "", "Path to the Chrome or Chromium binary. (Overrides config/env)")
	runCmd.Flags().StringSlice("only", nil, "Run only the named steps, in declared order.")
	runCmd.Flags().Duration("wait-timeout", 0, "How long to wait for an element to appear. (Overrides config/env)")
	runCmd.Flags().Duration("settle-delay", 0, "Pause after interactions. (Overrides config/env)")
	runCmd.Flags().StringP("report-dir", "o", "", "Directory for the report and screenshots. (Overrides config/env)")
	runCmd.Flags().String("report-file", "", "File name of the HTML report. (Overrides config/env)")
	runCmd.Flags().Bool("json-summary", true, "Also write summary.json next to the report.")

	return runCmd
}

// runSuite owns one suite run: the report is initialized before the browser
// starts, the browser stops on a fresh context after the last step, and the
// report is flushed exactly once at the end.
func runSuite(ctx context.Context, cfg *config.Config, steps []runner.Step, start starter, sink reportSink, logger *zap.Logger) (runner.Summary, error) {
	if err := sink.Init(); err != nil {
		return runner.Summary{}, fmt.Errorf("failed to initialize report: %w", err)
	}
	defer flushReport(sink, logger)

	logger.Info("Launching browser.",
		zap.String("start_url", cfg.Browser.StartURL),
		zap.Bool("headless", cfg.Browser.Headless),
		zap.Int("steps", len(steps)),
	)
	drv, stop, err := start(ctx, cfg.Browser, logger)
	if err != nil {
		logger.Error("Browser launch failed, no steps were run.", zap.Error(err))
		return runner.Summary{Skipped: len(steps)}, err
	}

	summary := runner.New(drv, sink, cfg.Suite, logger).Run(ctx, steps)

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	stop(stopCtx)

	return summary, nil
}

func flushReport(sink reportSink, logger *zap.Logger) {
	if err := sink.Flush(); err != nil {
		logger.Error("Failed to write report.", zap.Error(err))
	}
}

func printSummary(w io.Writer, s runner.Summary, reportPath string) {
	for _, r := range s.Results {
		fmt.Fprintf(w, "%-7s %-45s %s\n", r.Outcome, r.Name, r.Duration.Round(time.Millisecond))
		if r.Err != nil {
			fmt.Fprintf(w, "        %v\n", r.Err)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d warned, %d failed, %d skipped in %s\n",
		s.Passed, s.Warned, s.Failed, s.Skipped, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Report: %s\n", reportPath)
}
