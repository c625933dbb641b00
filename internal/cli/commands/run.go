package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dte/internal/live"
	"dte/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	ws        *workspace
	formatter func() *ui.Formatter
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ws := rc.ws
	ctx := cmd.Context()

	cat, err := ws.discover(ctx)
	if err != nil {
		return err
	}

	names := cat.Names()
	if len(names) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	tr := live.New(live.WithLogger(ws.logger))
	tr.Reconcile(names)

	selected := names
	if test := ws.config.Flags.Test; test != "" {
		selected = tr.Tests(test)
		if len(selected) == 0 {
			return fmt.Errorf("no test or folder named %q", test)
		}
		tr.SetSubtree(test, live.Running)
	} else {
		tr.SetAll(live.Running)
	}

	_, total := cat.Jobs(selected)
	progressBar := ui.NewProgressBar(total)

	report, runErr := ws.execute(ctx, tr, cat, selected, progressBar)

	// Save results; a partial run only replaces the tests it ran
	results := report.Results()
	if len(selected) == len(names) && ws.config.Flags.NameFilter == "" {
		err = ws.storage.Save(results, report.Duration, len(report.Runs), report.Workers)
	} else {
		err = ws.storage.Merge(results, report.Duration, report.Workers)
	}
	if err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}

	formatter := rc.formatter()
	formatter.PrintSummary(report.Summary, report.Duration, report.Workers)
	if report.Summary.Failed > 0 {
		fmt.Println()
		formatter.PrintFailedTests(results)
	}

	if runErr != nil {
		return runErr
	}
	if report.Stopped {
		color.Yellow("Stopped after the first failure (--fail-fast)")
	}
	if report.Summary.Failed > 0 {
		return ErrTestsFailed
	}
	return nil
}
