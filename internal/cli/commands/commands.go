package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dte/internal/cli"
	"dte/internal/config"
	"dte/internal/ui"
)

// ErrTestsFailed is returned by run when any test failed. The failures have
// already been printed.
var ErrTestsFailed = errors.New("tests failed")

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Explore  *ExploreCommand
	Failures *FailuresCommand

	ws *workspace
}

// NewCommands creates all commands over a shared workspace
func NewCommands() *Commands {
	ws := &workspace{}
	formatter := func() *ui.Formatter { return ui.NewFormatter(ws.config, os.Stdout) }

	return &Commands{
		Run:      &RunCommand{ws: ws, formatter: formatter},
		List:     &ListCommand{ws: ws, formatter: formatter},
		Explore:  &ExploreCommand{ws: ws},
		Failures: &FailuresCommand{ws: ws, formatter: formatter},
		ws:       ws,
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config, logger *slog.Logger, level *slog.LevelVar) {
	rootCmd.PersistentFlags().StringVarP(&flags.ProjectPath, "project", "C", "", "Directory containing the solution and its .env file")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log discovery and execution details to stderr")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		if err := cfg.Apply(flags.ToConfigFlags()); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cli.SetVerbose(level, flags.Verbose)
		c.ws.init(cfg, logger)
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run .NET tests in parallel",
		Long:  "Discover the solution's test projects and run them in parallel, showing results as they stream in",
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, fmt.Sprintf("Number of projects to run at once (default %d or DTE_PROCESSORS)", config.DefaultProcessors))
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test project detection should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*Payment*Refund*' or 'Should*')")
	runCmd.Flags().StringVar(&flags.Test, "test", "", "Run only the test or folder with this full name, e.g. 'App.Tests.Billing'")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop starting projects after the first test failure")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Discover tests without running them and print them as a tree with the state of the last run",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*Payment*Refund*' or 'Should*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test project detection should start")
	listCmd.Flags().BoolVar(&flags.Flat, "flat", false, "Print full test names instead of a tree")
	rootCmd.AddCommand(listCmd)

	// Explore command
	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse and run tests interactively",
		Long:  "Open an interactive test tree that updates live while tests run",
		RunE:  c.Explore.Execute,
	}
	exploreCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, fmt.Sprintf("Number of projects to run at once (default %d or DTE_PROCESSORS)", config.DefaultProcessors))
	exploreCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test project detection should start")
	exploreCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern")
	rootCmd.AddCommand(exploreCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		RunE:  c.Failures.Execute,
	}
	failuresCmd.Flags().BoolVar(&flags.Print, "print", false, "Print the failures instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)
}
