package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"dte/internal/cli"
	"dte/internal/cli/commands"
	"dte/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "dte",
		Short:         "Parallel .NET test explorer",
		Long:          `Discover the tests of a .NET solution, run its test projects in parallel and follow the results live as a tree of namespaces, classes and test cases.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()
	logger, level := cli.NewLogger(os.Stderr)

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	cmds := commands.NewCommands()
	cmds.Register(rootCmd, &flags, cfg, logger, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
