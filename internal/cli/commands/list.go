package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dte/internal/live"
	"dte/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	ws        *workspace
	formatter func() *ui.Formatter
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cat, err := lc.ws.discover(cmd.Context())
	if err != nil {
		return err
	}

	names := cat.Names()
	if len(names) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	if lc.ws.config.Flags.Flat {
		lc.formatter().PrintFlat(names)
		return nil
	}

	tr := live.New(live.WithLogger(lc.ws.logger))
	tr.Reconcile(names)
	lc.ws.seed(tr)
	lc.formatter().PrintTree(tr)
	return nil
}
