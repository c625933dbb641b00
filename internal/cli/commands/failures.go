package commands

import (
	"github.com/spf13/cobra"

	"dte/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	ws        *workspace
	formatter func() *ui.Formatter
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	record, err := fc.ws.storage.Load()
	if err != nil {
		return err
	}

	if fc.ws.config.Flags.Print {
		fc.formatter().PrintFailures(record)
		return nil
	}
	var viewer ui.Viewer = ui.NewFailureViewer(fc.ws.storage)
	return viewer.View(record)
}
