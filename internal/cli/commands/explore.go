package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dte/internal/live"
	"dte/internal/ui"
)

// ExploreCommand handles the explore command
type ExploreCommand struct {
	ws *workspace
}

// Execute runs the command
func (ec *ExploreCommand) Execute(cmd *cobra.Command, args []string) error {
	ws := ec.ws
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cat, err := ws.discover(ctx)
	if err != nil {
		return err
	}

	tr := live.New(live.WithLogger(ws.logger))
	tr.Reconcile(cat.Names())
	ws.seed(tr)

	var (
		busy  sync.Mutex
		catMu sync.Mutex
	)
	current := func() *catalog {
		catMu.Lock()
		defer catMu.Unlock()
		return cat
	}

	var explorer *ui.Explorer
	runTests := func(names []string, mark func()) {
		if !busy.TryLock() {
			explorer.SetStatus("A run or discovery is already in progress")
			return
		}
		defer busy.Unlock()

		explorer.SetStatus(fmt.Sprintf("Running %d test(s)...", len(names)))
		mark()
		report, err := ws.execute(ctx, tr, current(), names, nil)
		if saveErr := ws.storage.Merge(report.Results(), report.Duration, report.Workers); saveErr != nil {
			ws.logger.Warn("failed to save test results", "error", saveErr)
		}
		if err != nil {
			explorer.SetStatus("Run failed: " + firstLine(err))
			return
		}
		s := report.Summary
		explorer.SetStatus(fmt.Sprintf("%d passed, %d failed, %d skipped in %.2fs", s.Passed, s.Failed, s.Skipped, report.Duration.Seconds()))
	}

	explorer = ui.NewExplorer(tr, ui.ExplorerHandlers{
		Run: func(names []string) {
			runTests(names, func() { tr.Apply(running(names)) })
		},
		RunAll: func() {
			runTests(tr.Tests(""), func() { tr.SetAll(live.Running) })
		},
		Discover: func() {
			if !busy.TryLock() {
				explorer.SetStatus("A run or discovery is already in progress")
				return
			}
			defer busy.Unlock()

			explorer.SetStatus("Discovering tests...")
			found, err := ws.discover(ctx)
			if err != nil {
				explorer.SetStatus("Discovery failed: " + firstLine(err))
				return
			}
			catMu.Lock()
			cat = found
			catMu.Unlock()

			update := tr.Reconcile(found.Names())
			explorer.SetStatus(fmt.Sprintf("Discovered %d test(s): %d new, %d removed", len(found.Names()), countLeaves(update.Added), countLeaves(update.Pruned)))
		},
		Result: ws.result,
	})

	return explorer.Run()
}

func countLeaves(nodes []*live.Node) int {
	n := 0
	for _, node := range nodes {
		if node.IsLeaf() {
			n++
		}
	}
	return n
}

func firstLine(err error) string {
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}
