package commands

import (
	"context"
	"log/slog"
	"sync"

	"dte/internal/config"
	"dte/internal/discovery"
	"dte/internal/domain"
	"dte/internal/execution"
	"dte/internal/live"
	"dte/internal/parser"
	"dte/internal/storage"
)

// workspace holds what the commands share. It is filled in once flags and
// the environment have been applied to the config.
type workspace struct {
	config  *config.Config
	logger  *slog.Logger
	scanner *discovery.Scanner
	filter  *discovery.Filter
	runner  execution.TestRunner
	storage storage.Storage

	mu      sync.Mutex
	results map[string]domain.TestResult
}

func (ws *workspace) init(cfg *config.Config, logger *slog.Logger) {
	ws.config = cfg
	ws.logger = logger
	ws.scanner = discovery.NewScanner(cfg.PathsToIgnore)
	ws.filter = discovery.NewFilter()
	ws.runner = execution.NewRunner(cfg, parser.NewDotnetParser(), logger)
	ws.storage = storage.NewJSONStorage(cfg)
	ws.results = make(map[string]domain.TestResult)
}

func (ws *workspace) pool(progress execution.Progress) execution.Executor {
	pool := execution.NewWorkerPool(ws.config, ws.runner, execution.NewRoundRobinScheduler(), ws.logger)
	if progress != nil {
		pool.SetProgress(progress)
	}
	pool.SetFailFast(ws.config.Flags.FailFast)
	return pool
}

// discover scans for test projects and lists their tests, keeping those
// matching the name filter. Projects that fail to list are skipped.
func (ws *workspace) discover(ctx context.Context) (*catalog, error) {
	projects, err := ws.scanner.Scan(ws.config.GetTestPath())
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return newCatalog(nil, nil), nil
	}

	ws.logger.Info("discovering tests", "projects", len(projects))
	tests, err := ws.pool(nil).Discover(ctx, projects)
	if err != nil && len(tests) == 0 {
		return nil, err
	}

	if pattern := ws.config.Flags.NameFilter; pattern != "" {
		names := make([]string, len(tests))
		for i, t := range tests {
			names[i] = t.FullName
		}
		keep := make(map[string]bool)
		for _, n := range ws.filter.FilterByName(names, pattern) {
			keep[n] = true
		}
		filtered := tests[:0]
		for _, t := range tests {
			if keep[t.FullName] {
				filtered = append(filtered, t)
			}
		}
		tests = filtered
	}
	return newCatalog(projects, tests), nil
}

// seed loads the last stored run into the tree
func (ws *workspace) seed(tr *live.Tree) {
	record, err := ws.storage.Load()
	if err != nil {
		ws.logger.Debug("no stored results", "error", err)
		return
	}
	ws.remember(record.Results)
	tr.Apply(liveResults(record.Results))
}

func (ws *workspace) remember(results []domain.TestResult) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, r := range results {
		ws.results[r.FullName] = r
	}
}

func (ws *workspace) result(fullName string) (domain.TestResult, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	r, ok := ws.results[fullName]
	return r, ok
}

func liveResults(results []domain.TestResult) []live.Result {
	out := make([]live.Result, len(results))
	for i, r := range results {
		out[i] = live.Result{FullName: r.FullName, State: live.FromOutcome(r.Outcome)}
	}
	return out
}

func running(names []string) []live.Result {
	out := make([]live.Result, len(names))
	for i, n := range names {
		out[i] = live.Result{FullName: n, State: live.Running}
	}
	return out
}

// execute runs the named tests, streaming their states into tr. Callers
// mark the tests running first. Tests that never report are set back to
// not run.
func (ws *workspace) execute(ctx context.Context, tr *live.Tree, cat *catalog, names []string, progress execution.Progress) (execution.Report, error) {
	jobs, _ := cat.Jobs(names)

	reported := make(map[string]bool)
	batches := make(chan []domain.TestResult)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for batch := range batches {
			for _, r := range batch {
				reported[r.FullName] = true
			}
			ws.remember(batch)
			tr.Apply(liveResults(batch))
		}
	}()

	report, err := ws.pool(progress).Run(ctx, jobs, batches)
	<-done

	var leftover []live.Result
	for _, n := range names {
		if !reported[n] {
			leftover = append(leftover, live.Result{FullName: n, State: live.NotRun})
		}
	}
	tr.Apply(leftover)
	return report, err
}
