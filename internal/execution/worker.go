package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dte/internal/config"
	"dte/internal/domain"
)

// FlushInterval bounds how long a partial batch waits before delivery
const FlushInterval = 100 * time.Millisecond

// Job is one project and the tests to run in it. No tests means all of them.
type Job struct {
	Project domain.TestProject
	Tests   []string

	index int
}

// numbered copies jobs, recording each one's position
func numbered(jobs []Job) []Job {
	out := make([]Job, len(jobs))
	for i, job := range jobs {
		job.index = i
		out[i] = job
	}
	return out
}

// Report is the outcome of a pool run
type Report struct {
	Runs     []ProjectRun
	Summary  domain.Summary
	Duration time.Duration
	Workers  int
	Stopped  bool // fail-fast cancelled the remaining jobs
}

// Results returns every result in job order
func (r Report) Results() []domain.TestResult {
	var all []domain.TestResult
	for _, run := range r.Runs {
		all = append(all, run.Results...)
	}
	return all
}

// WorkerPool runs projects in parallel
type WorkerPool struct {
	config    *config.Config
	runner    TestRunner
	scheduler Scheduler
	progress  Progress
	logger    *slog.Logger
	failFast  bool
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner TestRunner, scheduler Scheduler, logger *slog.Logger) *WorkerPool {
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
		logger:    logger,
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// SetFailFast stops starting new projects after the first failed test
func (wp *WorkerPool) SetFailFast(failFast bool) {
	wp.failFast = failFast
}

func (wp *WorkerPool) workers() int {
	if wp.config.Processors <= 0 {
		return 1
	}
	return wp.config.Processors
}

// Discover lists the tests of every project in parallel. Projects that fail
// to list are logged and skipped; their errors are joined into the returned
// error alongside the tests that were found.
func (wp *WorkerPool) Discover(ctx context.Context, projects []domain.TestProject) ([]domain.DiscoveredTest, error) {
	jobs := make([]Job, len(projects))
	for i, p := range projects {
		jobs[i] = Job{Project: p}
	}
	found := make([][]string, len(projects))
	errs := make([]error, len(projects))

	var wg sync.WaitGroup
	for _, lane := range wp.scheduler.Schedule(numbered(jobs), wp.workers()) {
		wg.Add(1)
		go func(lane []Job) {
			defer wg.Done()
			for _, job := range lane {
				if ctx.Err() != nil {
					return
				}
				i := job.index
				names, err := wp.runner.ListTests(ctx, job.Project)
				if err != nil {
					wp.logger.Warn("discovery failed", "project", job.Project.Name, "error", err)
					errs[i] = err
					continue
				}
				wp.logger.Debug("discovered tests", "project", job.Project.Name, "count", len(names))
				found[i] = names
			}
		}(lane)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tests []domain.DiscoveredTest
	for i, names := range found {
		for _, name := range names {
			tests = append(tests, domain.DiscoveredTest{FullName: name, Project: projects[i].Dir})
		}
	}
	return tests, errors.Join(errs...)
}

// Run executes jobs in parallel and sends results on batches as they
// arrive, at most BatchSize per batch. Partial batches are flushed every
// FlushInterval. batches is closed when Run returns; the caller must keep
// draining it until then.
func (wp *WorkerPool) Run(ctx context.Context, jobs []Job, batches chan<- []domain.TestResult) (Report, error) {
	defer close(batches)

	report := Report{Workers: wp.workers()}
	if len(jobs) == 0 {
		return report, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan domain.TestResult)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		wp.collect(results, batches)
	}()

	var mu sync.Mutex
	var passed, failed, skipped int
	var stopped bool
	runs := make([]ProjectRun, len(jobs))
	errs := make([]error, len(jobs))
	startTime := time.Now()

	onResult := func(res domain.TestResult) {
		results <- res
		mu.Lock()
		defer mu.Unlock()
		switch res.Outcome {
		case domain.OutcomePassed:
			passed++
		case domain.OutcomeFailed:
			failed++
			if wp.failFast && !stopped {
				stopped = true
				cancel()
			}
		case domain.OutcomeSkipped:
			skipped++
		}
		if wp.progress != nil {
			wp.progress.Update(passed, failed, skipped)
		}
	}

	lanes := wp.scheduler.Schedule(numbered(jobs), wp.workers())
	report.Workers = len(lanes)

	var wg sync.WaitGroup
	for _, lane := range lanes {
		wg.Add(1)
		go func(lane []Job) {
			defer wg.Done()
			for _, job := range lane {
				if ctx.Err() != nil {
					return
				}
				i := job.index
				run, err := wp.runner.Run(ctx, job.Project, job.Tests, onResult)
				runs[i] = run
				if err != nil && !errors.Is(err, context.Canceled) {
					wp.logger.Warn("run failed", "project", job.Project.Name, "error", err)
					errs[i] = err
				}
			}
		}(lane)
	}
	wg.Wait()
	close(results)
	<-collected

	if wp.progress != nil {
		wp.progress.Finish()
	}

	report.Duration = time.Since(startTime)
	report.Stopped = stopped
	for _, run := range runs {
		if run.Project.Path == "" {
			continue
		}
		report.Runs = append(report.Runs, run)
		report.Summary.Add(run.Summary)
	}

	// A caller cancellation wins over per-project errors
	if !stopped {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run cancelled: %w", err)
		}
	}
	return report, errors.Join(errs...)
}

// collect groups results into batches until results is closed
func (wp *WorkerPool) collect(results <-chan domain.TestResult, batches chan<- []domain.TestResult) {
	size := wp.config.BatchSize
	if size <= 0 {
		size = 1
	}
	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	var batch []domain.TestResult
	flush := func() {
		if len(batch) > 0 {
			batches <- batch
			batch = nil
		}
	}
	for {
		select {
		case res, ok := <-results:
			if !ok {
				flush()
				return
			}
			batch = append(batch, res)
			if len(batch) >= size {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
