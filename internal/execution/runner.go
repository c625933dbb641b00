package execution

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"dte/internal/config"
	"dte/internal/discovery"
	"dte/internal/domain"
	"dte/internal/parser"
)

// maxLineSize bounds a single line of dotnet output
const maxLineSize = 1024 * 1024

// CommandFactory builds the process for one dotnet invocation
type CommandFactory func(ctx context.Context, name string, args ...string) *exec.Cmd

// ProjectRun is the outcome of running one project
type ProjectRun struct {
	Project  domain.TestProject
	Results  []domain.TestResult
	Summary  domain.Summary
	ExitCode int
}

// Runner executes dotnet test for a single project
type Runner struct {
	config  *config.Config
	parser  parser.Parser
	command CommandFactory
	logger  *slog.Logger
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, p parser.Parser, logger *slog.Logger) *Runner {
	return &Runner{
		config:  cfg,
		parser:  p,
		command: exec.CommandContext,
		logger:  logger,
	}
}

// WithCommand replaces how processes are created
func (r *Runner) WithCommand(f CommandFactory) *Runner {
	r.command = f
	return r
}

func (r *Runner) args(project domain.TestProject, extra ...string) []string {
	args := []string{"test", project.Path}
	args = append(args, extra...)
	return append(args, r.config.TestArgs...)
}

// ListTests asks a project for the names of its tests
func (r *Runner) ListTests(ctx context.Context, project domain.TestProject) ([]string, error) {
	cmd := r.command(ctx, r.config.DotnetPath, r.args(project, "--list-tests")...)
	cmd.Dir = project.Dir

	r.logger.Debug("listing tests", "project", project.Name, "args", cmd.Args)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("list tests in %s: %w\n%s", project.Name, err, tail(string(output), 20))
	}
	return discovery.ParseTestList(string(output)), nil
}

// Run executes the given tests of a project, or all of them when tests is
// empty, calling onResult as each result is printed. A non-zero exit caused
// by failing tests is not an error.
func (r *Runner) Run(ctx context.Context, project domain.TestProject, tests []string, onResult func(domain.TestResult)) (ProjectRun, error) {
	run := ProjectRun{Project: project}

	var extra []string
	if filter := BuildFilter(tests); filter != "" {
		extra = append(extra, "--filter", filter)
	}
	cmd := r.command(ctx, r.config.DotnetPath, r.args(project, extra...)...)
	cmd.Dir = project.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return run, fmt.Errorf("pipe output of %s: %w", project.Name, err)
	}

	r.logger.Debug("running tests", "project", project.Name, "tests", len(tests))
	if err := cmd.Start(); err != nil {
		return run, fmt.Errorf("start dotnet test in %s: %w", project.Name, err)
	}

	stream := parser.NewStream(project.Dir)
	emit := func(results []domain.TestResult) {
		for _, res := range results {
			run.Results = append(run.Results, res)
			if onResult != nil {
				onResult(res)
			}
		}
	}

	var output strings.Builder
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		output.WriteString(line)
		output.WriteByte('\n')
		emit(stream.Feed(line))
	}
	emit(stream.Flush())
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return run, ctx.Err()
	}
	if scanErr != nil {
		return run, fmt.Errorf("read output of %s: %w", project.Name, scanErr)
	}

	run.Summary = r.parser.ParseSummary(output.String())
	if !run.Summary.Parsed {
		run.Summary = countResults(run.Results)
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		run.ExitCode = exitErr.ExitCode()
		// dotnet exits non-zero when tests fail; without any results the build failed
		if len(run.Results) == 0 && run.Summary.Total == 0 {
			return run, fmt.Errorf("dotnet test in %s exited with code %d\n%s", project.Name, run.ExitCode, tail(output.String()+stderr.String(), 20))
		}
	default:
		return run, fmt.Errorf("wait for dotnet test in %s: %w", project.Name, waitErr)
	}
	return run, nil
}

func countResults(results []domain.TestResult) domain.Summary {
	var s domain.Summary
	for _, res := range results {
		switch res.Outcome {
		case domain.OutcomePassed:
			s.Passed++
		case domain.OutcomeFailed:
			s.Failed++
		case domain.OutcomeSkipped:
			s.Skipped++
		}
		s.Total++
	}
	return s
}

// tail returns the last n lines of output
func tail(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
