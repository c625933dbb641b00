package execution

import (
	"context"

	"dte/internal/domain"
)

// Executor discovers and runs tests across projects
type Executor interface {
	Discover(ctx context.Context, projects []domain.TestProject) ([]domain.DiscoveredTest, error)
	Run(ctx context.Context, jobs []Job, batches chan<- []domain.TestResult) (Report, error)
}

// TestRunner runs dotnet test for a single project
type TestRunner interface {
	ListTests(ctx context.Context, project domain.TestProject) ([]string, error)
	Run(ctx context.Context, project domain.TestProject, tests []string, onResult func(domain.TestResult)) (ProjectRun, error)
}

// Progress receives running totals while tests execute
type Progress interface {
	Update(passed, failed, skipped int)
	Finish()
}
