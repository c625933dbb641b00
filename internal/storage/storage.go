package storage

import (
	"time"

	"dte/internal/config"
	"dte/internal/domain"
)

// Storage persists and loads test run results (e.g. for the failures viewer).
type Storage interface {
	Save(results []domain.TestResult, duration time.Duration, projects, workers int) error
	Load() (*domain.RunRecord, error)
	// Merge replaces the stored results of the given tests, keeping the rest
	// (e.g. after re-running a subtree).
	Merge(results []domain.TestResult, duration time.Duration, workers int) error
	// SaveRecord writes a full record as is.
	SaveRecord(record *domain.RunRecord) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
	now func() time.Time
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg, now: time.Now}
}

// NewRecord builds a record and its counts from results
func NewRecord(results []domain.TestResult, duration time.Duration, projects, workers int, at time.Time) *domain.RunRecord {
	meta := domain.RunMeta{
		Projects:        projects,
		TotalTests:      len(results),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Workers:         workers,
		Timestamp:       at.Format(time.RFC3339),
	}
	for _, r := range results {
		switch r.Outcome {
		case domain.OutcomePassed:
			meta.PassedTests++
		case domain.OutcomeFailed:
			meta.FailedTests++
		case domain.OutcomeSkipped:
			meta.SkippedTests++
		}
	}
	return &domain.RunRecord{Meta: meta, Results: results}
}
