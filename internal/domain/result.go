package domain

import "time"

// Outcome is the result of a single test case as reported by dotnet test
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeNotRun  Outcome = "not_run"
)

// ParseOutcome maps the words dotnet test and trx files use to an Outcome.
// Unknown words map to OutcomeNotRun.
func ParseOutcome(word string) Outcome {
	switch word {
	case "Passed", "passed":
		return OutcomePassed
	case "Failed", "failed", "Error", "error":
		return OutcomeFailed
	case "Skipped", "skipped", "Ignored", "ignored":
		return OutcomeSkipped
	default:
		return OutcomeNotRun
	}
}

// TestResult represents the outcome of one test case
type TestResult struct {
	FullName string        `json:"full_name"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration,omitempty"`
	Project  string        `json:"project,omitempty"`
	Failure  *TestFailure  `json:"failure,omitempty"`
}

// Summary holds the counts dotnet test prints at the end of a run
type Summary struct {
	Passed  int
	Failed  int
	Skipped int
	Total   int
	Parsed  bool // true if counts were found in the output
}

// Add aggregates another summary into this one. Parsed is sticky true.
func (s *Summary) Add(other Summary) {
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	s.Total += other.Total
	if other.Parsed {
		s.Parsed = true
	}
}

// RunMeta contains metadata about a test run
type RunMeta struct {
	Projects        int     `json:"projects"`
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	SkippedTests    int     `json:"skipped_tests"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// RunRecord is the persisted output of the last run
type RunRecord struct {
	Meta    RunMeta      `json:"meta"`
	Results []TestResult `json:"results"`
}

// Failures returns the failed results in record order.
func (r *RunRecord) Failures() []TestResult {
	var failed []TestResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}
