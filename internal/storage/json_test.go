package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dte/internal/config"
	"dte/internal/domain"
)

func newTestStorage(t *testing.T) *JSONStorage {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	s := NewJSONStorage(cfg)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	s := newTestStorage(t)

	results := []domain.TestResult{
		{FullName: "Ns.A", Outcome: domain.OutcomePassed, Duration: 3 * time.Millisecond, Project: "/src/App.Tests"},
		{FullName: "Ns.B(1)", Outcome: domain.OutcomeFailed, Project: "/src/App.Tests", Failure: &domain.TestFailure{
			Message:    "boom",
			StackTrace: []string{"at Ns.B() in /src/B.cs:line 9"},
			File:       "/src/B.cs",
			Line:       9,
		}},
		{FullName: "Ns.C", Outcome: domain.OutcomeSkipped, Project: "/src/App.Tests"},
	}
	require.NoError(t, s.Save(results, 2*time.Second, 1, 4))

	record, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.RunMeta{
		Projects:        1,
		TotalTests:      3,
		PassedTests:     1,
		FailedTests:     1,
		SkippedTests:    1,
		Duration:        "2s",
		DurationSeconds: 2,
		Workers:         4,
		Timestamp:       "2026-01-02T03:04:05Z",
	}, record.Meta)
	assert.Equal(t, results, record.Results)

	failures := record.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "Ns.B(1)", failures[0].FullName)
}

func TestJSONStorage_LoadMissing(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Load()
	assert.Error(t, err)
}

func TestJSONStorage_Merge(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.Save([]domain.TestResult{
		{FullName: "Ns.A", Outcome: domain.OutcomeFailed, Project: "p1"},
		{FullName: "Ns.B", Outcome: domain.OutcomePassed, Project: "p1"},
		{FullName: "Ns.A", Outcome: domain.OutcomePassed, Project: "p2"},
	}, time.Second, 2, 2))

	require.NoError(t, s.Merge([]domain.TestResult{
		{FullName: "Ns.A", Outcome: domain.OutcomePassed, Project: "p1"},
		{FullName: "Ns.D", Outcome: domain.OutcomeSkipped, Project: "p1"},
	}, time.Second, 1))

	record, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, []domain.TestResult{
		{FullName: "Ns.A", Outcome: domain.OutcomePassed, Project: "p1"},
		{FullName: "Ns.B", Outcome: domain.OutcomePassed, Project: "p1"},
		{FullName: "Ns.A", Outcome: domain.OutcomePassed, Project: "p2"},
		{FullName: "Ns.D", Outcome: domain.OutcomeSkipped, Project: "p1"},
	}, record.Results)
	assert.Equal(t, 0, record.Meta.FailedTests)
	assert.Equal(t, 1, record.Meta.SkippedTests)
	assert.Equal(t, 2, record.Meta.Projects)
}

func TestJSONStorage_MergeWithoutRecord(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.Merge([]domain.TestResult{{FullName: "Ns.A", Outcome: domain.OutcomePassed}}, 0, 1))

	record, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, record.Results, 1)
}
