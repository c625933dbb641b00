package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"dte/internal/domain"
)

// Save writes test results to the configured JSON output file.
func (s *JSONStorage) Save(results []domain.TestResult, duration time.Duration, projects, workers int) error {
	return s.SaveRecord(NewRecord(results, duration, projects, workers, s.now()))
}

// Load reads the last test results from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.RunRecord, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var record domain.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &record, nil
}

// Merge folds results into the stored record. Results replace stored ones
// with the same full name and project; new ones are appended. Without a
// stored record Merge behaves like Save.
func (s *JSONStorage) Merge(results []domain.TestResult, duration time.Duration, workers int) error {
	previous, err := s.Load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		previous = &domain.RunRecord{}
	}

	type key struct{ name, project string }
	fresh := make(map[key]domain.TestResult, len(results))
	for _, r := range results {
		fresh[key{r.FullName, r.Project}] = r
	}

	merged := make([]domain.TestResult, 0, len(previous.Results)+len(results))
	projects := make(map[string]bool)
	for _, r := range previous.Results {
		k := key{r.FullName, r.Project}
		if r2, ok := fresh[k]; ok {
			r = r2
			delete(fresh, k)
		}
		merged = append(merged, r)
		projects[r.Project] = true
	}
	for _, r := range results {
		if _, ok := fresh[key{r.FullName, r.Project}]; ok {
			merged = append(merged, r)
			projects[r.Project] = true
		}
	}

	return s.SaveRecord(NewRecord(merged, duration, len(projects), workers, s.now()))
}

// SaveRecord writes the full record to the configured JSON file.
func (s *JSONStorage) SaveRecord(record *domain.RunRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
