package commands

import (
	"dte/internal/domain"
	"dte/internal/execution"
)

// catalog is the outcome of one discovery pass
type catalog struct {
	projects []domain.TestProject
	tests    []domain.DiscoveredTest
}

func newCatalog(projects []domain.TestProject, tests []domain.DiscoveredTest) *catalog {
	return &catalog{projects: projects, tests: tests}
}

// Names returns the distinct test names in discovery order
func (c *catalog) Names() []string {
	seen := make(map[string]bool, len(c.tests))
	var names []string
	for _, t := range c.tests {
		if !seen[t.FullName] {
			seen[t.FullName] = true
			names = append(names, t.FullName)
		}
	}
	return names
}

// Jobs groups the selected names by the projects that reported them. A
// project with every test selected runs unfiltered. The count is the number
// of results the jobs are expected to report.
func (c *catalog) Jobs(names []string) ([]execution.Job, int) {
	selected := make(map[string]bool, len(names))
	for _, n := range names {
		selected[n] = true
	}

	chosen := make(map[string][]string)
	total := make(map[string]int)
	for _, t := range c.tests {
		total[t.Project]++
		if selected[t.FullName] {
			chosen[t.Project] = append(chosen[t.Project], t.FullName)
		}
	}

	var jobs []execution.Job
	count := 0
	for _, p := range c.projects {
		tests := chosen[p.Dir]
		if len(tests) == 0 {
			continue
		}
		count += len(tests)
		job := execution.Job{Project: p}
		if len(tests) < total[p.Dir] {
			job.Tests = tests
		}
		jobs = append(jobs, job)
	}
	return jobs, count
}
