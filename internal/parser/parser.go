package parser

import "dte/internal/domain"

// Parser parses test run output into per-test results
type Parser interface {
	ParseResults(output string, project string) []domain.TestResult
	ParseSummary(output string) domain.Summary
}
