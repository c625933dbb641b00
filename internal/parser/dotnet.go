package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dte/internal/domain"
)

var (
	// Passed App.Tests.UserTests.CreatesUser [12 ms]
	resultLine = regexp.MustCompile(`^\s*(Passed|Failed|Skipped)\s+(.+?)(?:\s+\[([^\]]*)\])?\s*$`)
	// at App.Tests.UserTests.DeletesUser() in /src/App.Tests/UserTests.cs:line 42
	stackLocation = regexp.MustCompile(`\sin\s+(.+):line\s+(\d+)\s*$`)
	durationPart  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(ms|s|m|h)\b`)

	summaryLine  = regexp.MustCompile(`Failed:\s*(\d+),\s*Passed:\s*(\d+),\s*Skipped:\s*(\d+)`)
	passedCount  = regexp.MustCompile(`(?m)^\s*Passed:\s*(\d+)`)
	failedCount  = regexp.MustCompile(`(?m)^\s*Failed:\s*(\d+)`)
	skippedCount = regexp.MustCompile(`(?m)^\s*Skipped:\s*(\d+)`)
)

// DotnetParser parses `dotnet test` console output
type DotnetParser struct{}

// NewDotnetParser creates a new DotnetParser
func NewDotnetParser() *DotnetParser {
	return &DotnetParser{}
}

// ParseResults extracts every per-test result line from a complete run output,
// including the failure details printed under failed tests.
func (p *DotnetParser) ParseResults(output string, project string) []domain.TestResult {
	stream := NewStream(project)
	var results []domain.TestResult

	for _, line := range strings.Split(output, "\n") {
		results = append(results, stream.Feed(line)...)
	}
	return append(results, stream.Flush()...)
}

// ParseSummary extracts test counts from dotnet test output.
// dotnet test outputs summary lines like:
//
//	Passed!  - Failed:     0, Passed:    47, Skipped:     3, Total:    50
//
// Or in newer versions:
//
//	Total tests: 50
//	     Passed: 47
//	     Failed: 2
//	    Skipped: 1
//
// Summaries of several projects in one output are added together.
func (p *DotnetParser) ParseSummary(output string) domain.Summary {
	var summary domain.Summary

	if matches := summaryLine.FindAllStringSubmatch(output, -1); len(matches) > 0 {
		for _, match := range matches {
			s := domain.Summary{Parsed: true}
			s.Failed, _ = strconv.Atoi(match[1])
			s.Passed, _ = strconv.Atoi(match[2])
			s.Skipped, _ = strconv.Atoi(match[3])
			s.Total = s.Passed + s.Failed + s.Skipped
			summary.Add(s)
		}
		return summary
	}

	for _, c := range []struct {
		re  *regexp.Regexp
		dst *int
	}{
		{passedCount, &summary.Passed},
		{failedCount, &summary.Failed},
		{skippedCount, &summary.Skipped},
	} {
		for _, match := range c.re.FindAllStringSubmatch(output, -1) {
			n, _ := strconv.Atoi(match[1])
			*c.dst += n
			summary.Parsed = true
		}
	}

	if summary.Parsed {
		summary.Total = summary.Passed + summary.Failed + summary.Skipped
	}
	return summary
}

// ParseDuration converts the bracketed duration dotnet test prints, such as
// "12 ms", "< 1 ms" or "1 m 3 s", into a time.Duration. Unknown text is zero.
func ParseDuration(text string) time.Duration {
	var total time.Duration
	for _, match := range durationPart.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		var unit time.Duration
		switch match[2] {
		case "ms":
			unit = time.Millisecond
		case "s":
			unit = time.Second
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		}
		total += time.Duration(value * float64(unit))
	}
	return total
}
