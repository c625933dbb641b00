package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dte/internal/domain"
)

const runOutput = `  Determining projects to restore...
Starting test execution, please wait...
A total of 1 test files matched the specified pattern.
  Passed App.Tests.SampleTests.TestPassing [12 ms]
  Failed App.Tests.SampleTests.TestFailing [45 ms]
  Error Message:
   Assert.Equal() Failure
   Expected: 1
   Actual:   2
  Stack Trace:
     at App.Tests.SampleTests.TestFailing() in /src/App.Tests/SampleTests.cs:line 42
     at System.RuntimeMethodHandle.InvokeMethod(Object target)

  Skipped App.Tests.SampleTests.TestLater [1 ms]
  Passed App.Tests.MathTests.Adds(a: 1, b: [2, 3]) [< 1 ms]
  Failed App.Tests.MathTests.Divides(x: 0) [1 s]
  Error Message:
   System.DivideByZeroException : Attempted to divide by zero.

Failed!  - Failed:     2, Passed:     2, Skipped:     1, Total:     5, Duration: 1 s - App.Tests.dll (net8.0)
`

func TestDotnetParser_ParseResults(t *testing.T) {
	p := NewDotnetParser()
	results := p.ParseResults(runOutput, "/src/App.Tests")

	require.Len(t, results, 5)

	expected := []struct {
		name    string
		outcome domain.Outcome
	}{
		{"App.Tests.SampleTests.TestPassing", domain.OutcomePassed},
		{"App.Tests.SampleTests.TestFailing", domain.OutcomeFailed},
		{"App.Tests.SampleTests.TestLater", domain.OutcomeSkipped},
		{"App.Tests.MathTests.Adds(a: 1, b: [2, 3])", domain.OutcomePassed},
		{"App.Tests.MathTests.Divides(x: 0)", domain.OutcomeFailed},
	}
	for i, e := range expected {
		assert.Equal(t, e.name, results[i].FullName)
		assert.Equal(t, e.outcome, results[i].Outcome)
		assert.Equal(t, "/src/App.Tests", results[i].Project)
	}

	assert.Equal(t, 12*time.Millisecond, results[0].Duration)
	assert.Nil(t, results[0].Failure)

	failing := results[1].Failure
	require.NotNil(t, failing)
	assert.Equal(t, "Assert.Equal() Failure\nExpected: 1\nActual:   2", failing.Message)
	assert.Len(t, failing.StackTrace, 2)
	assert.Equal(t, "/src/App.Tests/SampleTests.cs", failing.File)
	assert.Equal(t, 42, failing.Line)

	divides := results[4].Failure
	require.NotNil(t, divides)
	assert.Equal(t, "System.DivideByZeroException : Attempted to divide by zero.", divides.Message)
	assert.Empty(t, divides.StackTrace)
	assert.Equal(t, time.Second, results[4].Duration)
}

func TestDotnetParser_ParseResults_LongLines(t *testing.T) {
	long := "Ns.F.T(\"" + strings.Repeat("x", 2*1024*1024) + "\")"
	output := "  Passed " + long + " [1 ms]\n  Passed Ns.F.After [1 ms]\n"

	results := NewDotnetParser().ParseResults(output, "")
	require.Len(t, results, 2)
	assert.Equal(t, long, results[0].FullName)
	assert.Equal(t, "Ns.F.After", results[1].FullName)
}

func TestDotnetParser_ParseResults_Empty(t *testing.T) {
	p := NewDotnetParser()
	assert.Empty(t, p.ParseResults("Build succeeded.\n", ""))
	assert.Empty(t, p.ParseResults("", ""))
}

func TestDotnetParser_ParseSummary(t *testing.T) {
	p := NewDotnetParser()

	tests := []struct {
		name     string
		output   string
		expected domain.Summary
	}{
		{
			name:     "summary line format",
			output:   "Passed!  - Failed:     0, Passed:    47, Skipped:     3, Total:    50",
			expected: domain.Summary{Passed: 47, Failed: 0, Skipped: 3, Total: 50, Parsed: true},
		},
		{
			name:     "with failures",
			output:   runOutput,
			expected: domain.Summary{Passed: 2, Failed: 2, Skipped: 1, Total: 5, Parsed: true},
		},
		{
			name: "multi-line format",
			output: `Total tests: 50
     Passed: 47
     Failed: 2
    Skipped: 1`,
			expected: domain.Summary{Passed: 47, Failed: 2, Skipped: 1, Total: 50, Parsed: true},
		},
		{
			name: "several projects",
			output: "Passed!  - Failed:     0, Passed:     3, Skipped:     0, Total:     3\n" +
				"Failed!  - Failed:     1, Passed:     4, Skipped:     0, Total:     5\n",
			expected: domain.Summary{Passed: 7, Failed: 1, Total: 8, Parsed: true},
		},
		{
			name:     "no test results",
			output:   "Build started...\nBuild succeeded.\n",
			expected: domain.Summary{Parsed: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.ParseSummary(tt.output))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		text     string
		expected time.Duration
	}{
		{"12 ms", 12 * time.Millisecond},
		{"12ms", 12 * time.Millisecond},
		{"< 1 ms", time.Millisecond},
		{"1 s", time.Second},
		{"1 m 3 s", time.Minute + 3*time.Second},
		{"", 0},
		{"soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDuration(tt.text))
		})
	}
}

func TestStream_HoldsFailuresUntilDetailsEnd(t *testing.T) {
	s := NewStream("proj")

	assert.Empty(t, s.Feed("  Failed Ns.T [1 ms]"))
	assert.Empty(t, s.Feed("  Error Message:"))
	assert.Empty(t, s.Feed("   boom"))

	completed := s.Feed("  Passed Ns.U [1 ms]")
	require.Len(t, completed, 2)
	assert.Equal(t, "Ns.T", completed[0].FullName)
	assert.Equal(t, "boom", completed[0].Failure.Message)
	assert.Equal(t, "Ns.U", completed[1].FullName)

	assert.Empty(t, s.Flush())
}

func TestStream_StackTraceEndsAtBlankLine(t *testing.T) {
	s := NewStream("")

	s.Feed("  Failed Ns.T")
	s.Feed("  Stack Trace:")
	s.Feed("     at Ns.T() in C:\\src\\T.cs:line 7")
	completed := s.Feed("")

	require.Len(t, completed, 1)
	assert.Equal(t, `C:\src\T.cs`, completed[0].Failure.File)
	assert.Equal(t, 7, completed[0].Failure.Line)
	assert.Zero(t, completed[0].Duration)
}
