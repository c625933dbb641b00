package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"dte/internal/config"
	"dte/internal/domain"
	"dte/internal/live"
)

func init() {
	color.NoColor = true
}

func sampleTree() *live.Tree {
	tr := live.New()
	tr.Reconcile([]string{"Ns.A.T1", "Ns.A.T2(1)", "Ns.B.T"})
	return tr
}

func TestFormatter_PrintTree(t *testing.T) {
	tr := sampleTree()
	tr.Apply([]live.Result{
		{FullName: "Ns.A.T1", State: live.Passed},
		{FullName: "Ns.B.T", State: live.Failed},
	})

	var out bytes.Buffer
	NewFormatter(config.New(), &out).PrintTree(tr)

	expected := `Found 3 test(s):
└── ✗ Ns
    ├── ○ A
    │   ├── ✓ T1
    │   └── ○ T2(1)
    └── ✗ B
        └── ✗ T
`
	assert.Equal(t, expected, out.String())
}

func TestFormatter_PrintTree_Empty(t *testing.T) {
	var out bytes.Buffer
	NewFormatter(config.New(), &out).PrintTree(live.New())

	assert.Equal(t, "Found 0 test(s):\n", out.String())
}

func TestFormatter_PrintFlat(t *testing.T) {
	var out bytes.Buffer
	NewFormatter(config.New(), &out).PrintFlat([]string{"Ns.A", "Ns.B(1)"})

	assert.Equal(t, "Found 2 test(s):\nNs.A\nNs.B(1)\n", out.String())
}

func TestFormatter_PrintSummary(t *testing.T) {
	var out bytes.Buffer
	f := NewFormatter(config.New(), &out)

	f.PrintSummary(domain.Summary{Passed: 2, Failed: 1, Total: 3, Parsed: true}, 1500*time.Millisecond, 4)
	assert.Contains(t, out.String(), "Test Execution Statistics")
	assert.Contains(t, out.String(), "│ Total Tests                     │ 3                           │")
	assert.Contains(t, out.String(), "1.50s")
	assert.Contains(t, out.String(), "✗ 1 test(s) failed")

	out.Reset()
	f.PrintSummary(domain.Summary{Passed: 2, Total: 2}, time.Second, 1)
	assert.Contains(t, out.String(), "✓ All tests passed!")
}

func TestFormatter_PrintFailures(t *testing.T) {
	record := &domain.RunRecord{
		Meta: domain.RunMeta{Projects: 1, TotalTests: 3, FailedTests: 2, PassedTests: 1, Timestamp: "2026-01-02T03:04:05Z"},
		Results: []domain.TestResult{
			{FullName: "Ns.A.T1", Outcome: domain.OutcomeFailed, Failure: &domain.TestFailure{Message: "boom\nmore detail"}},
			{FullName: "Ns.B.T", Outcome: domain.OutcomeFailed, Failure: &domain.TestFailure{}},
			{FullName: "Ns.C", Outcome: domain.OutcomePassed},
		},
	}

	var out bytes.Buffer
	NewFormatter(config.New(), &out).PrintFailures(record)

	assert.Contains(t, out.String(), "2026-01-02T03:04:05Z")
	assert.Contains(t, out.String(), "✗ 2 test(s) failed")
	assert.Contains(t, out.String(), `└── Ns
    ├── A
    │   └── ✗ T1
    │       └── boom
    └── B
        └── ✗ T
`)
	assert.NotContains(t, out.String(), "more detail")
	assert.NotContains(t, out.String(), "Ns.C")
}

func TestFormatter_PrintFailures_None(t *testing.T) {
	var out bytes.Buffer
	NewFormatter(config.New(), &out).PrintFailures(&domain.RunRecord{})

	assert.Contains(t, out.String(), "✓ All tests passed!")
}

func TestCenter(t *testing.T) {
	assert.Equal(t, "  ab   ", center("ab", 7))
	assert.Equal(t, "abc", center("abc", 2))
}
