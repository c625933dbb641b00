package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()
	names := []string{
		"App.Tests.UserTests.CreatesUser",
		"App.Tests.PaymentTests.Refund(42)",
		"App.Tests.PaymentServiceTests.ChargesCard",
		`App.Tests.OrderTests.ShouldShip("a.b")`,
	}

	tests := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{
			name:     "empty pattern returns all",
			pattern:  "",
			expected: names,
		},
		{
			name:     "simple contains match",
			pattern:  "UserTests",
			expected: []string{"App.Tests.UserTests.CreatesUser"},
		},
		{
			name:    "wildcard substring",
			pattern: "*Payment*",
			expected: []string{
				"App.Tests.PaymentTests.Refund(42)",
				"App.Tests.PaymentServiceTests.ChargesCard",
			},
		},
		{
			name:     "wildcard on test segment",
			pattern:  "Should*",
			expected: []string{`App.Tests.OrderTests.ShouldShip("a.b")`},
		},
		{
			name:     "parts must appear in order",
			pattern:  "*Payment*Refund*",
			expected: []string{"App.Tests.PaymentTests.Refund(42)"},
		},
		{
			name:     "parts out of order do not match",
			pattern:  "*Refund*Payment*",
			expected: nil,
		},
		{
			name:     "full name glob",
			pattern:  "App.Tests.UserTests.*",
			expected: []string{"App.Tests.UserTests.CreatesUser"},
		},
		{
			name:     "double star matches everything",
			pattern:  "**",
			expected: names,
		},
		{
			name:     "no matches",
			pattern:  "*NonExistent*",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, filter.FilterByName(names, tt.pattern))
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty test list", func(t *testing.T) {
		assert.Empty(t, filter.FilterByName([]string{}, "*Tests*"))
	})

	t.Run("question mark wildcard", func(t *testing.T) {
		result := filter.FilterByName([]string{"Ns.T1", "Ns.T22"}, "Ns.T?")
		assert.Equal(t, []string{"Ns.T1"}, result)
	})
}
