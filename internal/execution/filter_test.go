package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name     string
		tests    []string
		expected string
	}{
		{
			name:     "no tests",
			tests:    nil,
			expected: "",
		},
		{
			name:     "single test",
			tests:    []string{"Ns.Fixture.Test"},
			expected: "FullyQualifiedName~Ns.Fixture.Test",
		},
		{
			name:     "parameterized cases collapse to their method",
			tests:    []string{"Ns.F.T(1)", "Ns.F.T(2)", "Ns.F.U"},
			expected: "FullyQualifiedName~Ns.F.T|FullyQualifiedName~Ns.F.U",
		},
		{
			name:     "fixture arguments are kept and escaped",
			tests:    []string{`Ns.F("a|b").T`},
			expected: `FullyQualifiedName~Ns.F\("a\|b"\).T`,
		},
		{
			name:     "nested class",
			tests:    []string{"Ns.Outer+Inner.T"},
			expected: "FullyQualifiedName~Ns.Outer+Inner.T",
		},
		{
			name:     "empty names are skipped",
			tests:    []string{"", "Ns.T"},
			expected: "FullyQualifiedName~Ns.T",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildFilter(tt.tests))
		})
	}
}
