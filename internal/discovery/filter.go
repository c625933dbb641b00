package discovery

import (
	"path"
	"strings"

	"dte/internal/testname"
)

// Filter filters discovered test names by pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the test names matching pattern.
//
// A pattern without wildcards matches any name containing it. A pattern with
// * or ? is matched against the full name and against the test's own segment
// (so "Should*" finds "Ns.Fixture.ShouldWork(1)"); if neither matches, the
// literal parts between * must appear in order, e.g. "*Payment*Refund*".
func (f *Filter) FilterByName(tests []string, pattern string) []string {
	if pattern == "" {
		return tests
	}

	var filtered []string
	for _, test := range tests {
		if matchName(test, pattern) {
			filtered = append(filtered, test)
		}
	}
	return filtered
}

func matchName(test, pattern string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(test, pattern)
	}

	if matched, err := path.Match(pattern, test); err == nil && matched {
		return true
	}

	parsed := testname.Parse(test)
	last := parsed.Tail(len(parsed.Segments) - 1)
	if matched, err := path.Match(pattern, last); err == nil && matched {
		return true
	}

	return containsInOrder(test, strings.Split(pattern, "*"))
}

// containsInOrder reports whether every non-empty part occurs in s, in order.
// At least one part must be non-empty.
func containsInOrder(s string, parts []string) bool {
	found := false
	for _, part := range parts {
		if part == "" {
			continue
		}
		if strings.Contains(part, "?") {
			return false
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
		found = true
	}
	return found
}
