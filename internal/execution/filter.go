package execution

import (
	"strings"

	"dte/internal/testname"
)

// filterEscaper escapes the characters dotnet test treats as filter syntax
var filterEscaper = strings.NewReplacer(
	`\`, `\\`,
	`(`, `\(`,
	`)`, `\)`,
	`&`, `\&`,
	`|`, `\|`,
	`=`, `\=`,
	`!`, `\!`,
	`~`, `\~`,
)

// BuildFilter builds a --filter expression selecting the given tests.
// Parameterized cases are selected by their method name, since dotnet
// matches FullyQualifiedName without arguments. An empty list selects
// nothing and yields an empty filter.
func BuildFilter(tests []string) string {
	seen := make(map[string]bool)
	var clauses []string
	for _, test := range tests {
		name := methodName(test)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		clauses = append(clauses, "FullyQualifiedName~"+filterEscaper.Replace(name))
	}
	return strings.Join(clauses, "|")
}

// methodName strips the argument list from the last segment of a test name
func methodName(test string) string {
	parsed := testname.Parse(test)
	if len(parsed.Segments) == 0 {
		return ""
	}
	last := parsed.Last()
	if !last.HasBrackets() {
		return test
	}
	return test[:last.Brackets.Start]
}
