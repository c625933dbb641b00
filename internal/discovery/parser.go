package discovery

import "strings"

// listHeader is the line dotnet test prints before the discovered tests
const listHeader = "The following Tests are available:"

// ParseTestList extracts test names from `dotnet test --list-tests` output.
// Names are the indented lines following the header, trimmed. Duplicates
// are kept, since discovery may legitimately report a test twice.
func ParseTestList(output string) []string {
	var names []string
	inList := false

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")

		if !inList {
			if strings.TrimSpace(line) == listHeader {
				inList = true
			}
			continue
		}

		// The list ends at the first blank or unindented line
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || (line[0] != ' ' && line[0] != '\t') {
			inList = strings.TrimSpace(line) == listHeader
			continue
		}

		names = append(names, trimmed)
	}

	return names
}
