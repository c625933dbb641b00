package domain

// TestFailure holds the details dotnet test prints below a failed test
type TestFailure struct {
	Message    string   `json:"message"`
	StackTrace []string `json:"stack_trace,omitempty"`
	File       string   `json:"file,omitempty"`
	Line       int      `json:"line,omitempty"`
	Resolved   bool     `json:"resolved,omitempty"` // marked in the failures viewer
}
