package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path, relative to the project path
	DefaultTestPath = "."
	// DefaultDotnetPath is the dotnet executable looked up on PATH
	DefaultDotnetPath = "dotnet"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = ".dte"
	// DefaultProcessors is the default number of projects run at once
	DefaultProcessors = 4
	// DefaultBatchSize is how many results are delivered to the tree at once
	DefaultBatchSize = 25
	// DotenvFile is read from the project path when present
	DotenvFile = ".env"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for test projects
var DefaultPathsToIgnore = []string{
	"bin",
	"obj",
	"node_modules",
	"packages",
	"artifacts",
	"TestResults",
}
