package domain

// TestProject represents a .NET test project found under the test path
type TestProject struct {
	Path string // Full path to the project file
	Dir  string // Directory dotnet test is run in
	Name string // Project file name without extension
}

// DiscoveredTest is a single test name reported by a project's discovery pass
type DiscoveredTest struct {
	FullName string // Fully qualified name as printed by dotnet test
	Project  string // Directory of the project that reported it
}
