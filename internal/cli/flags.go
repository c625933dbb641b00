package cli

import "dte/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	Processors  int
	TestPath    string
	NameFilter  string
	Test        string
	Flat        bool
	FailFast    bool
	Print       bool
	Verbose     bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath: f.ProjectPath,
		Processors:  f.Processors,
		TestPath:    f.TestPath,
		NameFilter:  f.NameFilter,
		Test:        f.Test,
		Flat:        f.Flat,
		FailFast:    f.FailFast,
		Print:       f.Print,
		Verbose:     f.Verbose,
	}
}
