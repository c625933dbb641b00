package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Toolchain settings
	DotnetPath string
	TestArgs   []string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors int
	BatchSize  int

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

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

// EnvOverrides are the settings read from the environment and the
// project's .env file
type EnvOverrides struct {
	ProjectPath   string   `env:"DTE_PROJECT_PATH"`
	DotnetPath    string   `env:"DTE_DOTNET_PATH"`
	Processors    int      `env:"DTE_PROCESSORS"`
	BatchSize     int      `env:"DTE_BATCH_SIZE"`
	PathsToIgnore []string `env:"DTE_PATHS_TO_IGNORE" envSeparator:","`
	// TestArgs is split on spaces. Quoting is not supported, so an argument
	// cannot itself contain a space.
	TestArgs []string `env:"DTE_TEST_ARGS" envSeparator:" "`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		DotnetPath:     DefaultDotnetPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Processors:     DefaultProcessors,
		BatchSize:      DefaultBatchSize,
		Flags:          Flags{Processors: DefaultProcessors},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config from defaults, the environment, the project's .env
// file and flags, later sources winning. Process environment variables take
// precedence over .env entries.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.Apply(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overlays the environment and flags onto the config
func (c *Config) Apply(flags Flags) error {
	c.Flags = flags
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}

	overrides, err := ReadEnv(c.ProjectPath, os.Environ())
	if err != nil {
		return err
	}
	c.applyEnv(overrides)

	// Flags beat the environment
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	return nil
}

// ReadEnv parses overrides from environ, filling keys it lacks from the
// .env file in projectPath. A missing .env file is not an error.
func ReadEnv(projectPath string, environ []string) (EnvOverrides, error) {
	var overrides EnvOverrides

	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			vars[key] = value
		}
	}
	dotenv, err := godotenv.Read(filepath.Join(projectPath, DotenvFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return overrides, fmt.Errorf("read %s: %w", DotenvFile, err)
	}
	for key, value := range dotenv {
		if _, ok := vars[key]; !ok {
			vars[key] = value
		}
	}

	if err := env.ParseWithOptions(&overrides, env.Options{Environment: vars}); err != nil {
		return overrides, fmt.Errorf("parse environment: %w", err)
	}
	overrides.TestArgs = nonEmpty(overrides.TestArgs)
	overrides.PathsToIgnore = nonEmpty(overrides.PathsToIgnore)
	return overrides, nil
}

// nonEmpty drops the empty fields left by repeated separators
func nonEmpty(fields []string) []string {
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (c *Config) applyEnv(o EnvOverrides) {
	if o.ProjectPath != "" {
		c.ProjectPath = o.ProjectPath
	}
	if o.DotnetPath != "" {
		c.DotnetPath = o.DotnetPath
	}
	if o.Processors > 0 {
		c.Processors = o.Processors
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if len(o.PathsToIgnore) > 0 {
		c.PathsToIgnore = o.PathsToIgnore
	}
	if len(o.TestArgs) > 0 {
		c.TestArgs = o.TestArgs
	}
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to the project path if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	// Default: combine project path and test path
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and list always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
