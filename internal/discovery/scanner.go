package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dte/internal/domain"
)

// projectExtensions are the project file types dotnet test can run
var projectExtensions = map[string]bool{
	".csproj": true,
	".fsproj": true,
	".vbproj": true,
}

// testSdkMarker identifies a project as a test project
const testSdkMarker = "Microsoft.NET.Test.Sdk"

// Scanner scans for test projects in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all test projects under the given root directory
func (s *Scanner) Scan(root string) ([]domain.TestProject, error) {
	var projects []domain.TestProject

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		ext := filepath.Ext(d.Name())
		if !projectExtensions[ext] {
			return nil
		}

		isTest, err := isTestProject(path)
		if err != nil {
			return err
		}
		if isTest {
			projects = append(projects, domain.TestProject{
				Path: path,
				Dir:  filepath.Dir(path),
				Name: strings.TrimSuffix(d.Name(), ext),
			})
		}

		return nil
	})

	return projects, err
}

// isTestProject reports whether the project file references the test SDK
func isTestProject(path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("error reading project %s: %w", path, err)
	}
	return strings.Contains(string(content), testSdkMarker), nil
}
