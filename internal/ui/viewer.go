package ui

import "dte/internal/domain"

// Viewer displays test results in an interactive TUI
type Viewer interface {
	View(record *domain.RunRecord) error
}
