package parser

import (
	"strconv"
	"strings"

	"dte/internal/domain"
)

type section int

const (
	sectionNone section = iota
	sectionMessage
	sectionStack
	sectionOther
)

// Stream parses run output one line at a time, as the dotnet process
// produces it. A failed result is held back until the lines describing it
// have been read, so results come out of Feed one line late.
type Stream struct {
	project string
	pending *domain.TestResult
	section section
	message []string
}

// NewStream creates a Stream attributing results to project
func NewStream(project string) *Stream {
	return &Stream{project: project}
}

// Feed consumes one output line and returns any results it completed.
func (s *Stream) Feed(line string) []domain.TestResult {
	line = strings.TrimRight(line, "\r")

	if match := resultLine.FindStringSubmatch(line); match != nil {
		completed := s.Flush()
		result := domain.TestResult{
			FullName: strings.TrimSpace(match[2]),
			Outcome:  domain.ParseOutcome(match[1]),
			Duration: ParseDuration(match[3]),
			Project:  s.project,
		}
		if result.Outcome != domain.OutcomeFailed {
			return append(completed, result)
		}
		result.Failure = &domain.TestFailure{}
		s.pending = &result
		return completed
	}

	if s.pending == nil {
		return nil
	}

	// Failure details are indented; anything else ends them
	trimmed := strings.TrimSpace(line)
	if trimmed != "" && line[0] != ' ' && line[0] != '\t' {
		return s.Flush()
	}

	switch trimmed {
	case "Error Message:":
		s.section = sectionMessage
		return nil
	case "Stack Trace:":
		s.section = sectionStack
		return nil
	case "Standard Output Messages:", "Standard Error Messages:", "Debug Trace:":
		s.section = sectionOther
		return nil
	}

	switch s.section {
	case sectionMessage:
		if trimmed != "" || len(s.message) > 0 {
			s.message = append(s.message, trimmed)
		}
	case sectionStack:
		if trimmed == "" {
			return s.Flush()
		}
		s.addFrame(trimmed)
	}
	return nil
}

// Flush returns the held-back failed result, if any.
func (s *Stream) Flush() []domain.TestResult {
	if s.pending == nil {
		return nil
	}
	result := *s.pending

	// Trim trailing empty message lines
	for len(s.message) > 0 && s.message[len(s.message)-1] == "" {
		s.message = s.message[:len(s.message)-1]
	}
	result.Failure.Message = strings.Join(s.message, "\n")

	s.pending = nil
	s.section = sectionNone
	s.message = nil
	return []domain.TestResult{result}
}

func (s *Stream) addFrame(frame string) {
	failure := s.pending.Failure
	failure.StackTrace = append(failure.StackTrace, frame)
	if failure.File != "" {
		return
	}
	if match := stackLocation.FindStringSubmatch(frame); match != nil {
		failure.File = match[1]
		failure.Line, _ = strconv.Atoi(match[2])
	}
}
