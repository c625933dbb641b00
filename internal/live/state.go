package live

import "dte/internal/domain"

// State is the run state of a node.
type State int

const (
	NotRun State = iota
	Running
	Passed
	Failed
	Skipped
)

func (s State) String() string {
	switch s {
	case NotRun:
		return "not-run"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// precedence orders states for folder aggregation:
// Running > Failed > Skipped > NotRun > Passed.
func precedence(s State) int {
	switch s {
	case Running:
		return 4
	case Failed:
		return 3
	case Skipped:
		return 2
	case NotRun:
		return 1
	default:
		return 0
	}
}

// Aggregate returns the highest-precedence state in states. ok is false
// when states is empty.
func Aggregate(states ...State) (s State, ok bool) {
	best := -1
	for _, st := range states {
		if p := precedence(st); p > best {
			best, s = p, st
		}
	}
	return s, best >= 0
}

// FromOutcome maps a reported outcome to a leaf state.
func FromOutcome(o domain.Outcome) State {
	switch o {
	case domain.OutcomePassed:
		return Passed
	case domain.OutcomeFailed:
		return Failed
	case domain.OutcomeSkipped:
		return Skipped
	default:
		return NotRun
	}
}
