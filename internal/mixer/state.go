package mixer

import "fmt"

// State is the lifecycle state of a job record.
type State int32

const (
	Queued State = iota
	Running
	Completed
	Canceled
)

func (s State) String() string {
	switch s {
	case Queued:
		return "Queued"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Canceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(s))
	}
}

// Terminal reports whether the state accepts no further transitions.
func (s State) Terminal() bool { return s == Completed || s == Canceled }

// Active reports whether the state counts against the capacity gate.
func (s State) Active() bool { return s == Queued || s == Running }

// Status is the coarse result of QueryState.
type Status int

const (
	StatusNotFound  Status = -1
	StatusPending   Status = 0
	StatusCompleted Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "not_found"
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func statusOf(s State) Status {
	switch s {
	case Queued, Running:
		return StatusPending
	case Completed:
		return StatusCompleted
	default:
		return StatusNotFound
	}
}
