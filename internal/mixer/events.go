package mixer

import "time"

// Stage names a lifecycle step reported to observers.
type Stage string

const (
	StageQueued    Stage = "queued"
	StageRunning   Stage = "running"
	StageCompleted Stage = "completed"
	StageCanceled  Stage = "canceled"
	StageAbandoned Stage = "abandoned"
	StageRejected  Stage = "rejected"
)

// Event describes one lifecycle step. For StageRejected, Job.Code is
// RejectedCode and Job.Dyes holds the submitted amounts.
type Event struct {
	Job   Job
	Stage Stage
	At    time.Time
}

// Observer receives lifecycle events. Observe runs on the goroutine that
// caused the step and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
