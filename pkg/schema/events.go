// pkg/schema/events.go
package schema

type LifecycleStage string

const (
	StageQueued    LifecycleStage = "queued"
	StageRunning   LifecycleStage = "running"
	StageCompleted LifecycleStage = "completed"
	StageCanceled  LifecycleStage = "canceled"
	StageAbandoned LifecycleStage = "abandoned"
	StageRejected  LifecycleStage = "rejected"
)

// JobLifecycleEvent is published on the event subject for every job state change.
type JobLifecycleEvent struct {
	EventID    string         `json:"event_id"`
	Code       int            `json:"code"`
	Stage      LifecycleStage `json:"stage"`
	Dyes       map[string]int `json:"dyes,omitempty"`
	CreatedAt  int64          `json:"created_at,omitempty"`
	HappenedAt int64          `json:"happened_at"`
}
