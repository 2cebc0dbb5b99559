package bus

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/tendant/simple-paintmixer/internal/mixer"
	"github.com/tendant/simple-paintmixer/pkg/schema"
)

// Publisher is the part of Client the lifecycle publisher needs.
type Publisher interface {
	PublishJSON(subject string, v any) error
}

// LifecyclePublisher is a mixer.Observer that publishes every job event as
// a schema.JobLifecycleEvent. Publish errors are logged and dropped.
type LifecyclePublisher struct {
	pub     Publisher
	subject string
	logger  *slog.Logger
}

func NewLifecyclePublisher(pub Publisher, subject string, logger *slog.Logger) *LifecyclePublisher {
	return &LifecyclePublisher{pub: pub, subject: subject, logger: logger}
}

func (p *LifecyclePublisher) Observe(e mixer.Event) {
	evt := LifecycleEvent(e)
	if err := p.pub.PublishJSON(p.subject, evt); err != nil {
		p.logger.Error("publish lifecycle event", "code", evt.Code, "stage", evt.Stage, "err", err)
	}
}

// LifecycleEvent converts a device event into its wire form.
func LifecycleEvent(e mixer.Event) schema.JobLifecycleEvent {
	evt := schema.JobLifecycleEvent{
		EventID:    uuid.NewString(),
		Code:       int(e.Job.Code),
		Stage:      schema.LifecycleStage(e.Stage),
		Dyes:       e.Job.Dyes.ByKey(),
		HappenedAt: e.At.Unix(),
	}
	if !e.Job.CreatedAt.IsZero() {
		evt.CreatedAt = e.Job.CreatedAt.Unix()
	}
	return evt
}
