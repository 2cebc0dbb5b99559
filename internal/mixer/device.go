package mixer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// MaxActiveJobs is the number of jobs that may be queued or running at once.
	MaxActiveJobs = 32

	// DefaultProcessingTime is how long the mixer spends on one job.
	DefaultProcessingTime = 15 * time.Second
)

// Config holds device settings.
type Config struct {
	ProcessingTime time.Duration
}

// DefaultConfig returns the settings of the physical mixer.
func DefaultConfig() Config {
	return Config{ProcessingTime: DefaultProcessingTime}
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the device logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) { d.logger = l }
}

// WithObserver registers an observer for lifecycle events.
func WithObserver(o Observer) Option {
	return func(d *Device) { d.observers = append(d.observers, o) }
}

// WithClock overrides the time source used for job and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Device) { d.now = now }
}

// Device emulates a paint mixer with one processing station. Jobs are
// admitted by Submit, processed one at a time in arrival order by a single
// worker goroutine, and may be canceled until they complete.
type Device struct {
	cfg       Config
	logger    *slog.Logger
	observers []Observer
	now       func() time.Time

	jobs   registry
	alloc  *allocator
	queue  *queue
	active atomic.Int32

	mu         sync.Mutex
	started    bool
	shutdown   chan struct{}
	stopOnce   sync.Once
	workerDone chan struct{}
	clearOnce  sync.Once
}

// New creates a device. Call Start to begin processing.
func New(cfg Config, opts ...Option) *Device {
	if cfg.ProcessingTime <= 0 {
		cfg.ProcessingTime = DefaultProcessingTime
	}
	d := &Device{
		cfg:        cfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		queue:      newQueue(),
		shutdown:   make(chan struct{}),
		workerDone: make(chan struct{}),
	}
	d.alloc = newAllocator(d.jobs.contains)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker. Calls after the first, or after Shutdown, do
// nothing.
func (d *Device) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.isShutdown() {
		return
	}
	d.started = true
	d.logger.Info("mixer starting", "processing_time", d.cfg.ProcessingTime, "max_active_jobs", MaxActiveJobs)
	go d.run()
}

// Submit admits a job. Every failure returns ErrRejected and leaves the
// device exactly as it was before the call.
func (d *Device) Submit(amounts Amounts) (Code, error) {
	if !amounts.Valid() {
		return d.reject(amounts, "invalid amounts")
	}
	if d.active.Add(1) > MaxActiveJobs {
		d.active.Add(-1)
		return d.reject(amounts, "capacity reached")
	}
	code, ok := d.alloc.next()
	if !ok {
		d.active.Add(-1)
		return d.reject(amounts, "code space exhausted")
	}

	rec := newRecord(Job{Code: code, Dyes: amounts.Sparse(), CreatedAt: d.now().UTC()})
	if !d.jobs.add(rec) {
		d.active.Add(-1)
		return d.reject(amounts, "code collision")
	}
	if err := d.queue.push(code); err != nil {
		// A concurrent Cancel may already have claimed the record and its
		// capacity unit.
		if rec.transition(Queued, Canceled) {
			rec.release()
			d.active.Add(-1)
		}
		d.jobs.remove(rec)
		return d.reject(amounts, err.Error())
	}

	d.logger.Debug("job queued", "code", code)
	d.emit(rec.job, StageQueued)
	return code, nil
}

func (d *Device) reject(amounts Amounts, reason string) (Code, error) {
	d.logger.Debug("job rejected", "reason", reason)
	d.emit(Job{Code: RejectedCode, Dyes: amounts.Sparse()}, StageRejected)
	return RejectedCode, ErrRejected
}

// Cancel moves a queued or running job to Canceled.
func (d *Device) Cancel(code int) error {
	if code < 0 || code > MaxCode {
		return ErrNotCancelable
	}
	rec, ok := d.jobs.get(Code(code))
	if !ok {
		return ErrNotCancelable
	}
	for {
		s := rec.State()
		if s.Terminal() {
			return ErrNotCancelable
		}
		if rec.transition(s, Canceled) {
			rec.release()
			d.active.Add(-1)
			d.logger.Debug("job canceled", "code", code, "from", s)
			d.emit(rec.job, StageCanceled)
			return nil
		}
	}
}

// QueryState reports whether a job is pending, completed, or unknown.
// Canceled jobs report StatusNotFound.
func (d *Device) QueryState(code int) Status {
	if code < 0 || code > MaxCode {
		return StatusNotFound
	}
	rec, ok := d.jobs.get(Code(code))
	if !ok {
		return StatusNotFound
	}
	return statusOf(rec.State())
}

// Inspect returns a job and its exact state.
func (d *Device) Inspect(code int) (Job, State, bool) {
	if code < 0 || code > MaxCode {
		return Job{}, 0, false
	}
	rec, ok := d.jobs.get(Code(code))
	if !ok {
		return Job{}, 0, false
	}
	return rec.job.clone(), rec.State(), true
}

// ActiveJobs returns the number of jobs currently holding a capacity unit.
func (d *Device) ActiveJobs() int { return int(d.active.Load()) }

// Shutdown stops the worker, abandoning any job in progress, and releases
// every record. It is safe to call more than once. If ctx expires before the
// worker exits, Shutdown returns ctx.Err() and may be called again.
func (d *Device) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.stopOnce.Do(func() {
		close(d.shutdown)
		d.queue.close()
	})
	started := d.started
	d.mu.Unlock()

	if started {
		select {
		case <-d.workerDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.clearOnce.Do(func() {
		d.jobs.each(d.releaseQuietly)
		d.jobs.clear()
		d.logger.Info("mixer stopped")
	})
	return nil
}

func (d *Device) releaseQuietly(rec *record) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Debug("release stop signal", "code", rec.job.Code, "panic", r)
		}
	}()
	rec.release()
}

func (d *Device) isShutdown() bool {
	select {
	case <-d.shutdown:
		return true
	default:
		return false
	}
}

func (d *Device) run() {
	defer close(d.workerDone)
	for {
		code, ok := d.queue.pop(d.shutdown)
		if !ok {
			return
		}
		d.process(code)
	}
}

func (d *Device) process(code Code) {
	rec, ok := d.jobs.get(code)
	if !ok {
		return
	}
	if rec.State() == Canceled || !rec.transition(Queued, Running) {
		return
	}
	d.logger.Debug("job running", "code", code)
	d.emit(rec.job, StageRunning)

	timer := time.NewTimer(d.cfg.ProcessingTime)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-rec.stopped():
		return
	case <-d.shutdown:
		d.logger.Warn("job abandoned", "code", code)
		d.emit(rec.job, StageAbandoned)
		return
	}

	if rec.transition(Running, Completed) {
		d.active.Add(-1)
		d.logger.Debug("job completed", "code", code)
		d.emit(rec.job, StageCompleted)
	}
}

func (d *Device) emit(job Job, stage Stage) {
	if len(d.observers) == 0 {
		return
	}
	at := d.now().UTC()
	for _, o := range d.observers {
		o.Observe(Event{Job: job.clone(), Stage: stage, At: at})
	}
}
