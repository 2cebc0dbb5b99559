package mixer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Code identifies a job. Valid codes lie in [0, MaxCode].
type Code int16

const (
	// MaxCode is the largest job code the allocator hands out.
	MaxCode = 1<<15 - 1

	// RejectedCode is reported in place of a code when Submit fails.
	RejectedCode Code = -1
)

// Job is an accepted mixing request. It is never modified after creation.
type Job struct {
	Code      Code
	Dyes      Amounts
	CreatedAt time.Time
}

// clone returns a copy that shares no map with j.
func (j Job) clone() Job {
	j.Dyes = j.Dyes.Sparse()
	return j
}

// record owns one Job and its lifecycle state.
type record struct {
	job   Job
	state atomic.Int32

	stop     chan struct{}
	stopOnce sync.Once
}

func newRecord(job Job) *record {
	r := &record{job: job, stop: make(chan struct{})}
	r.state.Store(int32(Queued))
	return r
}

func (r *record) State() State { return State(r.state.Load()) }

// transition moves the record from one state to another, failing if the
// current state is not from.
func (r *record) transition(from, to State) bool {
	return r.state.CompareAndSwap(int32(from), int32(to))
}

// release fires the stop signal. Safe to call any number of times.
func (r *record) release() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *record) stopped() <-chan struct{} { return r.stop }
