package mixer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects lifecycle events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) stages(code Code) []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Stage
	for _, e := range r.events {
		if e.Job.Code == code {
			out = append(out, e.Stage)
		}
	}
	return out
}

func newTestDevice(t *testing.T, processing time.Duration, opts ...Option) *Device {
	t.Helper()
	d := New(Config{ProcessingTime: processing}, opts...)
	d.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, d.Shutdown(ctx))
	})
	return d
}

func TestSubmitRunsToCompletion(t *testing.T) {
	d := newTestDevice(t, 50*time.Millisecond)

	code, err := d.Submit(Amounts{Red: 50, Blue: 50})
	require.NoError(t, err)
	assert.Equal(t, Code(0), code)
	assert.Equal(t, StatusPending, d.QueryState(int(code)))

	require.Eventually(t, func() bool {
		return d.QueryState(int(code)) == StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, d.ActiveJobs())

	job, state, ok := d.Inspect(int(code))
	require.True(t, ok)
	assert.Equal(t, Completed, state)
	assert.Equal(t, Amounts{Red: 50, Blue: 50}, job.Dyes)
	assert.Equal(t, time.UTC, job.CreatedAt.Location())
}

func TestSubmitInvalidHasNoSideEffects(t *testing.T) {
	rec := &recorder{}
	d := newTestDevice(t, time.Hour, WithObserver(rec))

	code, err := d.Submit(Amounts{Red: 60, Blue: 60})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, RejectedCode, code)
	assert.Equal(t, 0, d.ActiveJobs())
	assert.Equal(t, StatusNotFound, d.QueryState(0))
	assert.Equal(t, []Stage{StageRejected}, rec.stages(RejectedCode))

	// the rejected call did not consume a code
	code, err = d.Submit(Amounts{Red: 10})
	require.NoError(t, err)
	assert.Equal(t, Code(0), code)
}

func TestCancelQueuedJob(t *testing.T) {
	d := newTestDevice(t, time.Hour)

	code, err := d.Submit(Amounts{Red: 10})
	require.NoError(t, err)

	require.NoError(t, d.Cancel(int(code)))
	assert.Equal(t, StatusNotFound, d.QueryState(int(code)))
	assert.ErrorIs(t, d.Cancel(int(code)), ErrNotCancelable)
	assert.Equal(t, 0, d.ActiveJobs())

	_, state, ok := d.Inspect(int(code))
	require.True(t, ok, "canceled records stay registered")
	assert.Equal(t, Canceled, state)
}

func TestCancelRunningJobInterruptsWorker(t *testing.T) {
	rec := &recorder{}
	d := newTestDevice(t, time.Hour, WithObserver(rec))

	first, err := d.Submit(Amounts{White: 100})
	require.NoError(t, err)
	second, err := d.Submit(Amounts{Black: 100})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, s, _ := d.Inspect(int(first))
		return s == Running
	}, time.Second, time.Millisecond)

	require.NoError(t, d.Cancel(int(first)))

	// the worker moves on to the next job instead of waiting out the hour
	require.Eventually(t, func() bool {
		_, s, _ := d.Inspect(int(second))
		return s == Running
	}, time.Second, time.Millisecond)

	// observers may see running before queued; only the set is fixed
	assert.ElementsMatch(t, []Stage{StageQueued, StageRunning, StageCanceled}, rec.stages(first))
	assert.Equal(t, 1, d.ActiveJobs())

	assert.Equal(t, StatusNotFound, d.QueryState(int(first)))
	_, state, ok := d.Inspect(int(first))
	require.True(t, ok)
	assert.Equal(t, Canceled, state, "a canceled job never completes")
}

func TestCancelUnknownCodes(t *testing.T) {
	d := newTestDevice(t, time.Hour)
	for _, code := range []int{-1, 0, 5, MaxCode, MaxCode + 1, 1 << 20} {
		assert.ErrorIs(t, d.Cancel(code), ErrNotCancelable, "code %d", code)
		assert.Equal(t, StatusNotFound, d.QueryState(code), "code %d", code)
		_, _, ok := d.Inspect(code)
		assert.False(t, ok, "code %d", code)
	}
}

func TestCancelCompletedJobFails(t *testing.T) {
	d := newTestDevice(t, 10*time.Millisecond)

	code, err := d.Submit(Amounts{Green: 1})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return d.QueryState(int(code)) == StatusCompleted
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, d.Cancel(int(code)), ErrNotCancelable)
	assert.Equal(t, StatusCompleted, d.QueryState(int(code)))
}

func TestCapacityGate(t *testing.T) {
	d := newTestDevice(t, time.Hour)

	codes := make([]Code, 0, MaxActiveJobs)
	for range MaxActiveJobs {
		code, err := d.Submit(Amounts{Yellow: 1})
		require.NoError(t, err)
		codes = append(codes, code)
	}

	code, err := d.Submit(Amounts{Yellow: 1})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, RejectedCode, code)
	assert.Equal(t, MaxActiveJobs, d.ActiveJobs())

	require.NoError(t, d.Cancel(int(codes[len(codes)-1])))
	_, err = d.Submit(Amounts{Yellow: 1})
	assert.NoError(t, err)
}

func TestConcurrentSubmitsNeverExceedCapacity(t *testing.T) {
	d := newTestDevice(t, time.Hour)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted = map[Code]bool{}
		rejected int
	)
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := d.Submit(Amounts{Blue: 3})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected++
				return
			}
			assert.False(t, accepted[code], "code %d handed out twice", code)
			accepted[code] = true
		}()
	}
	wg.Wait()

	assert.Len(t, accepted, MaxActiveJobs)
	assert.Equal(t, 200-MaxActiveJobs, rejected)
	assert.Equal(t, MaxActiveJobs, d.ActiveJobs())
}

func TestConcurrentCancelReleasesOnce(t *testing.T) {
	d := newTestDevice(t, time.Hour)

	code, err := d.Submit(Amounts{Red: 1})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Cancel(int(code)) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, d.ActiveJobs())
}

func TestWorkerProcessesInArrivalOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []Code
	)
	obs := ObserverFunc(func(e Event) {
		if e.Stage != StageRunning {
			return
		}
		mu.Lock()
		order = append(order, e.Job.Code)
		mu.Unlock()
	})
	d := New(Config{ProcessingTime: 5 * time.Millisecond}, WithObserver(obs))

	// queue everything before the worker starts
	var want []Code
	for range 10 {
		code, err := d.Submit(Amounts{Red: 1})
		require.NoError(t, err)
		want = append(want, code)
	}
	d.Start()
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })

	require.Eventually(t, func() bool { return d.ActiveJobs() == 0 }, 2*time.Second, time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, order)
}

func TestShutdownAbandonsRunningJob(t *testing.T) {
	rec := &recorder{}
	d := New(Config{ProcessingTime: time.Hour}, WithObserver(rec))
	d.Start()

	code, err := d.Submit(Amounts{Red: 20, White: 20})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, s, _ := d.Inspect(int(code))
		return s == Running
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
	require.NoError(t, d.Shutdown(ctx), "shutdown is idempotent")

	assert.ElementsMatch(t, []Stage{StageQueued, StageRunning, StageAbandoned}, rec.stages(code))
	assert.Equal(t, StatusNotFound, d.QueryState(int(code)), "records are cleared at shutdown")

	_, err = d.Submit(Amounts{Red: 1})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 1, d.ActiveJobs(), "the abandoned job keeps its unit, the rejected one took none")
	_, _, ok := d.Inspect(int(code) + 1)
	assert.False(t, ok, "a rejected submit leaves no record behind")
}

func TestShutdownWithoutStart(t *testing.T) {
	d := New(DefaultConfig())
	_, err := d.Submit(Amounts{Red: 1})
	require.NoError(t, err)

	require.NoError(t, d.Shutdown(context.Background()))

	d.Start()
	assert.False(t, d.started, "start after shutdown is ignored")
}

func TestJobsAreNotShared(t *testing.T) {
	var queued Event
	obs := ObserverFunc(func(e Event) {
		if e.Stage == StageQueued {
			queued = e
		}
	})
	d := newTestDevice(t, time.Hour, WithObserver(obs))

	code, err := d.Submit(Amounts{Red: 10})
	require.NoError(t, err)

	job, _, ok := d.Inspect(int(code))
	require.True(t, ok)
	job.Dyes[Red] = 99
	queued.Job.Dyes[Blue] = 500

	job, _, ok = d.Inspect(int(code))
	require.True(t, ok)
	assert.Equal(t, Amounts{Red: 10}, job.Dyes)
}
