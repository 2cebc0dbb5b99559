package mixer

import (
	"container/list"
	"sync"
)

// queue is an unbounded FIFO of job codes with many producers and a single
// consumer. Capacity is enforced upstream by the active-job gate.
type queue struct {
	mu     sync.Mutex
	items  *list.List
	closed bool
	wake   chan struct{}
}

func newQueue() *queue {
	return &queue{items: list.New(), wake: make(chan struct{}, 1)}
}

// push appends code, failing with ErrQueueClosed once close has been called.
func (q *queue) push(code Code) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.items.PushBack(code)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// pop blocks until a code is available, the queue is closed and drained, or
// done is closed. Only one goroutine may call pop.
func (q *queue) pop(done <-chan struct{}) (Code, bool) {
	for {
		select {
		case <-done:
			return 0, false
		default:
		}

		q.mu.Lock()
		if e := q.items.Front(); e != nil {
			q.items.Remove(e)
			q.mu.Unlock()
			return e.Value.(Code), true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return 0, false
		}

		select {
		case <-q.wake:
		case <-done:
			return 0, false
		}
	}
}

func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.wake)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
