package reactive

import "sync"

// eventQueue runs submitted functions one at a time on a single goroutine.
// It is unbounded so a running event can enqueue more work without blocking.
type eventQueue struct {
	mu      sync.Mutex
	items   []func()
	stopped bool
	wake    chan struct{}
	quit    chan struct{}
	exited  chan struct{}
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go q.run()
	return q
}

// push enqueues fn. It reports false once the queue is stopped.
func (q *eventQueue) push(fn func()) bool {
	if fn == nil {
		return false
	}
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// stop drops pending work and ends the loop after the running event returns.
// It does not wait, so it is safe to call from inside an event.
func (q *eventQueue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.stopped = true
	q.items = nil
	close(q.quit)
}

func (q *eventQueue) run() {
	defer close(q.exited)
	for {
		q.mu.Lock()
		if q.stopped {
			q.mu.Unlock()
			return
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
			case <-q.quit:
			}
			continue
		}
		fn := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		q.mu.Unlock()

		fn()
	}
}
