package reactive

import (
	"context"
	"sync"
	"testing"
	"time"
)

const testTimeout = 2 * time.Second

type fetchReply[T any] struct {
	value T
	err   error
}

type fetchCall[T any] struct {
	ctx   context.Context
	args  Args
	reply chan fetchReply[T]
}

func (c fetchCall[T]) resolve(value T) {
	c.reply <- fetchReply[T]{value: value}
}

func (c fetchCall[T]) fail(err error) {
	c.reply <- fetchReply[T]{err: err}
}

// gatedFetcher hands every fetch to the test, which decides when and how it
// completes. Calls ignore cancellation unless honorCancel is set so stale
// results can be delivered deliberately.
type gatedFetcher[T any] struct {
	calls       chan fetchCall[T]
	honorCancel bool
}

func newGatedFetcher[T any]() *gatedFetcher[T] {
	return &gatedFetcher[T]{calls: make(chan fetchCall[T], 16)}
}

func (f *gatedFetcher[T]) fetch(ctx context.Context, args Args) (T, error) {
	call := fetchCall[T]{ctx: ctx, args: args, reply: make(chan fetchReply[T], 1)}
	f.calls <- call
	if f.honorCancel {
		select {
		case reply := <-call.reply:
			return reply.value, reply.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	reply := <-call.reply
	return reply.value, reply.err
}

func (f *gatedFetcher[T]) next(t *testing.T) fetchCall[T] {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(testTimeout):
		t.Fatalf("timed out waiting for fetch")
		return fetchCall[T]{}
	}
}

func (f *gatedFetcher[T]) expectIdle(t *testing.T) {
	t.Helper()
	select {
	case call := <-f.calls:
		t.Fatalf("unexpected fetch with args %v", call.args)
	default:
	}
}

func settle[S any](t *testing.T, m *Model[S]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	if err := m.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

// recorder collects emissions from an observable.
type recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func record[T any](source Observable[T]) (*recorder[T], Subscription) {
	r := &recorder[T]{}
	sub := source.Subscribe(func(value T) {
		r.mu.Lock()
		r.values = append(r.values, value)
		r.mu.Unlock()
	})
	return r, sub
}

func (r *recorder[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *recorder[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

type logCapture struct {
	mu     sync.Mutex
	events []LogEvent
}

func (c *logCapture) Log(event LogEvent) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
}

func (c *logCapture) named(name string) []LogEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []LogEvent
	for _, event := range c.events {
		if event.Event == name {
			out = append(out, event)
		}
	}
	return out
}
