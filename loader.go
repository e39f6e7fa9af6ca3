package reactive

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-reactive/pkg/activity"
)

// FetchFunc loads the value for one field from the latest input tuple. The
// context is cancelled when a newer tuple supersedes the call or the model is
// disposed.
type FetchFunc[T any] func(ctx context.Context, args Args) (T, error)

// AssignFunc stores value into the loader's field of record.
type AssignFunc[S, T any] func(record *S, value Value[T])

// LoaderSpec declares how one field of a state record of type S is loaded.
// Build one with NewLoader and hand it to Model.Register.
type LoaderSpec[S any] interface {
	Field() string
	validate() error
	instantiate(m *Model[S]) loaderRuntime
}

// NewLoader declares a loader for field. Every tuple emitted by source runs
// guard; a Proceed verdict starts fetch and its result is written through
// assign. A nil guard always proceeds.
func NewLoader[S, T any](field string, source Observable[Args], guard Guard, fetch FetchFunc[T], assign AssignFunc[S, T]) LoaderSpec[S] {
	if guard == nil {
		guard = Always()
	}
	return loaderSpec[S, T]{
		field:  strings.TrimSpace(field),
		source: source,
		guard:  guard,
		fetch:  fetch,
		assign: assign,
	}
}

var (
	errLoaderField  = errors.New("reactive: loader field is required")
	errLoaderSource = errors.New("reactive: loader source is required")
	errLoaderFetch  = errors.New("reactive: loader fetch is required")
	errLoaderAssign = errors.New("reactive: loader assign is required")
)

type loaderSpec[S, T any] struct {
	field  string
	source Observable[Args]
	guard  Guard
	fetch  FetchFunc[T]
	assign AssignFunc[S, T]
}

func (s loaderSpec[S, T]) Field() string {
	return s.field
}

func (s loaderSpec[S, T]) validate() error {
	switch {
	case s.field == "":
		return errLoaderField
	case s.source == nil:
		return errLoaderSource
	case s.fetch == nil:
		return errLoaderFetch
	case s.assign == nil:
		return errLoaderAssign
	}
	return nil
}

func (s loaderSpec[S, T]) instantiate(m *Model[S]) loaderRuntime {
	return &loader[S, T]{
		spec:  s,
		model: m,
		owner: uuid.NewString(),
		trace: LoaderTrace{Field: s.field},
	}
}

type loaderRuntime interface {
	field() string
	ownerToken() string
	start()
	stop()
	snapshot() LoaderTrace
}

type loader[S, T any] struct {
	spec  loaderSpec[S, T]
	model *Model[S]
	owner string

	// generation, cancel and status are only touched on the model's event
	// queue. status is the status of the last value this loader wrote.
	generation uint64
	cancel     context.CancelFunc
	status     Status

	mu    sync.Mutex
	sub   Subscription
	trace LoaderTrace
}

func (l *loader[S, T]) field() string      { return l.spec.field }
func (l *loader[S, T]) ownerToken() string { return l.owner }

func (l *loader[S, T]) start() {
	sub := l.spec.source.Subscribe(func(args Args) {
		l.model.queue.push(func() { l.handle(args) })
	})
	l.mu.Lock()
	if l.model.disposed.Load() {
		l.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	l.sub = sub
	l.mu.Unlock()
	l.model.log(LogEvent{Event: EventLoaderStarted, Field: l.spec.field})
}

func (l *loader[S, T]) stop() {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (l *loader[S, T]) snapshot() LoaderTrace {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.trace
}

func (l *loader[S, T]) record(fn func(*LoaderTrace)) {
	l.mu.Lock()
	fn(&l.trace)
	l.mu.Unlock()
}

// handle runs on the event queue for every tuple the source emits.
func (l *loader[S, T]) handle(args Args) {
	m := l.model
	if m.disposed.Load() {
		return
	}

	l.generation++
	generation := l.generation
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	verdict, err := l.spec.guard.Check(args)
	if err != nil {
		m.log(LogEvent{Event: EventLoaderGuardFailed, Field: l.spec.field, Generation: generation, Err: err})
		m.emit(activity.BuildLoaderGuardFailedEvent(m.eventInput(l.spec.field, generation, err)))
		verdict = Hold
	}
	l.record(func(t *LoaderTrace) {
		t.Generation = generation
		t.LastVerdict = verdict.String()
	})
	m.log(LogEvent{Event: EventLoaderGuard, Field: l.spec.field, Generation: generation, Verdict: verdict.String()})

	switch verdict {
	case Hold:
	case MarkUnavailable:
		l.commit(generation, Unavailable[T]())
		m.emit(activity.BuildLoaderUnavailableEvent(m.eventInput(l.spec.field, generation, nil)))
	case Reset:
		if l.status != StatusNotLoaded {
			l.commit(generation, NotLoaded[T]())
		}
	default:
		l.fetch(generation, args)
	}
}

func (l *loader[S, T]) fetch(generation uint64, args Args) {
	m := l.model
	ctx, cancel := context.WithCancel(m.ctx)
	l.cancel = cancel
	m.pending++
	l.record(func(t *LoaderTrace) { t.Started++ })
	m.log(LogEvent{Event: EventLoaderFetch, Field: l.spec.field, Generation: generation})

	started := time.Now()
	go func() {
		defer cancel()
		value, err := l.spec.fetch(ctx, args)
		elapsed := time.Since(started)
		m.queue.push(func() { l.complete(generation, value, err, elapsed) })
	}()
}

// complete runs on the event queue once a fetch returns.
func (l *loader[S, T]) complete(generation uint64, value T, err error, elapsed time.Duration) {
	m := l.model
	defer m.fetchDone()
	if m.disposed.Load() {
		return
	}
	if generation != l.generation {
		l.record(func(t *LoaderTrace) { t.Stale++ })
		m.log(LogEvent{Event: EventLoaderStale, Field: l.spec.field, Generation: generation, Duration: elapsed})
		return
	}
	l.cancel = nil

	if err != nil {
		loadErr := &LoadError{Field: l.spec.field, Generation: generation, Err: err}
		if !l.commit(generation, Failed[T](loadErr)) {
			return
		}
		l.record(func(t *LoaderTrace) { t.Failed++ })
		m.log(LogEvent{Event: EventLoaderFailed, Field: l.spec.field, Generation: generation, Duration: elapsed, Err: loadErr})
		m.emit(activity.BuildLoaderFailedEvent(m.eventInput(l.spec.field, generation, loadErr)))
		return
	}
	if l.commit(generation, Loaded(value)) {
		l.record(func(t *LoaderTrace) { t.Written++ })
	}
	m.log(LogEvent{Event: EventLoaderWritten, Field: l.spec.field, Generation: generation, Status: StatusLoaded.String(), Duration: elapsed})
}

func (l *loader[S, T]) commit(generation uint64, value Value[T]) bool {
	ok := l.model.write(l.owner, l.spec.field, func(record *S) {
		l.spec.assign(record, value)
	})
	if ok {
		l.status = value.Status
		l.record(func(t *LoaderTrace) { t.LastStatus = value.Status.String() })
	}
	return ok
}
