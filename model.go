package reactive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/goliatone/go-reactive/pkg/activity"
	"github.com/goliatone/go-reactive/pkg/state"
)

// Closer is anything a model tears down on Dispose.
type Closer interface {
	Close()
}

// Model owns a state record of type S whose fields are filled by loaders.
//
// Loader decisions and every write to the record happen on one event
// goroutine per model, so writes are applied in the order their events were
// queued. Fetches run concurrently and re-enter the queue when they return;
// only the result of the most recently started fetch of a loader is written.
// Dispose must be called to release the event goroutine.
type Model[S any] struct {
	id      string
	cfg     modelConfig
	logger  Logger
	emitter *activity.Emitter

	container *state.Container[S]
	state     *Subject[S]
	queue     *eventQueue

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	loaders     []loaderRuntime
	owned       []Closer
	projections []func(S)
	started     bool
	disposed atomic.Bool
	done     chan struct{}

	// published is the last record version State has delivered.
	published atomic.Uint64

	// pending and waiters are only touched on the event queue.
	pending int
	waiters []chan struct{}
}

// New constructs a model around initial. Register loaders, then call Start.
func New[S any](initial S, opts ...Option) *Model[S] {
	cfg := applyOptions(opts)
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	logger := cfg.logger
	if logger == nil {
		logger = noopLogger{}
	}
	base := cfg.baseContext
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithCancel(base)

	return &Model[S]{
		id:        cfg.id,
		cfg:       cfg,
		logger:    logger,
		emitter:   newActivityEmitter(cfg),
		container: state.NewContainer(initial),
		state:     NewSubject(initial, WithEqual(NeverEqual[S]())),
		queue:     newEventQueue(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// NewStarted constructs a model, registers specs and starts it.
func NewStarted[S any](initial S, specs []LoaderSpec[S], opts ...Option) (*Model[S], error) {
	m := New(initial, opts...)
	if err := m.Register(specs...); err != nil {
		m.Dispose()
		return nil, err
	}
	if err := m.Start(); err != nil {
		m.Dispose()
		return nil, err
	}
	return m, nil
}

// ID returns the model identifier.
func (m *Model[S]) ID() string {
	return m.id
}

// Name returns the label set with WithName.
func (m *Model[S]) Name() string {
	return m.cfg.name
}

// Register adds loaders. Each field may have a single loader and loaders
// cannot be added once the model has started.
func (m *Model[S]) Register(specs ...LoaderSpec[S]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed.Load() {
		return ErrDisposed
	}
	if m.started {
		return ErrStarted
	}
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		if err := spec.validate(); err != nil {
			return err
		}
		rt := spec.instantiate(m)
		if err := m.container.Claim(rt.field(), rt.ownerToken()); err != nil {
			return fmt.Errorf("reactive: register loader: %w", err)
		}
		m.loaders = append(m.loaders, rt)
	}
	return nil
}

// Start subscribes every registered loader to its inputs. Calling it again is
// a no-op.
func (m *Model[S]) Start() error {
	m.mu.Lock()
	if m.disposed.Load() {
		m.mu.Unlock()
		return ErrDisposed
	}
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	loaders := append([]loaderRuntime(nil), m.loaders...)
	m.mu.Unlock()

	for _, rt := range loaders {
		rt.start()
	}
	return nil
}

// State exposes the whole record. It emits after every write.
func (m *Model[S]) State() Field[S] {
	return readOnly[S]{subject: m.state}
}

// Snapshot returns a deep copy of the current record.
func (m *Model[S]) Snapshot() S {
	return m.container.Snapshot()
}

// Version returns the number of writes applied to the record.
func (m *Model[S]) Version() uint64 {
	return m.container.Version()
}

// Own ties closers to the model lifetime. Closers handed to a disposed model
// are closed immediately.
func (m *Model[S]) Own(closers ...Closer) {
	m.mu.Lock()
	if !m.disposed.Load() {
		for _, c := range closers {
			if c != nil {
				m.owned = append(m.owned, c)
			}
		}
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	for _, c := range closers {
		if c != nil {
			c.Close()
		}
	}
}

// Project derives a field of the record. The projection only emits when the
// projected value changes and stops when the model is disposed.
func Project[S, T any](m *Model[S], project func(S) T, opts ...SubjectOption[T]) *Derived[T] {
	derived := Select[S, T](m.State(), project, opts...)
	m.mu.Lock()
	if !m.disposed.Load() {
		m.projections = append(m.projections, func(record S) {
			derived.subject.Next(project(record))
		})
	}
	m.mu.Unlock()
	m.Own(derived)
	return derived
}

// Settle blocks until no fetch is in flight and every queued event has run.
func (m *Model[S]) Settle(ctx context.Context) error {
	if m.disposed.Load() {
		return ErrDisposed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	settled := make(chan struct{})
	if !m.queue.push(func() {
		if m.pending == 0 {
			close(settled)
			return
		}
		m.waiters = append(m.waiters, settled)
	}) {
		return ErrDisposed
	}

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrDisposed
	}
}

func (m *Model[S]) fetchDone() {
	m.pending--
	if m.pending > 0 {
		return
	}
	m.pending = 0
	for _, waiter := range m.waiters {
		close(waiter)
	}
	m.waiters = nil
}

// Trace reports per-loader bookkeeping.
func (m *Model[S]) Trace() Trace {
	m.mu.Lock()
	loaders := append([]loaderRuntime(nil), m.loaders...)
	m.mu.Unlock()

	trace := Trace{
		Model:   m.id,
		Name:    m.cfg.name,
		Version: m.container.Version(),
		Loaders: make([]LoaderTrace, 0, len(loaders)),
	}
	for _, rt := range loaders {
		trace.Loaders = append(trace.Loaders, rt.snapshot())
	}
	return trace
}

// Dispose unsubscribes every loader, cancels in-flight fetches and stops all
// emissions. The record is sealed, so Snapshot, Version and every projection
// stay at the values they had when Dispose returned. Results that arrive
// afterwards are dropped. It is idempotent.
func (m *Model[S]) Dispose() {
	if !m.disposed.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	loaders := append([]loaderRuntime(nil), m.loaders...)
	owned := m.owned
	projections := m.projections
	m.owned = nil
	m.projections = nil
	m.mu.Unlock()

	for _, rt := range loaders {
		rt.stop()
	}
	m.cancel()

	// A write that landed before the seal may still be on its way to State.
	record, version := m.container.Seal()
	if m.published.Load() < version {
		m.state.Next(record)
		for _, refresh := range projections {
			refresh(record)
		}
	}

	for i := len(owned) - 1; i >= 0; i-- {
		owned[i].Close()
	}
	m.state.Close()
	m.queue.stop()
	close(m.done)

	m.log(LogEvent{Event: EventModelDisposed})
	m.emit(activity.BuildModelDisposedEvent(m.eventInput("", 0, nil)))
}

// Disposed reports whether Dispose was called.
func (m *Model[S]) Disposed() bool {
	return m.disposed.Load()
}

// Done is closed once the model is disposed.
func (m *Model[S]) Done() <-chan struct{} {
	return m.done
}

func (m *Model[S]) write(owner, field string, apply func(*S)) bool {
	record, meta, err := m.container.Write(owner, field, func(s *S) error {
		apply(s)
		return nil
	})
	if errors.Is(err, state.ErrSealed) {
		return false
	}
	if err != nil {
		m.log(LogEvent{Event: EventLoaderFailed, Field: field, Err: err})
		return false
	}
	m.state.Next(record)
	m.published.Store(meta.Version)
	return true
}

func (m *Model[S]) log(event LogEvent) {
	event.Model = m.id
	m.logger.Log(event)
}

type readOnly[T any] struct {
	subject *Subject[T]
}

func (r readOnly[T]) Get() T {
	return r.subject.Get()
}

func (r readOnly[T]) Subscribe(fn func(T)) Subscription {
	return r.subject.Subscribe(fn)
}
