package reactive

import "sync"

// Derived is a Field computed from one or more upstream observables. It keeps
// its upstream subscriptions until Close.
type Derived[T any] struct {
	subject  *Subject[T]
	mu       sync.Mutex
	upstream Subscriptions
}

// Select projects source through project. The result only emits when the
// projected value changes under ShallowEqual (or the comparator supplied via
// opts).
func Select[S, T any](source Observable[S], project func(S) T, opts ...SubjectOption[T]) *Derived[T] {
	var zero T
	d := &Derived[T]{subject: NewSubject(zero, opts...)}
	sub := source.Subscribe(func(value S) {
		d.subject.Next(project(value))
	})
	d.attach(sub)
	return d
}

// Select2 combines the latest values of a and b. Nothing is computed until
// both sources have produced a value.
func Select2[A, B, T any](a Observable[A], b Observable[B], combine func(A, B) T, opts ...SubjectOption[T]) *Derived[T] {
	var zero T
	d := &Derived[T]{subject: NewSubject(zero, opts...)}

	var (
		mu         sync.Mutex
		latestA    A
		latestB    B
		hasA, hasB bool
	)
	// The projection is accepted under mu so values keep their order, and
	// delivered after releasing it so subscribers may write upstream.
	update := func(set func()) {
		mu.Lock()
		set()
		ready := hasA && hasB
		if ready {
			d.subject.accept(combine(latestA, latestB))
		}
		mu.Unlock()
		if ready {
			d.subject.drain()
		}
	}
	subA := a.Subscribe(func(value A) {
		update(func() { latestA, hasA = value, true })
	})
	subB := b.Subscribe(func(value B) {
		update(func() { latestB, hasB = value, true })
	})
	d.attach(subA, subB)
	return d
}

// Get returns the current projection.
func (d *Derived[T]) Get() T {
	return d.subject.Get()
}

// Subscribe delivers the current projection and every distinct change.
func (d *Derived[T]) Subscribe(fn func(T)) Subscription {
	return d.subject.Subscribe(fn)
}

// Close detaches from upstream and stops emitting. Get keeps returning the
// last value.
func (d *Derived[T]) Close() {
	d.mu.Lock()
	upstream := d.upstream
	d.upstream = nil
	d.mu.Unlock()

	upstream.Unsubscribe()
	d.subject.Close()
}

func (d *Derived[T]) attach(subs ...Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.upstream = append(d.upstream, subs...)
}
