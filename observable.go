package reactive

import (
	"sort"
	"sync"
)

// Observable is a push-based stream. Subscribers receive the current value
// immediately and every subsequent value.
type Observable[T any] interface {
	Subscribe(fn func(T)) Subscription
}

// Field is a read-only derived projection exposed to consumers.
type Field[T any] interface {
	Observable[T]
	Get() T
}

// Subscription releases a subscriber.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription. The function runs at
// most once.
func SubscriptionFunc(fn func()) Subscription {
	return &funcSubscription{fn: fn}
}

type funcSubscription struct {
	once sync.Once
	fn   func()
}

func (s *funcSubscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.fn != nil {
			s.fn()
		}
	})
}

// Subscriptions releases a group of subscriptions in order.
type Subscriptions []Subscription

// Unsubscribe releases every subscription, skipping nil entries.
func (s Subscriptions) Unsubscribe() {
	for _, sub := range s {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

// SubjectOption configures a Subject.
type SubjectOption[T any] func(*Subject[T])

// WithEqual replaces the comparator used to suppress duplicate emissions.
func WithEqual[T any](equal func(a, b T) bool) SubjectOption[T] {
	return func(s *Subject[T]) {
		if equal != nil {
			s.equal = equal
		}
	}
}

// Subject holds a current value and pushes distinct changes to subscribers.
//
// Deliveries are serialized: at most one goroutine delivers at a time and
// every subscriber sees values in the order they were accepted. A Next or
// Subscribe issued while a delivery is running, from a subscriber or from
// another goroutine, is queued and delivered by the goroutine already
// delivering, so subscribers may write back into any subject.
type Subject[T any] struct {
	mu       sync.RWMutex
	value    T
	equal    func(a, b T) bool
	subs     map[uint64]func(T)
	nextID   uint64
	closed   bool
	pending  []delivery[T]
	draining bool
}

// delivery is one queued value and the subscribers it is addressed to.
type delivery[T any] struct {
	value T
	ids   []uint64
}

// NewSubject constructs a Subject seeded with initial. Values are compared
// with ShallowEqual unless WithEqual overrides it.
func NewSubject[T any](initial T, opts ...SubjectOption[T]) *Subject[T] {
	s := &Subject[T]{
		value: initial,
		equal: EqualFunc[T](),
		subs:  map[uint64]func(T){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the current value. After Close it keeps returning the last value.
func (s *Subject[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Next stores value and notifies subscribers. It reports false when the value
// equals the current one or the subject is closed.
func (s *Subject[T]) Next(value T) bool {
	if !s.accept(value) {
		return false
	}
	s.drain()
	return true
}

// accept stores value and queues its delivery without running subscribers.
func (s *Subject[T]) accept(value T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.equal(s.value, value) {
		return false
	}
	s.value = value
	if len(s.subs) > 0 {
		s.pending = append(s.pending, delivery[T]{value: value, ids: s.subscriberIDs()})
	}
	return true
}

// Subscribe registers fn and delivers the current value ahead of any later
// one. A closed subject delivers nothing.
func (s *Subject[T]) Subscribe(fn func(T)) Subscription {
	if fn == nil {
		return SubscriptionFunc(nil)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return SubscriptionFunc(nil)
	}
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.pending = append(s.pending, delivery[T]{value: s.value, ids: []uint64{id}})
	s.mu.Unlock()

	s.drain()
	return SubscriptionFunc(func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	})
}

// Close drops every subscriber and queued delivery and freezes the current
// value. It is safe to call from inside a subscriber and more than once.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = map[uint64]func(T){}
	s.pending = nil
}

// Closed reports whether Close was called.
func (s *Subject[T]) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// drain delivers queued values until none are left, unless another call is
// already doing so.
func (s *Subject[T]) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	delivering := false
	defer func() {
		// A panicking subscriber leaves the lock released.
		if delivering {
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
		}
	}()
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending[0] = delivery[T]{}
		s.pending = s.pending[1:]
		s.mu.Unlock()

		delivering = true
		for _, id := range next.ids {
			if fn := s.subscriber(id); fn != nil {
				fn(next.value)
			}
		}
		delivering = false
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

func (s *Subject[T]) subscriberIDs() []uint64 {
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Subject[T]) subscriber(id uint64) func(T) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subs[id]
}
