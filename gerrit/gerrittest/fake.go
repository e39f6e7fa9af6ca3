// Package gerrittest provides an in-memory gerrit.RestAPI whose calls are
// answered either by handlers or one by one from a test.
package gerrittest

import (
	"context"
	"sync"

	"github.com/goliatone/go-reactive/gerrit"
)

// Method names identify RestAPI operations.
const (
	MethodRelatedChanges    = "GetRelatedChanges"
	MethodSubmittedTogether = "GetChangesSubmittedTogether"
	MethodCherryPicks       = "GetChangeCherryPicks"
	MethodConflicts         = "GetChangeConflicts"
	MethodSameTopic         = "GetChangesWithSameTopic"
)

// Call is one recorded RestAPI invocation.
type Call struct {
	Method   string
	Change   gerrit.NumericChangeID
	PatchSet gerrit.PatchSetNum
	Repo     gerrit.RepoName
	ChangeID gerrit.ChangeID
	Topic    gerrit.TopicName
	Query    gerrit.SameTopicQuery

	ctx   context.Context
	reply chan reply
}

type reply struct {
	value any
	err   error
}

// Context returns the context the caller passed.
func (c *Call) Context() context.Context {
	return c.ctx
}

// Respond completes a pending call. value must have the method's result type.
func (c *Call) Respond(value any, err error) {
	if c.reply == nil {
		return
	}
	select {
	case c.reply <- reply{value: value, err: err}:
	default:
	}
}

// Handler answers a call synchronously.
type Handler func(call *Call) (any, error)

// API is a scriptable gerrit.RestAPI.
type API struct {
	// IgnoreCancel keeps pending calls waiting for Respond even after their
	// context is cancelled.
	IgnoreCancel bool

	mu       sync.Mutex
	handlers map[string]Handler
	pending  map[string]chan *Call
	counts   map[string]int
}

var _ gerrit.RestAPI = (*API)(nil)

// New returns an API where every call waits for Respond.
func New() *API {
	return &API{
		handlers: map[string]Handler{},
		pending:  map[string]chan *Call{},
		counts:   map[string]int{},
	}
}

// Handle answers every call of method with fn.
func (a *API) Handle(method string, fn Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[method] = fn
}

// Next waits for the next pending call of method.
func (a *API) Next(ctx context.Context, method string) (*Call, error) {
	select {
	case call := <-a.queue(method):
		return call, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pending reports how many calls of method wait to be picked up by Next.
func (a *API) Pending(method string) int {
	return len(a.queue(method))
}

// Calls reports how many times method was invoked.
func (a *API) Calls(method string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[method]
}

func (a *API) queue(method string) chan *Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch, ok := a.pending[method]
	if !ok {
		ch = make(chan *Call, 64)
		a.pending[method] = ch
	}
	return ch
}

func (a *API) do(ctx context.Context, call *Call) (any, error) {
	call.ctx = ctx
	a.mu.Lock()
	a.counts[call.Method]++
	handler := a.handlers[call.Method]
	a.mu.Unlock()

	if handler != nil {
		return handler(call)
	}
	call.reply = make(chan reply, 1)
	a.queue(call.Method) <- call
	if a.IgnoreCancel {
		r := <-call.reply
		return r.value, r.err
	}
	select {
	case r := <-call.reply:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *API) GetRelatedChanges(ctx context.Context, change gerrit.NumericChangeID, patchSet gerrit.PatchSetNum) (*gerrit.RelatedChangesInfo, error) {
	value, err := a.do(ctx, &Call{Method: MethodRelatedChanges, Change: change, PatchSet: patchSet})
	info, _ := value.(*gerrit.RelatedChangesInfo)
	return info, err
}

func (a *API) GetChangesSubmittedTogether(ctx context.Context, change gerrit.NumericChangeID) (*gerrit.SubmittedTogetherInfo, error) {
	value, err := a.do(ctx, &Call{Method: MethodSubmittedTogether, Change: change})
	info, _ := value.(*gerrit.SubmittedTogetherInfo)
	return info, err
}

func (a *API) GetChangeCherryPicks(ctx context.Context, repo gerrit.RepoName, changeID gerrit.ChangeID, change gerrit.NumericChangeID) ([]gerrit.ChangeInfo, error) {
	value, err := a.do(ctx, &Call{Method: MethodCherryPicks, Repo: repo, ChangeID: changeID, Change: change})
	changes, _ := value.([]gerrit.ChangeInfo)
	return changes, err
}

func (a *API) GetChangeConflicts(ctx context.Context, change gerrit.NumericChangeID) ([]gerrit.ChangeInfo, error) {
	value, err := a.do(ctx, &Call{Method: MethodConflicts, Change: change})
	changes, _ := value.([]gerrit.ChangeInfo)
	return changes, err
}

func (a *API) GetChangesWithSameTopic(ctx context.Context, topic gerrit.TopicName, query gerrit.SameTopicQuery) ([]gerrit.ChangeInfo, error) {
	value, err := a.do(ctx, &Call{Method: MethodSameTopic, Topic: topic, Query: query})
	changes, _ := value.([]gerrit.ChangeInfo)
	return changes, err
}
