package reactive

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "changeNum && missing", "relatedChanges", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "changeNum && missing" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Field != "relatedChanges" {
		t.Fatalf("expected field metadata, got %q", evalErr.Field)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", "cherryPicks", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Field != "cherryPicks" {
		t.Fatalf("field should be filled, got %q", existing.Field)
	}
}

func TestWrapEvaluatorErrorKeepsPrefixedErrors(t *testing.T) {
	prefixed := errors.New("reactive: already wrapped")
	if got := wrapEvaluatorError("expr", prefixed); got != prefixed {
		t.Fatalf("expected prefixed error returned as-is, got %v", got)
	}
	plain := errors.New("plain")
	got := wrapEvaluatorError("cel", plain)
	if !errors.Is(got, plain) || !strings.HasPrefix(got.Error(), "reactive: cel evaluator") {
		t.Fatalf("expected wrapped plain error, got %v", got)
	}
}

func TestLoadErrorUnwraps(t *testing.T) {
	err := &LoadError{Field: "relatedChanges", Generation: 3, Err: context.DeadlineExceeded}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected LoadError to unwrap")
	}
	if !strings.Contains(err.Error(), `"relatedChanges" generation=3`) {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
