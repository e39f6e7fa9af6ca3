//go:build !js_eval

package reactive

import (
	"errors"
	"testing"
)

func TestJSGuardWithoutBuildTag(t *testing.T) {
	if jsEvaluatorAvailable() {
		t.Fatalf("expected js evaluator to be unavailable")
	}
	_, err := ExprGuard(`true`, Hold, GuardWithEvaluator(NewJSEvaluator()))
	if !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
}
