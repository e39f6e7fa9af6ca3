//go:build !js_eval

package reactive

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag;
// ExprGuard then fails with ErrNoEvaluator.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool { return false }
