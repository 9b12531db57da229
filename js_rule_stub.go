//go:build !js_rules

package store

// NewJSEngine is unavailable without the js_rules build tag.
func NewJSEngine(opts ...JSEngineOption) RuleEngine {
	_ = applyJSEngineOptions(opts)
	return nil
}

func jsEngineAvailable() bool {
	return false
}
