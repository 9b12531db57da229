package store

// Scope names one store instance (component, feature, test case) so events
// from multiple scoped stores stay attributable in a shared reporter.
type Scope struct {
	Name     string
	Label    string
	Metadata map[string]any
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches arbitrary metadata to the scope. The map is
// copied so the resulting Scope remains immutable even if the caller mutates
// their reference.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		if len(metadata) == 0 {
			return
		}
		cfg.metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope with the supplied configuration.
func NewScope(name string, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Metadata: copyMetadata(cfg.metadata),
	}
}

// clone returns a copy of s with Metadata detached from the original.
func (s Scope) clone() Scope {
	return Scope{
		Name:     s.Name,
		Label:    s.Label,
		Metadata: copyMetadata(s.Metadata),
	}
}

func copyMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for key, value := range metadata {
		out[key] = value
	}
	return out
}

// Factory stamps out independent store instances sharing construction
// defaults (reporter, tracing) but never mutable state: every produced store
// owns its root, middleware chain and subscriber set. This replaces any
// ambient package-level store so components and tests get isolated
// instances.
type Factory struct {
	defaults []Option
}

// NewFactory captures defaults applied to every store it produces.
func NewFactory(defaults ...Option) *Factory {
	f := &Factory{}
	for _, opt := range defaults {
		if opt != nil {
			f.defaults = append(f.defaults, opt)
		}
	}
	return f
}

// Tree produces an independent tree store. Per-call options run after the
// factory defaults and may override them.
func (f *Factory) Tree(opts ...Option) *Tree {
	return New(f.combine(opts)...)
}

// FlatOf produces an independent flat store from f's defaults. A package
// function rather than a method because Go methods cannot introduce type
// parameters.
func FlatOf[T any](f *Factory, initial T, opts ...Option) *Flat[T] {
	if f == nil {
		return NewFlat(initial, opts...)
	}
	return NewFlat(initial, f.combine(opts)...)
}

func (f *Factory) combine(opts []Option) []Option {
	combined := make([]Option, 0, len(f.defaults)+len(opts))
	combined = append(combined, f.defaults...)
	combined = append(combined, opts...)
	return combined
}
