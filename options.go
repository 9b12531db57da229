package store

// Option configures a store at construction time.
type Option func(*config)

type config struct {
	reporter   Reporter
	scope      Scope
	root       any
	middleware []Middleware
	serialized bool
	tracing    bool
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithReporter attaches the reporting channel that receives commit, veto and
// fault events. Defaults to a noop reporter.
func WithReporter(reporter Reporter) Option {
	return func(cfg *config) {
		if reporter == nil {
			cfg.reporter = noopReporter{}
			return
		}
		cfg.reporter = reporter
	}
}

// WithScope tags the store with identity metadata carried on every reported
// event, so multiple scoped instances stay distinguishable in shared logs.
func WithScope(scope Scope) Option {
	return func(cfg *config) {
		cfg.scope = scope.clone()
	}
}

// WithInitialTree seeds the root value of a tree store.
func WithInitialTree(root any) Option {
	return func(cfg *config) {
		cfg.root = root
	}
}

// WithMiddleware installs stages at construction, in argument order.
func WithMiddleware(middleware ...Middleware) Option {
	return func(cfg *config) {
		for _, m := range middleware {
			if m != nil {
				cfg.middleware = append(cfg.middleware, m)
			}
		}
	}
}

// WithSerializedWrites linearizes Set calls per normalized path, closing the
// lost-update window between overlapping writes to the same path. Disjoint
// paths still proceed concurrently. Do not combine with Debounce on the same
// store; see pathQueue.
func WithSerializedWrites() Option {
	return func(cfg *config) {
		cfg.serialized = true
	}
}

// WithTracing collects a per-stage StageTrace on every Outcome.
func WithTracing() Option {
	return func(cfg *config) {
		cfg.tracing = true
	}
}
