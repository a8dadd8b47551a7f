package devtools

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-devtools/predicate"
)

// Option configures a Bridge.
type Option func(*bridgeConfig)

type bridgeConfig struct {
	environment  Environment
	configSource ConfigSource
	sessionLabel string
	logger       Logger
	registerer   prometheus.Registerer
	predicate    string
	ruleOptions  []predicate.RuleOption
	denylist     map[string]struct{}
}

func applyOptions(opts []Option) bridgeConfig {
	cfg := bridgeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEnvironment replaces the global environment used by the activation
// policy.
func WithEnvironment(env Environment) Option {
	return func(cfg *bridgeConfig) {
		cfg.environment = env
	}
}

// WithConfigSource sets where per-attach configuration is read from.
func WithConfigSource(source ConfigSource) Option {
	return func(cfg *bridgeConfig) {
		cfg.configSource = source
	}
}

// WithConfig is shorthand for WithConfigSource(ProvideConfig(partial)).
func WithConfig(partial PartialConfig) Option {
	return WithConfigSource(ProvideConfig(partial))
}

// WithSessionLabel overrides DefaultSessionLabel.
func WithSessionLabel(label string) Option {
	return func(cfg *bridgeConfig) {
		cfg.sessionLabel = label
	}
}

// WithLogger attaches a bridge logger.
func WithLogger(logger Logger) Option {
	return func(cfg *bridgeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithMetrics registers bridge collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *bridgeConfig) {
		cfg.registerer = reg
	}
}

// WithPredicate only forwards actions for which expression evaluates to true.
// The rule is compiled once when the bridge is built.
func WithPredicate(expression string, opts ...predicate.RuleOption) Option {
	return func(cfg *bridgeConfig) {
		cfg.predicate = expression
		cfg.ruleOptions = append([]predicate.RuleOption(nil), opts...)
	}
}

// WithActionsDenylist never forwards actions with the given types.
func WithActionsDenylist(types ...string) Option {
	return func(cfg *bridgeConfig) {
		if cfg.denylist == nil {
			cfg.denylist = make(map[string]struct{}, len(types))
		}
		for _, t := range types {
			cfg.denylist[t] = struct{}{}
		}
	}
}
