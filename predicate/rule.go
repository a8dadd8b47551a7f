package predicate

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoEvaluator = errors.New("predicate: evaluator not configured")
	// ErrDefaultEvaluatorOnly reports rule options that only the built-in expr
	// evaluator honours. Configure a custom evaluator through its own options.
	ErrDefaultEvaluatorOnly = errors.New("predicate: option requires the default evaluator")
)

// RuleOption configures a Rule.
type RuleOption func(*ruleConfig)

type ruleConfig struct {
	evaluator Evaluator
	cache     ProgramCache
	functions *FunctionRegistry
	logger    Logger
	err       error
}

// WithEvaluator selects the engine used to compile the rule.
func WithEvaluator(e Evaluator) RuleOption {
	return func(cfg *ruleConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares compiled programs with the default evaluator.
func WithProgramCache(cache ProgramCache) RuleOption {
	return func(cfg *ruleConfig) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes registry functions to the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) RuleOption {
	return func(cfg *ruleConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the default evaluator.
func WithCustomFunction(name string, fn Function) RuleOption {
	return func(cfg *ruleConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.err = errors.Join(cfg.err, err)
		}
	}
}

// WithLogger attaches an evaluation logger.
func WithLogger(logger Logger) RuleOption {
	return func(cfg *ruleConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// Rule is a compiled boolean expression.
type Rule struct {
	expr     string
	engine   string
	compiled CompiledRule
	logger   Logger
}

// Compile builds a Rule, using the expr engine unless another evaluator is
// supplied.
func Compile(expression string, opts ...RuleOption) (*Rule, error) {
	if expression == "" {
		return nil, fmt.Errorf("predicate: expression must not be empty")
	}
	cfg := ruleConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.err != nil {
		return nil, cfg.err
	}
	evaluator := cfg.evaluator
	if evaluator != nil && (cfg.cache != nil || cfg.functions != nil) {
		return nil, fmt.Errorf("%w: use the evaluator's own cache and function options", ErrDefaultEvaluatorOnly)
	}
	if evaluator == nil {
		var exprOpts []ExprOption
		if cfg.cache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cfg.cache))
		}
		if cfg.functions != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
		}
		evaluator = NewExprEvaluator(exprOpts...)
	}
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	compiled, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	logger := cfg.logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Rule{
		expr:     expression,
		engine:   EngineName(evaluator),
		compiled: compiled,
		logger:   logger,
	}, nil
}

// Expression returns the source expression.
func (r *Rule) Expression() string {
	return r.expr
}

// Allow evaluates the rule and requires a boolean result.
func (r *Rule) Allow(ctx Context) (bool, error) {
	start := time.Now()
	value, err := r.compiled.Evaluate(ctx)
	if err == nil {
		if _, ok := value.(bool); !ok {
			err = wrapEvaluationError(r.engine, r.expr, ctx.storeLabel(), fmt.Errorf("%w: got %T", ErrNotBoolean, value))
		}
	}
	err = wrapEvaluationError(r.engine, r.expr, ctx.storeLabel(), err)
	r.logger.LogEvaluation(LogEvent{
		Engine:   r.engine,
		Expr:     r.expr,
		Store:    ctx.storeLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// EngineName identifies the built-in evaluator behind e.
func EngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	}
	if name := jsEngineName(e); name != "" {
		return name
	}
	return "custom"
}
