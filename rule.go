package store

import (
	"context"
	"fmt"
	"time"
)

// RuleContext carries the inputs a rule expression evaluates against: the
// write path, the candidate value and the previous committed value.
type RuleContext struct {
	Path     string
	Value    any
	Prev     any
	Now      *time.Time
	Metadata map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

// RuleEngine executes expressions against a rule context. Engines backed by
// expr and CEL ship in this package; a goja engine is available behind the
// js_rules build tag.
type RuleEngine interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// Validate builds a validator stage from expr. The expression sees path,
// value, prev, now and metadata. A boolean result approves (true) or vetoes
// (false) the write; a non-empty string result is a veto carrying that
// string as the human-readable reason; nil approves. Evaluation errors are
// stage faults, so a broken rule rejects fail-closed instead of waving
// writes through.
func Validate(engine RuleEngine, expr string) Middleware {
	rule, compileErr := compileRule(engine, expr)
	return func(_ context.Context, path string, next, prev any) (Result, error) {
		if compileErr != nil {
			return Result{}, compileErr
		}
		out, err := rule.Evaluate(RuleContext{Path: path, Value: next, Prev: prev})
		if err != nil {
			return Result{}, wrapRuleEvalError(engineName(engine), expr, path, err)
		}
		switch verdict := out.(type) {
		case bool:
			if verdict {
				return Unchanged(), nil
			}
			return Veto(fmt.Sprintf("rule %q rejected write", expr)), nil
		case string:
			if verdict == "" {
				return Unchanged(), nil
			}
			return Veto(verdict), nil
		case nil:
			return Unchanged(), nil
		default:
			return Result{}, wrapRuleEvalError(engineName(engine), expr, path,
				fmt.Errorf("validator returned %T, want bool or string", out))
		}
	}
}

// Derive builds a transform stage from expr: the expression's result
// replaces the candidate value. A nil result leaves the candidate alone.
func Derive(engine RuleEngine, expr string) Middleware {
	rule, compileErr := compileRule(engine, expr)
	return func(_ context.Context, path string, next, prev any) (Result, error) {
		if compileErr != nil {
			return Result{}, compileErr
		}
		out, err := rule.Evaluate(RuleContext{Path: path, Value: next, Prev: prev})
		if err != nil {
			return Result{}, wrapRuleEvalError(engineName(engine), expr, path, err)
		}
		if out == nil {
			return Unchanged(), nil
		}
		return Replace(out), nil
	}
}

func compileRule(engine RuleEngine, expr string) (CompiledRule, error) {
	if engine == nil {
		return nil, fmt.Errorf("store: rule engine is required")
	}
	if expr == "" {
		return nil, fmt.Errorf("store: rule expression must not be empty")
	}
	rule, err := engine.Compile(expr)
	if err != nil {
		return nil, wrapRuleEvalError(engineName(engine), expr, "", err)
	}
	return rule, nil
}

func engineName(e RuleEngine) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*store.exprEngine":
		return "expr"
	case "*store.celEngine":
		return "cel"
	case "*store.jsEngine":
		return "js"
	default:
		return "custom"
	}
}
