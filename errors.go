package store

import (
	"errors"
	"fmt"
	"strings"
)

// StageError captures pipeline metadata alongside the error (or recovered
// panic) that faulted a middleware stage.
type StageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("store: stage %s path=%s: %v", describeStage(e.Stage), describePath(e.Path), e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RuleError captures rule-engine metadata alongside the originating error.
type RuleError struct {
	Engine string
	Expr   string
	Path   string
	Err    error
}

func (e *RuleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("store: %s rule %s path=%s: %v", e.Engine, describeExpression(e.Expr), describePath(e.Path), e.Err)
}

func (e *RuleError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeStage(stage string) string {
	if stage == "" {
		return "<anonymous>"
	}
	return stage
}

func describePath(path string) string {
	if path == "" {
		return `""`
	}
	return fmt.Sprintf("%q", path)
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapStageError(stage, path string, err error) error {
	if err == nil {
		return nil
	}

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return err
	}

	return &StageError{Stage: stage, Path: path, Err: err}
}

func wrapRuleError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "store:") {
		return err
	}
	return fmt.Errorf("store: %s rule engine: %w", engine, err)
}

func wrapRuleEvalError(engine, expr, path string, err error) error {
	if err == nil {
		return nil
	}

	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		if ruleErr.Engine == "" {
			ruleErr.Engine = engine
		}
		if ruleErr.Expr == "" {
			ruleErr.Expr = expr
		}
		if ruleErr.Path == "" {
			ruleErr.Path = path
		}
		return ruleErr
	}

	return &RuleError{
		Engine: engine,
		Expr:   expr,
		Path:   path,
		Err:    err,
	}
}
