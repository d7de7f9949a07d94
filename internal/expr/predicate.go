package expr

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Predicate decides whether a vertex passes a filter. Implementations must
// be deterministic for evaluation to be repeatable.
type Predicate interface {
	Match(ctx context.Context, v *graph.Vertex) bool
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(ctx context.Context, v *graph.Vertex) bool

// Match calls f.
func (f PredicateFunc) Match(ctx context.Context, v *graph.Vertex) bool { return f(ctx, v) }

// predicateVariables are the only root names a predicate may reference.
var predicateVariables = map[string]struct{}{
	"id":     {},
	"labels": {},
	"P":      {},
}

// predicateFunctions is the fixed function table available to predicates.
var predicateFunctions = map[string]function.Function{
	"upper":     stdlib.UpperFunc,
	"lower":     stdlib.LowerFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"strlen":    stdlib.StrlenFunc,
	"length":    stdlib.LengthFunc,
	"contains":  stdlib.ContainsFunc,
	"coalesce":  stdlib.CoalesceFunc,
	"abs":       stdlib.AbsoluteFunc,
	"min":       stdlib.MinFunc,
	"max":       stdlib.MaxFunc,
	"try":       tryfunc.TryFunc,
	"can":       tryfunc.CanFunc,
}

// HCLPredicate is a Predicate written as an HCL expression, e.g.
//
//	P.status == "published" && contains(labels, "Page")
//
// The expression sees the vertex as id (string), labels (list of string)
// and P (object of properties). It must evaluate to a bool; any evaluation
// error counts as no match.
type HCLPredicate struct {
	expr hcl.Expression
}

// CompilePredicate parses src as an HCL expression.
func CompilePredicate(src string) (*HCLPredicate, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(src), "predicate.hcl", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse predicate: %w", diags)
	}
	return NewHCLPredicate(parsed)
}

// NewHCLPredicate wraps an already parsed expression, typically one decoded
// from a configuration file. References to unknown variables or functions
// are rejected up front.
func NewHCLPredicate(e hcl.Expression) (*HCLPredicate, error) {
	if e == nil {
		return nil, fmt.Errorf("predicate expression is nil")
	}
	for _, traversal := range e.Variables() {
		root := traversal.RootName()
		if _, ok := predicateVariables[root]; !ok {
			return nil, fmt.Errorf("predicate references unknown variable %q (allowed: id, labels, P)", root)
		}
	}
	if syntaxExpr, ok := e.(hclsyntax.Expression); ok {
		called := make(map[string]struct{})
		walkForFunctions(syntaxExpr, called)
		names := make([]string, 0, len(called))
		for name := range called {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, ok := predicateFunctions[name]; !ok {
				return nil, fmt.Errorf("predicate calls unknown function %q", name)
			}
		}
	}
	return &HCLPredicate{expr: e}, nil
}

// Match evaluates the expression against v.
func (p *HCLPredicate) Match(ctx context.Context, v *graph.Vertex) bool {
	evalCtx := &hcl.EvalContext{
		Variables: vertexVariables(v),
		Functions: predicateFunctions,
	}
	got, diags := p.expr.Value(evalCtx)
	if diags.HasErrors() {
		ctxlog.FromContext(ctx).Debug("Predicate did not evaluate, treating as no match.", "vertex", v.ID, "error", diags.Error())
		return false
	}
	got, err := convert.Convert(got, cty.Bool)
	if err != nil || got.IsNull() || !got.IsKnown() {
		ctxlog.FromContext(ctx).Debug("Predicate did not yield a bool, treating as no match.", "vertex", v.ID)
		return false
	}
	return got.True()
}

func vertexVariables(v *graph.Vertex) map[string]cty.Value {
	labels := cty.ListValEmpty(cty.String)
	if len(v.Labels) > 0 {
		items := make([]cty.Value, len(v.Labels))
		for i, l := range v.Labels {
			items[i] = cty.StringVal(l)
		}
		labels = cty.ListVal(items)
	}
	return map[string]cty.Value{
		"id":     cty.StringVal(v.ID),
		"labels": labels,
		"P":      v.Props.ToCty(),
	}
}

// walkForFunctions collects the names of every function called in expr.
func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, functions)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, functions)
			walkForFunctions(item.ValueExpr, functions)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, functions)
		walkForFunctions(e.KeyExpr, functions)
		walkForFunctions(e.ValExpr, functions)
		walkForFunctions(e.CondExpr, functions)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, functions)
		walkForFunctions(e.Key, functions)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, functions)
		walkForFunctions(e.Each, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	case *hclsyntax.RelativeTraversalExpr:
		walkForFunctions(e.Source, functions)
	}
}
