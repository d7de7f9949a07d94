package expr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/value"
)

// Evaluation outcomes reported to an Observer.
const (
	OutcomeOK           = "ok"
	OutcomeParseError   = "parse_error"
	OutcomeBindingError = "binding_error"
)

// ErrMissingArg is reported, and logged, when a parameter has no binding.
var ErrMissingArg = errors.New("missing argument")

// maxCachedExpressions bounds the parse cache; it is cleared when full.
const maxCachedExpressions = 1024

// Observer is notified once per Evaluate call.
type Observer interface {
	ObserveEvaluation(outcome string)
}

// Input is the starting vertex set and the argument scope of an evaluation.
type Input struct {
	Vertices []*graph.Vertex
	Args     *Args
}

// Result is either a vertex or, after a projection, a property value.
type Result struct {
	Vertex *graph.Vertex
	Value  value.Value
}

// IsVertex reports whether r holds a vertex.
func (r Result) IsVertex() bool { return r.Vertex != nil }

// MarshalJSON encodes the vertex or the value.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Vertex != nil {
		return json.Marshal(r.Vertex)
	}
	return r.Value.MarshalJSON()
}

// Vertices returns the vertex results, skipping values.
func Vertices(results []Result) []*graph.Vertex {
	var out []*graph.Vertex
	for _, r := range results {
		if r.Vertex != nil {
			out = append(out, r.Vertex)
		}
	}
	return out
}

// Evaluator runs expressions against a store. It is safe for concurrent use.
type Evaluator struct {
	reader   graphstore.Reader
	observer Observer

	mu    sync.Mutex
	cache map[string]cachedParse
}

type cachedParse struct {
	expr *Expression
	err  error
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithObserver sets the evaluation observer.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) { e.observer = o }
}

// NewEvaluator creates an evaluator reading from r.
func NewEvaluator(r graphstore.Reader, opts ...Option) *Evaluator {
	e := &Evaluator{reader: r, cache: make(map[string]cachedParse)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs src against in. Results keep encounter order and are not
// deduplicated. Parse and binding errors are logged and yield nil.
func (e *Evaluator) Evaluate(ctx context.Context, src string, in Input) []Result {
	logger := ctxlog.FromContext(ctx)

	parsed, err := e.parse(src)
	if err != nil {
		logger.Warn("Ignoring malformed expression.", "expression", src, "error", err)
		e.observe(OutcomeParseError)
		return nil
	}

	results, err := e.Run(ctx, parsed, in)
	if err != nil {
		logger.Warn("Expression evaluation failed.", "expression", src, "error", err)
		e.observe(OutcomeBindingError)
		return nil
	}
	logger.Debug("Expression evaluated.", "expression", src, "inputs", len(in.Vertices), "results", len(results))
	e.observe(OutcomeOK)
	return results
}

// Run evaluates an already parsed expression and reports binding errors.
func (e *Evaluator) Run(ctx context.Context, parsed *Expression, in Input) ([]Result, error) {
	for _, c := range parsed.chains {
		results, err := e.runChain(ctx, c, in)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	return nil, nil
}

func (e *Evaluator) parse(src string) (*Expression, error) {
	e.mu.Lock()
	cached, ok := e.cache[src]
	e.mu.Unlock()
	if ok {
		return cached.expr, cached.err
	}

	parsed, err := Parse(src)
	e.mu.Lock()
	if len(e.cache) >= maxCachedExpressions {
		clear(e.cache)
	}
	e.cache[src] = cachedParse{expr: parsed, err: err}
	e.mu.Unlock()
	return parsed, err
}

func (e *Evaluator) observe(outcome string) {
	if e.observer != nil {
		e.observer.ObserveEvaluation(outcome)
	}
}

func (e *Evaluator) runChain(ctx context.Context, c chain, in Input) ([]Result, error) {
	current := e.refresh(in.Vertices)

	for i, seg := range c.segments {
		switch seg.kind {
		case segOut:
			current = e.follow(current, seg.name, true)
		case segIn:
			current = e.follow(current, seg.name, false)
		case segLabel:
			if i == 0 && len(current) == 0 {
				current = e.reader.VerticesByLabel(seg.name)
			} else {
				current = keep(current, func(v *graph.Vertex) bool { return v.HasLabel(seg.name) })
			}
		case segParam:
			arg, ok := in.Args.Lookup(seg.name)
			if !ok {
				return nil, fmt.Errorf("$%s: %w", seg.name, ErrMissingArg)
			}
			if arg.IsFilter() {
				current = keep(current, func(v *graph.Vertex) bool { return arg.Predicate.Match(ctx, v) })
			} else {
				current = e.refresh(arg.Vertices)
			}
		}

		if seg.filter != "" {
			arg, ok := in.Args.Lookup(seg.filter)
			if !ok {
				return nil, fmt.Errorf("$%s: %w", seg.filter, ErrMissingArg)
			}
			current = applyFilter(ctx, current, arg)
		}
	}

	if c.projection == nil {
		results := make([]Result, len(current))
		for i, v := range current {
			results[i] = Result{Vertex: v}
		}
		return results, nil
	}
	var results []Result
	for _, v := range current {
		if got, ok := c.projection.apply(v); ok {
			results = append(results, Result{Value: got})
		}
	}
	return results, nil
}

// refresh re-reads vertices from the store so traversal sees current
// adjacency. Vertices the store does not know are used as given.
func (e *Evaluator) refresh(vertices []*graph.Vertex) []*graph.Vertex {
	out := make([]*graph.Vertex, 0, len(vertices))
	for _, v := range vertices {
		if v == nil {
			continue
		}
		if fresh, ok := e.reader.Vertex(v.ID); ok {
			out = append(out, fresh)
		} else {
			out = append(out, v)
		}
	}
	return out
}

// follow walks edges of edgeType: OUT edges to their end vertex when out is
// true, IN edges to their start vertex otherwise.
func (e *Evaluator) follow(from []*graph.Vertex, edgeType string, out bool) []*graph.Vertex {
	var next []*graph.Vertex
	for _, v := range from {
		adj := v.In
		if out {
			adj = v.Out
		}
		for _, edgeID := range adj.IDs(edgeType) {
			edge, ok := e.reader.Edge(edgeID)
			if !ok {
				continue
			}
			target := edge.Start
			if out {
				target = edge.End
			}
			if tv, ok := e.reader.Vertex(target); ok {
				next = append(next, tv)
			}
		}
	}
	return next
}

func applyFilter(ctx context.Context, vertices []*graph.Vertex, arg Arg) []*graph.Vertex {
	if arg.IsFilter() {
		return keep(vertices, func(v *graph.Vertex) bool { return arg.Predicate.Match(ctx, v) })
	}
	allowed := make(map[string]struct{}, len(arg.Vertices))
	for _, v := range arg.Vertices {
		if v != nil {
			allowed[v.ID] = struct{}{}
		}
	}
	return keep(vertices, func(v *graph.Vertex) bool {
		_, ok := allowed[v.ID]
		return ok
	})
}

func keep(vertices []*graph.Vertex, fn func(*graph.Vertex) bool) []*graph.Vertex {
	var out []*graph.Vertex
	for _, v := range vertices {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}
