package expr

import (
	"strconv"

	"github.com/specialistvlad/graphkit/internal/graph"
)

// Arg is the value bound to a positional parameter: either a filter
// predicate or a literal vertex set.
type Arg struct {
	Predicate Predicate
	Vertices  []*graph.Vertex
}

// FilterArg binds a predicate.
func FilterArg(p Predicate) Arg { return Arg{Predicate: p} }

// VertexArg binds a literal vertex set.
func VertexArg(vertices ...*graph.Vertex) Arg { return Arg{Vertices: vertices} }

// IsFilter reports whether the arg holds a predicate.
func (a Arg) IsFilter() bool { return a.Predicate != nil }

// Args is a layered argument scope. Lookups fall back to the parent scope
// when a name is not bound locally. A nil *Args is an empty scope.
type Args struct {
	local  map[string]Arg
	parent *Args
}

// NewArgs creates an empty scope on top of parent, which may be nil.
func NewArgs(parent *Args) *Args {
	return &Args{local: make(map[string]Arg), parent: parent}
}

// Positional binds args to the names "0", "1", … so that $0, $1, … resolve.
func Positional(args ...Arg) *Args {
	a := NewArgs(nil)
	for i, arg := range args {
		a.Set(strconv.Itoa(i), arg)
	}
	return a
}

// Set binds name in this scope and returns the scope for chaining.
func (a *Args) Set(name string, arg Arg) *Args {
	a.local[name] = arg
	return a
}

// Lookup resolves name in this scope, then in its parents.
func (a *Args) Lookup(name string) (Arg, bool) {
	for scope := a; scope != nil; scope = scope.parent {
		if arg, ok := scope.local[name]; ok {
			return arg, true
		}
	}
	return Arg{}, false
}
