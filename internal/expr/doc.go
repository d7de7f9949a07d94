// Package expr implements the path expression language used to select
// vertices and property values relative to an input vertex set.
//
// An expression is a chain of segments evaluated left to right, each
// consuming the previous segment's output:
//
//	->ParentPage          follow outgoing ParentPage edges to their end vertices
//	<-ParentPage          follow incoming ParentPage edges to their start vertices
//	Page                  keep vertices labeled Page
//	Page[$0]              same, then filter through argument $0
//	$1                    replace the set with argument $1, or filter by it
//	::'P.title'           project each vertex through a property path
//	A || B                evaluate B only when A yields nothing
//
// A label segment at the start of a chain evaluated with an empty input set
// selects every vertex carrying that label from the store's label index.
//
// Arguments are either a Predicate or a literal vertex set. Predicates are
// a Go extension point; HCLPredicate compiles an HCL expression over the
// variables id, labels and P. Nothing in an expression executes host code.
//
// Malformed expressions and missing arguments never reach the caller: the
// Evaluator logs them through the context logger and returns an empty result.
package expr
