/*
Package proppath parses and resolves property paths such as `P.address.city`
or `P.tags[0]`.

A path is a dot-separated sequence of segments. Each segment is a name with
an optional list index, e.g. `a.b[0].c`. Names may hold any character except
dots and square brackets, so Unicode keys and keys with spaces resolve but a
key such as `a.b` cannot be addressed. The first segment selects what the
path is rooted at; callers decide what the root names mean (the expression
evaluator uses `P` for a vertex's properties and `id`/`labels` for its
identity).
*/
package proppath
