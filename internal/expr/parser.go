package expr

import (
	"fmt"

	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/proppath"
	"github.com/specialistvlad/graphkit/internal/value"
)

// ParseError reports a malformed expression. Pos is a byte offset into Expr.
type ParseError struct {
	Expr string
	Pos  int
	Msg  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("expression %q: offset %d: %s", e.Expr, e.Pos, e.Msg)
}

type segmentKind int

const (
	segOut segmentKind = iota
	segIn
	segLabel
	segParam
)

type segment struct {
	kind segmentKind
	// name is the edge type, the label, or the parameter name.
	name string
	// filter is the parameter name inside [$N], or "".
	filter string
}

type chain struct {
	segments   []segment
	projection *projection
}

// Expression is a parsed expression. It holds no reference to a store and
// can be evaluated any number of times.
type Expression struct {
	source string
	chains []chain
}

// String returns the source text.
func (e *Expression) String() string { return e.source }

// Parse parses src. The returned error is always a *ParseError.
func Parse(src string) (*Expression, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}

	expr := &Expression{source: src}
	for {
		c, err := p.parseChain()
		if err != nil {
			return nil, err
		}
		expr.chains = append(expr.chains, c)
		if p.peek().kind != tokOr {
			break
		}
		p.next()
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %s", tok)
	}
	return expr, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) *ParseError {
	return &ParseError{Expr: p.src, Pos: tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseChain() (chain, error) {
	var c chain
	for {
		tok := p.peek()
		switch tok.kind {
		case tokOut, tokIn:
			p.next()
			name := p.next()
			if name.kind != tokIdent {
				return chain{}, p.errorf(name, "expected edge type after %s, got %s", tok, name)
			}
			kind := segOut
			if tok.kind == tokIn {
				kind = segIn
			}
			filter, err := p.parseFilter()
			if err != nil {
				return chain{}, err
			}
			c.segments = append(c.segments, segment{kind: kind, name: name.text, filter: filter})

		case tokIdent:
			p.next()
			filter, err := p.parseFilter()
			if err != nil {
				return chain{}, err
			}
			c.segments = append(c.segments, segment{kind: segLabel, name: tok.text, filter: filter})

		case tokParam:
			p.next()
			c.segments = append(c.segments, segment{kind: segParam, name: tok.text})

		case tokProject:
			p.next()
			quoted := p.next()
			if quoted.kind != tokQuoted {
				return chain{}, p.errorf(quoted, "expected quoted path after \"::\", got %s", quoted)
			}
			proj, err := newProjection(quoted.text)
			if err != nil {
				return chain{}, p.errorf(quoted, "%v", err)
			}
			c.projection = proj
			if after := p.peek(); after.kind != tokEOF && after.kind != tokOr {
				return chain{}, p.errorf(after, "projection must end the chain, got %s", after)
			}
			return c, nil

		default:
			if len(c.segments) == 0 {
				return chain{}, p.errorf(tok, "expected a segment, got %s", tok)
			}
			return c, nil
		}
	}
}

func (p *parser) parseFilter() (string, error) {
	if p.peek().kind != tokLBrack {
		return "", nil
	}
	p.next()
	param := p.next()
	if param.kind != tokParam {
		return "", p.errorf(param, "expected parameter inside filter, got %s", param)
	}
	if closing := p.next(); closing.kind != tokRBrack {
		return "", p.errorf(closing, "expected \"]\", got %s", closing)
	}
	return param.text, nil
}

// projection maps a vertex to one value through a property path rooted at
// P (properties), id or labels.
type projection struct {
	path proppath.Path
}

func newProjection(raw string) (*projection, error) {
	path, err := proppath.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch path.Root() {
	case "P":
	case "id", "labels":
		if len(path.Segments) > 1 {
			return nil, fmt.Errorf("path %q: %s has no field %q", raw, path.Root(), path.Rest().String())
		}
	default:
		return nil, fmt.Errorf("path %q must start with P, id or labels", raw)
	}
	return &projection{path: path}, nil
}

// apply reports false when the path does not resolve on v.
func (pr *projection) apply(v *graph.Vertex) (value.Value, bool) {
	root := pr.path.Segments[0]
	switch root.Name {
	case "P":
		if len(pr.path.Segments) == 1 {
			if root.HasIndex() {
				return value.Value{}, false
			}
			return value.FromMap(v.Props.Clone()), true
		}
		got, ok := pr.path.Rest().Lookup(v.Props)
		if !ok {
			return value.Value{}, false
		}
		return got.Clone(), true
	case "id":
		return proppath.Index(value.String(v.ID), root)
	case "labels":
		labels := make([]value.Value, len(v.Labels))
		for i, l := range v.Labels {
			labels[i] = value.String(l)
		}
		return proppath.Index(value.List(labels...), root)
	}
	return value.Value{}, false
}
