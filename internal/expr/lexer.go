package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOut
	tokIn
	tokIdent
	tokParam
	tokLBrack
	tokRBrack
	tokProject
	tokQuoted
	tokOr
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokOut:
		return `"->"`
	case tokIn:
		return `"<-"`
	case tokIdent:
		return "identifier"
	case tokParam:
		return "parameter"
	case tokLBrack:
		return `"["`
	case tokRBrack:
		return `"]"`
	case tokProject:
		return `"::"`
	case tokQuoted:
		return "quoted path"
	case tokOr:
		return `"||"`
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// token is a lexeme and its byte offset. For parameters the text excludes
// the leading "$"; for quoted strings it excludes the quotes.
type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokIdent:
		return fmt.Sprintf("identifier %q", t.text)
	case tokParam:
		return fmt.Sprintf("parameter $%s", t.text)
	case tokQuoted:
		return fmt.Sprintf("quoted path %q", t.text)
	}
	return t.kind.String()
}

var operators = []struct {
	text string
	kind tokenKind
}{
	{"->", tokOut},
	{"<-", tokIn},
	{"||", tokOr},
	{"::", tokProject},
	{"[", tokLBrack},
	{"]", tokRBrack},
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanIdent returns the end offset of the identifier starting at i.
func scanIdent(src string, i int) int {
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if !isIdentRune(r) {
			break
		}
		i += size
	}
	return i
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
next:
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		for _, op := range operators {
			if strings.HasPrefix(src[i:], op.text) {
				toks = append(toks, token{kind: op.kind, text: op.text, pos: i})
				i += len(op.text)
				continue next
			}
		}

		switch {
		case r == '$':
			end := scanIdent(src, i+1)
			if end == i+1 {
				return nil, &ParseError{Expr: src, Pos: i, Msg: "expected parameter name after \"$\""}
			}
			toks = append(toks, token{kind: tokParam, text: src[i+1 : end], pos: i})
			i = end
		case isIdentRune(r):
			end := scanIdent(src, i)
			toks = append(toks, token{kind: tokIdent, text: src[i:end], pos: i})
			i = end
		case r == '\'' || r == '"':
			text, end, err := scanQuoted(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokQuoted, text: text, pos: i})
			i = end
		default:
			return nil, &ParseError{Expr: src, Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

// scanQuoted reads a string delimited by the quote at src[start]. A
// backslash escapes the next character.
func scanQuoted(src string, start int) (string, int, error) {
	quote := src[start]
	var sb strings.Builder
	for i := start + 1; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\' && i+1 < len(src):
			i++
			sb.WriteByte(src[i])
		case c == quote:
			return sb.String(), i + 1, nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, &ParseError{Expr: src, Pos: start, Msg: "unterminated quoted path"}
}
