package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		src        string
		wantChains int
		check      func(t *testing.T, e *Expression)
	}{
		{
			name:       "single traversal",
			src:        "->ParentPage",
			wantChains: 1,
			check: func(t *testing.T, e *Expression) {
				require.Len(t, e.chains[0].segments, 1)
				assert.Equal(t, segment{kind: segOut, name: "ParentPage"}, e.chains[0].segments[0])
			},
		},
		{
			name:       "chain with filters and projection",
			src:        " <-Child[$0] Page[$1] ->Owns :: 'P.meta.tags[1]' ",
			wantChains: 1,
			check: func(t *testing.T, e *Expression) {
				c := e.chains[0]
				require.Len(t, c.segments, 3)
				assert.Equal(t, segment{kind: segIn, name: "Child", filter: "0"}, c.segments[0])
				assert.Equal(t, segment{kind: segLabel, name: "Page", filter: "1"}, c.segments[1])
				assert.Equal(t, segment{kind: segOut, name: "Owns"}, c.segments[2])
				require.NotNil(t, c.projection)
				assert.Equal(t, "P.meta.tags[1]", c.projection.path.String())
			},
		},
		{
			name:       "bare parameter and fallback",
			src:        "$0->A || $1",
			wantChains: 2,
			check: func(t *testing.T, e *Expression) {
				assert.Equal(t, segment{kind: segParam, name: "0"}, e.chains[0].segments[0])
				assert.Equal(t, segment{kind: segParam, name: "1"}, e.chains[1].segments[0])
			},
		},
		{
			name:       "projection only",
			src:        `::"id"`,
			wantChains: 1,
			check: func(t *testing.T, e *Expression) {
				assert.Empty(t, e.chains[0].segments)
				assert.Equal(t, "id", e.chains[0].projection.path.Root())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := Parse(tc.src)
			require.NoError(t, err)
			assert.Len(t, e.chains, tc.wantChains)
			assert.Equal(t, tc.src, e.String())
			if tc.check != nil {
				tc.check(t, e)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantPos int
	}{
		{name: "empty", src: "", wantPos: 0},
		{name: "dangling arrow", src: "->", wantPos: 2},
		{name: "arrow without type", src: "->[$0]", wantPos: 2},
		{name: "unclosed filter", src: "Page[$0", wantPos: 7},
		{name: "filter without parameter", src: "Page[x]", wantPos: 5},
		{name: "empty alternative", src: "->A ||", wantPos: 6},
		{name: "unexpected character", src: "->A.B", wantPos: 3},
		{name: "bare dollar", src: "$", wantPos: 0},
		{name: "unterminated quote", src: "::'P.name", wantPos: 2},
		{name: "projection not terminal", src: "::'P.name' ->A", wantPos: 11},
		{name: "projection bad root", src: "::'name'", wantPos: 2},
		{name: "projection into id", src: "::'id.x'", wantPos: 2},
		{name: "projection missing path", src: "::", wantPos: 2},
		{name: "stray bracket", src: "]", wantPos: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := Parse(tc.src)
			require.Error(t, err)
			assert.Nil(t, e)

			var pErr *ParseError
			require.True(t, errors.As(err, &pErr), "got %T", err)
			assert.Equal(t, tc.src, pErr.Expr)
			assert.Equal(t, tc.wantPos, pErr.Pos, pErr.Msg)
		})
	}
}
