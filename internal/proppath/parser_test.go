package proppath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		expectErr    bool
		expectedPath Path
	}{
		{
			name: "simple path",
			raw:  "P.name",
			expectedPath: Path{
				Segments: []PathSegment{NewPathSegment("P"), NewPathSegment("name")},
			},
		},
		{
			name: "nested path with index",
			raw:  "P.address.lines[1]",
			expectedPath: Path{
				Segments: []PathSegment{NewPathSegment("P"), NewPathSegment("address"), NewPathSegmentWithIndex("lines", 1)},
			},
		},
		{
			name: "root only",
			raw:  "labels[0]",
			expectedPath: Path{
				Segments: []PathSegment{NewPathSegmentWithIndex("labels", 0)},
			},
		},
		{
			name:      "error - empty path segment",
			raw:       "P..name",
			expectErr: true,
		},
		{
			name:      "error - invalid index",
			raw:       "P.tags[x]",
			expectErr: true,
		},
		{
			name:      "error - empty string",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "error - bare hyphen",
			raw:       "P.-",
			expectErr: true,
		},
		{
			name: "spaces inside a key",
			raw:  "P.first name",
			expectedPath: Path{
				Segments: []PathSegment{NewPathSegment("P"), NewPathSegment("first name")},
			},
		},
		{
			name: "non-ascii keys",
			raw:  "P.título.städte[2]",
			expectedPath: Path{
				Segments: []PathSegment{NewPathSegment("P"), NewPathSegment("título"), NewPathSegmentWithIndex("städte", 2)},
			},
		},
		{
			name:      "error - blank segment",
			raw:       "P.  ",
			expectErr: true,
		},
		{
			name:      "error - stray bracket",
			raw:       "P.a]b",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.raw)

			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedPath, p)
			assert.Equal(t, tc.raw, p.String())
		})
	}
}

func TestRootAndRest(t *testing.T) {
	p := MustParse("P.a.b")
	assert.Equal(t, "P", p.Root())
	assert.Equal(t, "a.b", p.Rest().String())
	assert.Equal(t, "", Path{}.Root())
	assert.Empty(t, MustParse("id").Rest().Segments)
}
