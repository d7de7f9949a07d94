package proppath

import (
	"fmt"
	"strings"
)

// PathSegment represents a single component of a path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (ps PathSegment) HasIndex() bool {
	return ps.Index != -1
}

// Path is the structured form of a property path.
type Path struct {
	Segments []PathSegment
}

// Root returns the first segment name, or "" for an empty path.
func (p Path) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0].Name
}

// Rest returns the path without its first segment.
func (p Path) Rest() Path {
	if len(p.Segments) <= 1 {
		return Path{}
	}
	return Path{Segments: p.Segments[1:]}
}

// String serializes the path into its canonical representation.
func (p Path) String() string {
	var sb strings.Builder
	for i, segment := range p.Segments {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}
	return sb.String()
}
