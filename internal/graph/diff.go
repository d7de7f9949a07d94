package graph

// Diff is the net effect of one committed transaction, in the shape the
// persistence bridge submits to the backing database.
type Diff struct {
	CreatedVertices  []*Vertex `json:"createdVertices"`
	UpdatedVertices  []*Vertex `json:"updatedVertices"`
	DeletedVertexIDs []string  `json:"deletedVertexIds"`
	CreatedEdges     []*Edge   `json:"createdEdges"`
	UpdatedEdges     []*Edge   `json:"updatedEdges"`
	DeletedEdgeIDs   []string  `json:"deletedEdgeIds"`
}

// Empty reports whether the diff carries no change.
func (d *Diff) Empty() bool {
	return d == nil || len(d.CreatedVertices)+len(d.UpdatedVertices)+len(d.DeletedVertexIDs)+
		len(d.CreatedEdges)+len(d.UpdatedEdges)+len(d.DeletedEdgeIDs) == 0
}

// Size counts every entity mentioned by the diff.
func (d *Diff) Size() int {
	if d == nil {
		return 0
	}
	return len(d.CreatedVertices) + len(d.UpdatedVertices) + len(d.DeletedVertexIDs) +
		len(d.CreatedEdges) + len(d.UpdatedEdges) + len(d.DeletedEdgeIDs)
}

// IDMap maps old (usually temporary) ids to the canonical ids assigned by the
// backing database. Vertices and edges are mapped independently.
type IDMap struct {
	Vertices map[string]string `json:"vertices"`
	Edges    map[string]string `json:"edges"`
}

// NewIDMap returns an IDMap with both tables allocated.
func NewIDMap() IDMap {
	return IDMap{Vertices: map[string]string{}, Edges: map[string]string{}}
}

// Empty reports whether the map renames nothing.
func (m IDMap) Empty() bool {
	return len(m.Vertices) == 0 && len(m.Edges) == 0
}

// Vertex translates a vertex id, returning it unchanged when unmapped.
func (m IDMap) Vertex(id string) string {
	if n, ok := m.Vertices[id]; ok {
		return n
	}
	return id
}

// Edge translates an edge id, returning it unchanged when unmapped.
func (m IDMap) Edge(id string) string {
	if n, ok := m.Edges[id]; ok {
		return n
	}
	return id
}
