package graph

import "slices"

// Adjacency maps an edge type to the ordered ids of edges of that type.
type Adjacency map[string][]string

// IDs returns the edge ids of the given type.
func (a Adjacency) IDs(edgeType string) []string {
	return a[edgeType]
}

// Types returns the edge types present, sorted.
func (a Adjacency) Types() []string {
	types := make([]string, 0, len(a))
	for t := range a {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Len counts all edge ids across types.
func (a Adjacency) Len() int {
	n := 0
	for _, ids := range a {
		n += len(ids)
	}
	return n
}

// Append adds id to the end of the edgeType list.
func (a *Adjacency) Append(edgeType, id string) {
	a.Insert(edgeType, id, -1)
}

// Insert places id at pos in the edgeType list. A negative or out-of-range
// position appends.
func (a *Adjacency) Insert(edgeType, id string, pos int) {
	if *a == nil {
		*a = make(Adjacency)
	}
	ids := (*a)[edgeType]
	if pos < 0 || pos > len(ids) {
		pos = len(ids)
	}
	(*a)[edgeType] = slices.Insert(ids, pos, id)
}

// Remove deletes id from the edgeType list and returns its former position,
// or -1 when absent.
func (a *Adjacency) Remove(edgeType, id string) int {
	if *a == nil {
		return -1
	}
	ids := (*a)[edgeType]
	pos := slices.Index(ids, id)
	if pos < 0 {
		return -1
	}
	ids = slices.Delete(ids, pos, pos+1)
	if len(ids) == 0 {
		delete(*a, edgeType)
	} else {
		(*a)[edgeType] = ids
	}
	if len(*a) == 0 {
		*a = nil
	}
	return pos
}

// Rename replaces every occurrence of oldID with newID and reports whether
// anything changed.
func (a Adjacency) Rename(oldID, newID string) bool {
	changed := false
	for _, ids := range a {
		for i, id := range ids {
			if id == oldID {
				ids[i] = newID
				changed = true
			}
		}
	}
	return changed
}

// Clone returns a deep copy; an empty index clones to nil.
func (a Adjacency) Clone() Adjacency {
	if len(a) == 0 {
		return nil
	}
	out := make(Adjacency, len(a))
	for t, ids := range a {
		out[t] = slices.Clone(ids)
	}
	return out
}
