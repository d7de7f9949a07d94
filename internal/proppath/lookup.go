package proppath

import "github.com/specialistvlad/graphkit/internal/value"

// Lookup resolves every segment of p against m. Each segment name selects a
// map key; an index then selects a list element. Missing keys, type
// mismatches and out-of-range indexes all report absence.
func (p Path) Lookup(m *value.Map) (value.Value, bool) {
	if len(p.Segments) == 0 {
		return value.Value{}, false
	}
	current := value.FromMap(m)
	for _, seg := range p.Segments {
		obj, ok := current.AsMap()
		if !ok {
			return value.Value{}, false
		}
		if current, ok = obj.Get(seg.Name); !ok {
			return value.Value{}, false
		}
		if seg.HasIndex() {
			if current, ok = index(current, seg.Index); !ok {
				return value.Value{}, false
			}
		}
	}
	return current, true
}

// Index applies only the index of the first segment to v. It is used when
// the root segment names something other than a map, e.g. `labels[0]`.
func Index(v value.Value, seg PathSegment) (value.Value, bool) {
	if !seg.HasIndex() {
		return v, true
	}
	return index(v, seg.Index)
}

func index(v value.Value, i int) (value.Value, bool) {
	items, ok := v.AsList()
	if !ok || i < 0 || i >= len(items) {
		return value.Value{}, false
	}
	return items[i], true
}
