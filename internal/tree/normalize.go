package tree

import "strings"

// Normalize rewrites a tree into canonical form: dotted-path mapping keys
// are expanded into nested single-segment mappings, and the reserved
// ValueMarker key is folded into the mapping's bare-value slot. Merge and
// Flatten normalize their inputs, so callers rarely need this directly.
// Normalize is a pure rewrite and idempotent.
func Normalize(n *Node) *Node {
	switch n.Kind() {
	case KindEmpty, KindScalar:
		return n
	case KindSequence:
		items := make([]*Node, len(n.items))
		for i, it := range n.items {
			items[i] = Normalize(it)
		}
		return Sequence(items...)
	}

	out := Mapping()
	if n.bare != nil {
		out.bare = n.bare
	}
	for _, key := range n.keys {
		child := Normalize(n.children[key])
		if key == ValueMarker {
			out.bare = child
			continue
		}
		insertPath(out, strings.Split(key, "."), child)
	}
	return out
}

// insertPath places v under the given path segments, creating intermediate
// mappings. When the final segment collides with an existing entry and both
// sides are mappings they are merged in place (keeping the earlier key's
// position); otherwise the later value replaces the earlier one. When an
// intermediate segment collides with a non-mapping, its scalar is kept as
// the new mapping's bare value so `{"a": 1, "a.b": 2}` behaves like
// `{"a": {__value__: 1, "b": 2}}`.
func insertPath(m *Node, segs []string, v *Node) {
	key := segs[0]
	if len(segs) == 1 {
		if existing, ok := m.children[key]; ok && existing.IsMapping() && v.IsMapping() {
			m.children[key] = mergeMappings(existing, v)
			return
		}
		m.set(key, v)
		return
	}

	child, ok := m.children[key]
	if !ok || child.Kind() == KindEmpty {
		child = Mapping()
		m.set(key, child)
	} else if !child.IsMapping() {
		wrapped := MappingWithBare(child)
		m.children[key] = wrapped
		child = wrapped
	} else {
		// Re-wrap so the shared subtree is not mutated in place.
		clone := MappingWithBare(child.bare)
		for _, k := range child.keys {
			clone.set(k, child.children[k])
		}
		m.children[key] = clone
		child = clone
	}
	insertPath(child, segs[1:], v)
}
