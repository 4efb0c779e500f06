package tree

// Merge deep-merges override onto base and returns the result. Both inputs
// are normalized first, so dotted-path keys and plain nesting merge
// identically.
//
// When both sides are mappings the result contains every base key in its
// original relative order followed by keys newly introduced by override;
// keys present in both merge recursively. In every other combination the
// override value wins outright — sequences replace wholesale, there is no
// element-wise merge. The empty mapping is the identity element on either
// side, and nil is treated as an empty mapping.
func Merge(base, override *Node) *Node {
	return mergeMappings(Normalize(base), Normalize(override))
}

// mergeMappings assumes normalized inputs.
func mergeMappings(base, override *Node) *Node {
	if override == nil {
		return base
	}
	if base == nil {
		return override
	}
	// The empty mapping is the identity element: merging it onto anything,
	// scalar included, leaves the base untouched.
	if override.IsMapping() && override.Len() == 0 && override.bare == nil {
		return base
	}
	if !base.IsMapping() || !override.IsMapping() {
		return override
	}

	out := Mapping()
	out.bare = base.bare
	if override.bare != nil {
		out.bare = override.bare
	}
	for _, k := range base.keys {
		if ov, ok := override.children[k]; ok {
			out.set(k, mergeMappings(base.children[k], ov))
		} else {
			out.set(k, base.children[k])
		}
	}
	for _, k := range override.keys {
		if _, ok := base.children[k]; !ok {
			out.set(k, override.children[k])
		}
	}
	return out
}
