package tree

import "fmt"

// MalformedTreeError reports a structural violation at a specific key path:
// a scalar at the tree root, a sequence outside the jobs list, or a bare
// value with no parent path. It is fatal to the whole resolution; a
// malformed document is an authoring bug, not something to mask.
type MalformedTreeError struct {
	Path   string
	Reason string
}

func (e *MalformedTreeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed config tree: %s", e.Reason)
	}
	return fmt.Sprintf("malformed config tree at %q: %s", e.Path, e.Reason)
}
