// Package tree implements the layered configuration model used by the
// launcher: an insertion-ordered recursive tree of mappings, sequences and
// scalars, with deterministic deep-merge and flattening into dotted-path
// key=value tokens.
package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueMarker is the reserved mapping key that assigns a bare scalar to the
// parent path itself. It only exists in serialized documents; decoded trees
// carry the bare value as a dedicated slot on the mapping node.
const ValueMarker = "__value__"

// Kind identifies the variant held by a Node.
type Kind int

const (
	// KindEmpty is the absence of a value. Distinct from an explicit null:
	// empty keys are dropped entirely when flattening.
	KindEmpty Kind = iota
	// KindScalar holds a string, number, bool, or explicit null.
	KindScalar
	// KindMapping holds insertion-ordered string keys, plus an optional bare
	// value assigned to the mapping's own path.
	KindMapping
	// KindSequence holds an ordered list of nodes. Sequences are only legal
	// at the jobs-list boundary; the flattener rejects them anywhere else.
	KindSequence
)

// Node is one node of a config tree. Nodes are immutable once built; Merge,
// Normalize and the decoders always return fresh nodes.
type Node struct {
	kind     Kind
	value    any // scalar payload; nil means explicit null
	bare     *Node
	keys     []string
	children map[string]*Node
	items    []*Node
}

// Pair is one key/value entry for constructing a mapping.
type Pair struct {
	Key   string
	Value *Node
}

// Empty returns the empty marker.
func Empty() *Node {
	return &Node{kind: KindEmpty}
}

// Scalar returns a scalar node holding v. v should be a string, bool,
// int, int64, float64, or nil for an explicit null.
func Scalar(v any) *Node {
	return &Node{kind: KindScalar, value: v}
}

// Null returns an explicit null scalar, rendered as "None" when flattened.
func Null() *Node {
	return &Node{kind: KindScalar, value: nil}
}

// Mapping returns a mapping node with the given entries in order. Duplicate
// keys keep the first position and take the last value.
func Mapping(pairs ...Pair) *Node {
	n := &Node{kind: KindMapping, children: map[string]*Node{}}
	for _, p := range pairs {
		n.set(p.Key, p.Value)
	}
	return n
}

// MappingWithBare returns a mapping node whose own path carries bare.
func MappingWithBare(bare *Node, pairs ...Pair) *Node {
	n := Mapping(pairs...)
	n.bare = bare
	return n
}

// Sequence returns a sequence node over items.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// Kind reports the node's variant. A nil node counts as empty.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindEmpty
	}
	return n.kind
}

// Value returns the scalar payload. Only meaningful for KindScalar.
func (n *Node) Value() any {
	return n.value
}

// Bare returns the bare value attached to a mapping's own path, or nil.
func (n *Node) Bare() *Node {
	if n == nil {
		return nil
	}
	return n.bare
}

// Keys returns the mapping's keys in insertion order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Child returns the mapping entry for key.
func (n *Node) Child(key string) (*Node, bool) {
	if n == nil || n.children == nil {
		return nil, false
	}
	c, ok := n.children[key]
	return c, ok
}

// Items returns the sequence's elements.
func (n *Node) Items() []*Node {
	if n == nil {
		return nil
	}
	return append([]*Node(nil), n.items...)
}

// Len returns the number of mapping keys or sequence items.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	if n.kind == KindSequence {
		return len(n.items)
	}
	return len(n.keys)
}

// IsMapping reports whether the node is a mapping.
func (n *Node) IsMapping() bool {
	return n != nil && n.kind == KindMapping
}

// set inserts or replaces a mapping entry, keeping first-insertion order.
func (n *Node) set(key string, v *Node) {
	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = v
}

// Equal reports deep equality, including mapping key order and bare values.
// go-cmp picks this up in tests.
func (n *Node) Equal(o *Node) bool {
	if n.Kind() != o.Kind() {
		return false
	}
	switch n.Kind() {
	case KindEmpty:
		return true
	case KindScalar:
		return scalarEqual(n.value, o.value)
	case KindSequence:
		if len(n.items) != len(o.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if (n.bare == nil) != (o.bare == nil) {
			return false
		}
		if n.bare != nil && !n.bare.Equal(o.bare) {
			return false
		}
		if len(n.keys) != len(o.keys) {
			return false
		}
		for i, k := range n.keys {
			if o.keys[i] != k {
				return false
			}
			if !n.children[k].Equal(o.children[k]) {
				return false
			}
		}
		return true
	}
	return false
}

// scalarEqual compares scalar payloads with numeric widening so that
// Scalar(1) and a decoded int64(1) compare equal.
func scalarEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// String renders the node for logs and error messages.
func (n *Node) String() string {
	var b strings.Builder
	n.writeTo(&b)
	return b.String()
}

func (n *Node) writeTo(b *strings.Builder) {
	switch n.Kind() {
	case KindEmpty:
		b.WriteString("<empty>")
	case KindScalar:
		b.WriteString(FormatScalar(n.value))
	case KindSequence:
		b.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				b.WriteString(", ")
			}
			it.writeTo(b)
		}
		b.WriteByte(']')
	case KindMapping:
		b.WriteByte('{')
		first := true
		if n.bare != nil {
			b.WriteString(ValueMarker + ": ")
			n.bare.writeTo(b)
			first = false
		}
		for _, k := range n.keys {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(k + ": ")
			n.children[k].writeTo(b)
		}
		b.WriteByte('}')
	}
}

// FormatScalar renders a scalar payload in its canonical flattened form.
// Explicit null renders as the literal "None", matching the argument
// convention of the target programs this launcher feeds.
func FormatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
