package tree

import "strings"

// Token is one flattened (path, scalar) pair.
type Token struct {
	Path  []string
	Value any
}

// Key returns the dot-joined path.
func (t Token) Key() string {
	return strings.Join(t.Path, ".")
}

// Render returns the "key=value" form of the token.
func (t Token) Render() string {
	return t.Key() + "=" + FormatScalar(t.Value)
}

// Flatten converts a tree into its ordered sequence of (path, scalar)
// tokens. The input is normalized first. Traversal order is the contract:
// a mapping's bare value is emitted before its children, children follow in
// insertion order. Empty markers are dropped. A scalar or bare value at the
// tree root, a sequence anywhere, or anything else that cannot be rendered
// as a dotted path fails with a MalformedTreeError naming the path.
func Flatten(n *Node) ([]Token, error) {
	var out []Token
	if err := flatten(Normalize(n), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(n *Node, prefix []string, out *[]Token) error {
	switch n.Kind() {
	case KindEmpty:
		return nil
	case KindScalar:
		if len(prefix) == 0 {
			return &MalformedTreeError{Reason: "scalar value at tree root"}
		}
		*out = append(*out, Token{Path: append([]string(nil), prefix...), Value: n.value})
		return nil
	case KindSequence:
		return &MalformedTreeError{Path: strings.Join(prefix, "."), Reason: "sequence is not flattenable"}
	}

	if bare := n.bare; bare != nil {
		if len(prefix) == 0 {
			return &MalformedTreeError{Reason: "bare value at tree root"}
		}
		if bare.Kind() != KindScalar {
			return &MalformedTreeError{Path: strings.Join(prefix, "."), Reason: "bare value must be a scalar"}
		}
		*out = append(*out, Token{Path: append([]string(nil), prefix...), Value: bare.value})
	}
	for _, k := range n.keys {
		if err := flatten(n.children[k], append(prefix, k), out); err != nil {
			return err
		}
	}
	return nil
}

// Args renders the flattened tree as ordered "key=value" strings.
func Args(n *Node) ([]string, error) {
	toks, err := Flatten(n)
	if err != nil {
		return nil, err
	}
	args := make([]string, len(toks))
	for i, t := range toks {
		args[i] = t.Render()
	}
	return args, nil
}

// CommandLine renders the flattened tree as a single space-joined argument
// string, in the deterministic order produced by Flatten. This order is
// user-visible: it fixes the positional appearance of overrides handed to
// the downstream program.
func CommandLine(n *Node) (string, error) {
	args, err := Args(n)
	if err != nil {
		return "", err
	}
	return strings.Join(args, " "), nil
}
