package tree

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeYAML parses a YAML document into a config tree, preserving mapping
// key order exactly as written. The struct-based yaml API loses order, so
// this walks the node representation directly. An empty document decodes to
// an empty mapping.
func DecodeYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Mapping(), nil
	}
	return fromYAMLNode(doc.Content[0])
}

func fromYAMLNode(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(y.Alias)
	case yaml.ScalarNode:
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: decode scalar: %w", y.Line, err)
		}
		return Scalar(v), nil
	case yaml.SequenceNode:
		items := make([]*Node, len(y.Content))
		for i, c := range y.Content {
			n, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			items[i] = n
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
		m := Mapping()
		for i := 0; i+1 < len(y.Content); i += 2 {
			keyNode, valNode := y.Content[i], y.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: mapping key must be a string: %w", keyNode.Line, err)
			}
			val, err := fromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			if key == ValueMarker {
				m.bare = val
				continue
			}
			m.set(key, val)
		}
		return m, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", y.Line, y.Kind)
}

// MarshalYAML implements yaml.Marshaler, re-emitting the tree with its key
// order intact. Bare values round-trip through the reserved marker key;
// empty markers are written as nulls so the summary shows every key that
// was part of the resolution.
func (n *Node) MarshalYAML() (any, error) {
	y, err := toYAMLNode(n)
	if err != nil {
		return nil, err
	}
	return y, nil
}

func toYAMLNode(n *Node) (*yaml.Node, error) {
	nullNode := func() *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch n.Kind() {
	case KindEmpty:
		return nullNode(), nil
	case KindScalar:
		if n.value == nil {
			return nullNode(), nil
		}
		var y yaml.Node
		if err := y.Encode(n.value); err != nil {
			return nil, fmt.Errorf("encode scalar %v: %w", n.value, err)
		}
		return &y, nil
	case KindSequence:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range n.items {
			c, err := toYAMLNode(it)
			if err != nil {
				return nil, err
			}
			y.Content = append(y.Content, c)
		}
		return y, nil
	}

	y := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	appendEntry := func(key string, val *yaml.Node) {
		y.Content = append(y.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			val)
	}
	if n.bare != nil {
		v, err := toYAMLNode(n.bare)
		if err != nil {
			return nil, err
		}
		appendEntry(ValueMarker, v)
	}
	for _, k := range n.keys {
		v, err := toYAMLNode(n.children[k])
		if err != nil {
			return nil, err
		}
		appendEntry(k, v)
	}
	return y, nil
}
