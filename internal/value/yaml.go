package value

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document into a fresh Value, preserving mapping
// order. See FromYAMLNode for the conversion rules.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, fmt.Errorf("empty YAML document")
	}
	return FromYAMLNode(&doc)
}

// FromYAMLNode converts a decoded YAML node.
//
// Mappings become Objects in document order, sequences become Arrays,
// scalars are resolved by tag (!!int beyond 2^53 becomes BigInt, !!binary
// becomes a Blob). YAML aliases are rejected with ErrReferenceCycle, since
// an alias is the same node reached twice.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	return fromYAML(n, nil)
}

func fromYAML(n *yaml.Node, loc *location) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return fromYAML(n.Content[0], loc)
	case yaml.AliasNode:
		return nil, newCloneError(ErrCodeReferenceCycle, loc, "YAML alias *%s", n.Value)
	case yaml.MappingNode:
		obj := NewObject()
		guard := newKeyGuard(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, newCloneError(ErrCodeUncloneable, loc, "mapping key must be a scalar")
			}
			if err := guard.admit(keyNode.Value, loc.field(keyNode.Value)); err != nil {
				return nil, err
			}
			child, err := fromYAML(valNode, loc.field(keyNode.Value))
			if err != nil {
				return nil, err
			}
			obj.put(keyNode.Value, child)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := &Array{items: make([]Value, 0, len(n.Content))}
		for i, item := range n.Content {
			child, err := fromYAML(item, loc.elem(i))
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, child)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarFromYAML(n, loc)
	}
	return nil, newCloneError(ErrCodeUncloneable, loc, "unsupported YAML node kind %d", n.Kind)
}

func scalarFromYAML(n *yaml.Node, loc *location) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		var i big.Int
		if _, ok := i.SetString(n.Value, 0); !ok {
			var f float64
			if err := n.Decode(&f); err != nil {
				return nil, newCloneError(ErrCodeUncloneable, loc, "invalid integer %q", n.Value)
			}
			return Number(f), nil
		}
		if i.IsInt64() && i.Int64() <= maxSafeInteger && i.Int64() >= -maxSafeInteger {
			return Number(i.Int64()), nil
		}
		return NewBigInt(&i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return Number(f), nil
	case "!!binary":
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, newCloneError(ErrCodeUncloneable, loc, "invalid !!binary: %v", err)
		}
		return NewBlob(data, "application/octet-stream"), nil
	case "!!str":
		return String(n.Value), nil
	}
	// Unknown tags keep their literal text.
	return String(n.Value), nil
}
