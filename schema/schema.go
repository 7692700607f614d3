// Package schema loads declarative schemas carrying x- processing directives,
// resolves internal and cross-file $ref pointers, and extracts directives
// classified into non-overlapping processing intents.
package schema

import (
	"strings"

	"gopkg.in/yaml.v3"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// Node is one resolved schema subtree. It is built once by Load and is
// immutable afterwards. Property and directive order follow declaration order
// in the source document.
type Node struct {
	Type       string
	Properties []Property
	Items      *Node
	Directives []RawDirective
	Extra      map[string]any
}

// Property is a named child of an object schema.
type Property struct {
	Name string
	Node *Node
}

// RawDirective is an x- key attached to a schema node, undecoded beyond its
// YAML/JSON value. Unknown keys are carried but ignored by extraction.
type RawDirective struct {
	Key   string
	Value any
}

// Lookup returns the property with the given name.
func (n *Node) Lookup(name string) (*Node, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// nodeFromYAML converts a resolved yaml.Node into the schema model.
// Mapping keys other than type/properties/items/x-* land in Extra.
func nodeFromYAML(y *yaml.Node) (*Node, error) {
	y = deref(y)
	if y.Kind != yaml.MappingNode {
		// Non-mapping schemas (e.g. boolean placeholders) carry their value in Extra.
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, frontmatter.Issue{Code: frontmatter.CodeParseError, Message: err.Error(), Cause: err}
		}
		return &Node{Extra: map[string]any{"value": v}}, nil
	}
	out := &Node{}
	for i := 0; i+1 < len(y.Content); i += 2 {
		key := y.Content[i].Value
		val := deref(y.Content[i+1])
		switch {
		case key == "type":
			out.Type = val.Value
		case key == "properties" && val.Kind == yaml.MappingNode:
			for j := 0; j+1 < len(val.Content); j += 2 {
				child, err := nodeFromYAML(val.Content[j+1])
				if err != nil {
					return nil, err
				}
				out.Properties = append(out.Properties, Property{Name: val.Content[j].Value, Node: child})
			}
		case key == "items":
			child, err := nodeFromYAML(val)
			if err != nil {
				return nil, err
			}
			out.Items = child
		case strings.HasPrefix(key, "x-"):
			var v any
			if err := val.Decode(&v); err != nil {
				return nil, frontmatter.Issue{Code: frontmatter.CodeParseError, Message: err.Error(), Cause: err}
			}
			out.Directives = append(out.Directives, RawDirective{Key: key, Value: v})
		default:
			var v any
			if err := val.Decode(&v); err != nil {
				return nil, frontmatter.Issue{Code: frontmatter.CodeParseError, Message: err.Error(), Cause: err}
			}
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra[key] = v
		}
	}
	return out, nil
}

// deref follows YAML anchor aliases.
func deref(y *yaml.Node) *yaml.Node {
	for y.Kind == yaml.AliasNode && y.Alias != nil {
		y = y.Alias
	}
	return y
}
