// Package ir defines the immutable, path-addressable intermediate
// representation built from extracted document data. Every template variable
// and every processing directive resolves against this tree; the original
// extracted structure is never exposed past the builder.
package ir

import (
	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// Kind identifies an IR node type.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

// Node is the root IR interface. Nodes are never mutated after construction;
// directive updates build a replacement subtree and re-link the parents,
// sharing unchanged siblings (see Replace).
type Node interface {
	Kind() Kind
	Path() frontmatter.Path
}

// Scalar holds any non-container value, including nil.
type Scalar struct {
	path  frontmatter.Path
	value any
}

func (s *Scalar) Kind() Kind             { return KindScalar }
func (s *Scalar) Path() frontmatter.Path { return s.path }
func (s *Scalar) Value() any             { return s.value }

// Object holds named children in insertion order.
type Object struct {
	path     frontmatter.Path
	keys     []string
	children map[string]Node
}

func (o *Object) Kind() Kind             { return KindObject }
func (o *Object) Path() frontmatter.Path { return o.path }
func (o *Object) Len() int               { return len(o.keys) }

// Keys returns a copy of the ordered child names.
func (o *Object) Keys() []string { return append([]string(nil), o.keys...) }

// Child returns the named child.
func (o *Object) Child(name string) (Node, bool) {
	n, ok := o.children[name]
	return n, ok
}

// Array holds ordered items.
type Array struct {
	path  frontmatter.Path
	items []Node
}

func (a *Array) Kind() Kind             { return KindArray }
func (a *Array) Path() frontmatter.Path { return a.path }
func (a *Array) Len() int               { return len(a.items) }
func (a *Array) Item(i int) Node        { return a.items[i] }

// Items returns a copy of the item list.
func (a *Array) Items() []Node { return append([]Node(nil), a.items...) }
