package ir

import (
	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// Scope is the ephemeral resolution context for template variables: a cursor
// node plus the trail of ancestors it descended through. Scopes are values;
// Child returns a copy and the parent scope stays usable.
type Scope struct {
	cursor      Node
	breadcrumbs []Node // outermost first
}

// NewScope returns a scope rooted at n.
func NewScope(n Node) Scope { return Scope{cursor: n} }

// Cursor returns the current node.
func (s Scope) Cursor() Node { return s.cursor }

// Child descends into n, pushing the current cursor onto the breadcrumbs.
// Used per array element during {@items} iteration.
func (s Scope) Child(n Node) Scope {
	crumbs := make([]Node, 0, len(s.breadcrumbs)+1)
	crumbs = append(crumbs, s.breadcrumbs...)
	crumbs = append(crumbs, s.cursor)
	return Scope{cursor: n, breadcrumbs: crumbs}
}

// ResolveRelative resolves p against the cursor first and then against each
// ancestor, innermost first, up to the root. This local-first widening is
// what lets an iteration element shadow a same-named outer variable while
// code outside the iteration still reaches outer variables by the same name.
func (s Scope) ResolveRelative(p frontmatter.Path) (Node, error) {
	if n, err := Resolve(s.cursor, p); err == nil {
		return n, nil
	}
	for i := len(s.breadcrumbs) - 1; i >= 0; i-- {
		if n, err := Resolve(s.breadcrumbs[i], p); err == nil {
			return n, nil
		}
	}
	return nil, frontmatter.Issue{
		Path:    p.String(),
		Code:    frontmatter.CodePathNotFound,
		Message: "unresolved at every scope up to root",
	}
}
