package template

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/ir"
)

// FallbackPolicy controls what an unresolved variable renders as.
type FallbackPolicy struct {
	Sentinel string
}

// Renderer renders parsed templates against an IR scope stack.
type Renderer struct {
	Policy FallbackPolicy
	// ItemsPath locates the array the {@items} marker iterates; it comes
	// from the x-template-items directive's owning schema path.
	ItemsPath frontmatter.Path
	// Items is the per-element template spliced at the marker position.
	Items Template
}

// Render renders tpl with the scope rooted at root. A template containing
// the items marker renders the wrapper once and the items template once per
// element of the marker's target array, splicing the concatenation back at
// the marker.
func (r Renderer) Render(tpl Template, root ir.Node) string {
	return r.render(tpl, ir.NewScope(root))
}

func (r Renderer) render(tpl Template, scope ir.Scope) string {
	b := &strings.Builder{}
	for _, tok := range tpl.tokens {
		switch tok.Kind {
		case TokenLiteral:
			b.WriteString(tok.Text)
		case TokenVariable:
			b.WriteString(r.renderVariable(tok.Path, scope))
		case TokenItems:
			b.WriteString(r.renderItems(scope))
		}
	}
	return b.String()
}

func (r Renderer) renderVariable(p frontmatter.Path, scope ir.Scope) string {
	n, err := scope.ResolveRelative(p)
	if err != nil {
		return r.Policy.Sentinel
	}
	return r.stringify(n)
}

// renderItems resolves the items array and renders the items template once
// per element, each in a child scope that is discarded after the element.
func (r Renderer) renderItems(scope ir.Scope) string {
	target, err := scope.ResolveRelative(r.ItemsPath)
	if err != nil {
		return r.Policy.Sentinel
	}
	arr, ok := target.(*ir.Array)
	if !ok {
		return r.Policy.Sentinel
	}
	b := &strings.Builder{}
	for i := 0; i < arr.Len(); i++ {
		b.WriteString(r.render(r.Items, scope.Child(arr.Item(i))))
	}
	return b.String()
}

// stringify renders scalars as canonical primitive strings and containers as
// their canonical JSON form, explicitly rather than by incidental formatting.
func (r Renderer) stringify(n ir.Node) string {
	if s, ok := n.(*ir.Scalar); ok {
		switch v := s.Value().(type) {
		case nil:
			return r.Policy.Sentinel
		case string:
			return v
		case bool:
			return strconv.FormatBool(v)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		case uint64:
			return strconv.FormatUint(v, 10)
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	out, err := json.Marshal(ir.Value(n))
	if err != nil {
		return r.Policy.Sentinel
	}
	return string(out)
}
