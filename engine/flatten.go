package engine

import (
	"fmt"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/ir"
	"github.com/tettuan/frontmatter-to-schema/schema"
)

// applyFlatten concatenates nested arrays at the directive path into one flat
// array, to unbounded depth. A target that is missing or not an array is a
// no-op; a non-boolean directive value is an invalid directive.
func applyFlatten(doc *document, d schema.Directive) error {
	enabled, ok := d.Value.(bool)
	if !ok {
		return frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeInvalidDirective,
			Message: fmt.Sprintf("%s expects a boolean value, got %T", d.Kind, d.Value),
		}
	}
	if !enabled {
		return nil
	}
	target, err := ir.Resolve(doc.node, d.Path)
	if err != nil {
		return nil
	}
	if target.Kind() != ir.KindArray {
		return nil
	}
	flat := flattenDeep(ir.Value(target))
	next, err := ir.ReplaceValue(doc.node, d.Path, flat)
	if err != nil {
		return err
	}
	doc.node = next
	return nil
}

func flattenDeep(v any) []any {
	items, ok := v.([]any)
	if !ok {
		return []any{v}
	}
	var out []any
	for _, item := range items {
		if nested, ok := item.([]any); ok {
			out = append(out, flattenDeep(nested)...)
		} else {
			out = append(out, item)
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}
