package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmespath/go-jmespath"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/ir"
	"github.com/tettuan/frontmatter-to-schema/schema"
)

// applyFilter replaces the node at the directive path with the JMESPath
// evaluation of the directive expression. The expression is evaluated against
// the node's current value when the path resolves, and against the whole
// document otherwise. Evaluation errors fail the owning document only.
func applyFilter(doc *document, d schema.Directive) error {
	expr, ok := d.Value.(string)
	if !ok || expr == "" {
		return frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeInvalidDirective,
			Message: fmt.Sprintf("%s expects a non-empty string expression, got %#v", d.Kind, d.Value),
		}
	}
	input := ir.Value(doc.node)
	if target, err := ir.Resolve(doc.node, d.Path); err == nil {
		input = ir.Value(target)
	}
	result, err := evalExpression(expr, input)
	if err != nil {
		return frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeTransformationFailed,
			Message: fmt.Sprintf("jmespath %q: %v", expr, err),
			Cause:   err,
		}
	}
	next, err := ir.ReplaceValue(doc.node, d.Path, result)
	if err != nil {
		return err
	}
	doc.node = next
	return nil
}

// evalExpression evaluates a JMESPath expression, extended with ".."
// recursive descent: "a..b" evaluates "a", then collects "b" from every
// nesting level beneath the result.
func evalExpression(expr string, data any) (any, error) {
	if !strings.Contains(expr, "..") {
		return jmespath.Search(expr, data)
	}
	parts := strings.Split(expr, "..")
	cur := data
	if head := strings.TrimSpace(parts[0]); head != "" {
		v, err := jmespath.Search(head, cur)
		if err != nil {
			return nil, err
		}
		cur = v
	}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty segment after recursive descent")
		}
		if _, err := jmespath.Compile(part); err != nil {
			return nil, err
		}
		var matches []any
		descend(cur, part, &matches)
		cur = matches
	}
	return cur, nil
}

// descend walks v depth-first and collects every non-nil evaluation of expr.
func descend(v any, expr string, out *[]any) {
	if r, err := jmespath.Search(expr, v); err == nil && r != nil {
		*out = append(*out, r)
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			descend(t[k], expr, out)
		}
	case []any:
		for _, child := range t {
			descend(child, expr, out)
		}
	}
}
