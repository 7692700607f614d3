package engine

import (
	"fmt"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/ir"
	"github.com/tettuan/frontmatter-to-schema/schema"
)

// applyDerivedFrom evaluates the directive's source path (a Path, possibly
// with "[]" expansion markers) against the entire processed document set,
// collecting all matches into one array, flattened one nesting level. The
// result is stored at the directive path in every surviving document and is
// retrievable through the facade as the aggregate value.
func (p *Processor) applyDerivedFrom(d schema.Directive) error {
	srcExpr, ok := d.Value.(string)
	if !ok || srcExpr == "" {
		return frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeInvalidDirective,
			Message: fmt.Sprintf("%s expects a source path string, got %#v", d.Kind, d.Value),
		}
	}
	src, err := frontmatter.ParsePath(srcExpr)
	if err != nil {
		return frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeInvalidDirective,
			Message: fmt.Sprintf("%s: source path %q: %v", d.Kind, srcExpr, err),
			Cause:   err,
		}
	}
	collected := []any{}
	for _, id := range p.processedIDs() {
		node, markers, ok := resolveSource(p.docs[id].node, src)
		if !ok {
			continue // documents without the source path contribute nothing
		}
		// Matches are the leaf resolutions of the source path. Each "[]"
		// marker wraps them in one synthetic nesting level; unwrap those, and
		// default to one level for a plain array-valued source.
		if v, ok := ir.Value(node).([]any); ok {
			if markers > 1 {
				v = flattenLevels(v, markers-1)
			}
			collected = append(collected, v...)
		} else {
			collected = append(collected, ir.Value(node))
		}
	}
	p.derived[d.Path.String()] = collected
	return p.storeDerived(d.Path, collected)
}

// applyDerivedUnique deduplicates an array-valued node by structural equality
// for containers and identity for primitives, preserving first-seen order.
// It applies to a previously derived aggregate when one exists at the path,
// and to each document's own array otherwise. Idempotent.
func (p *Processor) applyDerivedUnique(d schema.Directive) error {
	if enabled, ok := d.Value.(bool); !ok {
		return frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeInvalidDirective,
			Message: fmt.Sprintf("%s expects a boolean value, got %T", d.Kind, d.Value),
		}
	} else if !enabled {
		return nil
	}
	key := d.Path.String()
	if agg, ok := p.derived[key]; ok {
		if arr, ok := agg.([]any); ok {
			uniq := uniqueValues(arr)
			p.derived[key] = uniq
			return p.storeDerived(d.Path, uniq)
		}
		return nil
	}
	for _, id := range p.processedIDs() {
		doc := p.docs[id]
		node, err := ir.Resolve(doc.node, d.Path)
		if err != nil || node.Kind() != ir.KindArray {
			continue
		}
		arr, _ := ir.Value(node).([]any)
		next, err := ir.ReplaceValue(doc.node, d.Path, uniqueValues(arr))
		if err != nil {
			doc.failWith(toIssue(err, d))
			continue
		}
		doc.node = next
	}
	return nil
}

// resolveSource resolves a derived-from source path in one document. The
// full path is tried first; when it misses and the path opens with a
// "collection[]" prefix, the prefix is taken to name the document set itself
// and the remainder is resolved against the document. The returned count is
// the number of broadcast markers in the path that matched.
func resolveSource(n ir.Node, src frontmatter.Path) (ir.Node, int, bool) {
	if node, err := ir.Resolve(n, src); err == nil {
		return node, countMarkers(src), true
	}
	segs := src.Segments()
	if len(segs) >= 2 && segs[0].Kind == frontmatter.SegmentProperty && segs[1].Kind == frontmatter.SegmentAll {
		rest := frontmatter.RootPath.Append(segs[2:]...)
		if node, err := ir.Resolve(n, rest); err == nil {
			return node, countMarkers(rest), true
		}
	}
	return nil, 0, false
}

func countMarkers(p frontmatter.Path) int {
	n := 0
	for _, seg := range p.Segments() {
		if seg.Kind == frontmatter.SegmentAll {
			n++
		}
	}
	return n
}

// flattenLevels splices nested arrays exactly n times.
func flattenLevels(in []any, n int) []any {
	for ; n > 0; n-- {
		out := make([]any, 0, len(in))
		for _, v := range in {
			if nested, ok := v.([]any); ok {
				out = append(out, nested...)
			} else {
				out = append(out, v)
			}
		}
		in = out
	}
	return in
}

// storeDerived writes the aggregate value at the target path of every
// surviving document.
func (p *Processor) storeDerived(at frontmatter.Path, v any) error {
	for _, id := range p.processedIDs() {
		doc := p.docs[id]
		next, err := ir.ReplaceValue(doc.node, at, v)
		if err != nil {
			doc.failWith(frontmatter.Issue{
				Path:    at.String(),
				Code:    frontmatter.CodeTransformationFailed,
				Message: err.Error(),
				Cause:   err,
			})
			continue
		}
		doc.node = next
	}
	return nil
}

// uniqueValues keeps the first occurrence of each structurally distinct value.
func uniqueValues(in []any) []any {
	out := []any{}
	for _, v := range in {
		dup := false
		for _, seen := range out {
			if ir.DeepEqual(seen, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
