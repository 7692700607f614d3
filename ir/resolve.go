package ir

import (
	"fmt"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// Resolve walks path segments from n. A property segment looks up by name on
// an Object; an explicit index selects one Array item; the bare "[]" marker
// broadcasts across all Array items, producing a synthetic Array of the
// per-item resolutions (items that miss are skipped). This is what makes
// "commands[].c1" mean "c1 of every command".
func Resolve(n Node, p frontmatter.Path) (Node, error) {
	return resolveSegs(n, p.Segments(), p)
}

func resolveSegs(n Node, segs []frontmatter.Segment, full frontmatter.Path) (Node, error) {
	if len(segs) == 0 {
		return n, nil
	}
	seg := segs[0]
	switch seg.Kind {
	case frontmatter.SegmentProperty:
		obj, ok := n.(*Object)
		if !ok {
			return nil, notFound(n, seg, full)
		}
		child, ok := obj.Child(seg.Name)
		if !ok {
			return nil, notFound(n, seg, full)
		}
		return resolveSegs(child, segs[1:], full)
	case frontmatter.SegmentIndex:
		arr, ok := n.(*Array)
		if !ok || seg.Index >= arr.Len() {
			return nil, notFound(n, seg, full)
		}
		return resolveSegs(arr.Item(seg.Index), segs[1:], full)
	default: // SegmentAll: broadcast
		arr, ok := n.(*Array)
		if !ok {
			return nil, notFound(n, seg, full)
		}
		out := &Array{path: n.Path().Join(full)}
		for _, item := range arr.items {
			res, err := resolveSegs(item, segs[1:], full)
			if err != nil {
				continue
			}
			out.items = append(out.items, res)
		}
		return out, nil
	}
}

func notFound(n Node, seg frontmatter.Segment, full frontmatter.Path) error {
	return frontmatter.Issue{
		Path:    full.String(),
		Code:    frontmatter.CodePathNotFound,
		Message: fmt.Sprintf("segment %q does not resolve at %q", seg.String(), n.Path().String()),
	}
}

// ReplaceValue returns a new tree in which the node at p is replaced by the
// IR of v. Parents along the path are rebuilt; untouched siblings are shared
// by reference, so other holders of the old tree are unaffected. Missing
// intermediate objects along property segments are created, which lets
// derived directives target paths absent from the extracted data.
func ReplaceValue(root Node, p frontmatter.Path, v any) (Node, error) {
	return replaceSegs(root, p.Segments(), p, v)
}

func replaceSegs(n Node, segs []frontmatter.Segment, full frontmatter.Path, v any) (Node, error) {
	if len(segs) == 0 {
		return FromDataAt(v, n.Path()), nil
	}
	seg := segs[0]
	switch seg.Kind {
	case frontmatter.SegmentProperty:
		obj, ok := n.(*Object)
		if !ok {
			return nil, replaceErr(n, seg, full)
		}
		childPath := obj.path.Append(seg)
		child, exists := obj.Child(seg.Name)
		if !exists {
			// Upsert: create the missing intermediate (or leaf) object slot.
			child = &Object{path: childPath, children: map[string]Node{}}
		}
		replaced, err := replaceSegs(child, segs[1:], full, v)
		if err != nil {
			return nil, err
		}
		keys := obj.keys
		if !exists {
			keys = append(obj.Keys(), seg.Name)
		}
		children := make(map[string]Node, len(keys))
		for k, c := range obj.children {
			children[k] = c
		}
		children[seg.Name] = replaced
		return &Object{path: obj.path, keys: keys, children: children}, nil
	case frontmatter.SegmentIndex:
		arr, ok := n.(*Array)
		if !ok || seg.Index >= arr.Len() {
			return nil, replaceErr(n, seg, full)
		}
		replaced, err := replaceSegs(arr.items[seg.Index], segs[1:], full, v)
		if err != nil {
			return nil, err
		}
		items := arr.Items()
		items[seg.Index] = replaced
		return &Array{path: arr.path, items: items}, nil
	default: // SegmentAll: rebuild every item
		arr, ok := n.(*Array)
		if !ok {
			return nil, replaceErr(n, seg, full)
		}
		items := make([]Node, len(arr.items))
		for i, item := range arr.items {
			replaced, err := replaceSegs(item, segs[1:], full, v)
			if err != nil {
				return nil, err
			}
			items[i] = replaced
		}
		return &Array{path: arr.path, items: items}, nil
	}
}

func replaceErr(n Node, seg frontmatter.Segment, full frontmatter.Path) error {
	return frontmatter.Issue{
		Path:    full.String(),
		Code:    frontmatter.CodePathNotFound,
		Message: fmt.Sprintf("cannot replace through segment %q at %q", seg.String(), n.Path().String()),
	}
}
