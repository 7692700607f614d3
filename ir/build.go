package ir

import (
	"reflect"
	"sort"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// FromData maps any JSON-compatible value onto the IR. The mapping is total:
// mapping-like values become Objects (keys sorted for determinism),
// indexable sequences become Arrays, and everything else, nil included,
// becomes a Scalar. Value(FromData(v)) is deep-equal to v.
func FromData(v any) Node {
	return FromDataAt(v, frontmatter.RootPath)
}

// FromDataAt builds the IR rooted at the given path, so that every child
// path is its parent path plus the child's own segment.
func FromDataAt(v any, at frontmatter.Path) Node {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		children := make(map[string]Node, len(t))
		for _, k := range keys {
			children[k] = FromDataAt(t[k], at.Append(frontmatter.Property(k)))
		}
		return &Object{path: at, keys: keys, children: children}
	case []any:
		items := make([]Node, len(t))
		for i, item := range t {
			items[i] = FromDataAt(item, at.Append(frontmatter.Index(i)))
		}
		return &Array{path: at, items: items}
	case nil:
		return &Scalar{path: at, value: nil}
	}
	// TOML and other decoders produce concretely typed maps and slices
	// (e.g. []map[string]any); normalize them through reflection.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			for _, k := range rv.MapKeys() {
				m[k.String()] = rv.MapIndex(k).Interface()
			}
			return FromDataAt(m, at)
		}
	case reflect.Slice, reflect.Array:
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = rv.Index(i).Interface()
		}
		return FromDataAt(s, at)
	}
	return &Scalar{path: at, value: v}
}

// Value serializes a node back into a plain JSON-like value.
func Value(n Node) any {
	switch t := n.(type) {
	case *Scalar:
		return t.value
	case *Object:
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = Value(t.children[k])
		}
		return out
	case *Array:
		out := make([]any, len(t.items))
		for i, item := range t.items {
			out[i] = Value(item)
		}
		return out
	default:
		return nil
	}
}

// DeepEqual compares two JSON-like values structurally. Numbers compare by
// numeric value across int/float representations, since the YAML, JSON and
// TOML adapters decode numbers differently.
func DeepEqual(a, b any) bool {
	switch ta := a.(type) {
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, va := range ta {
			vb, ok := tb[k]
			if !ok || !DeepEqual(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !DeepEqual(ta[i], tb[i]) {
				return false
			}
		}
		return true
	}
	if na, ok := toFloat(a); ok {
		nb, ok := toFloat(b)
		return ok && na == nb
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}
