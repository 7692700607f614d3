package ir_test

import (
	"testing"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/ir"
)

func TestFromData_RoundTrip(t *testing.T) {
	cases := []any{
		nil,
		"hello",
		42,
		3.5,
		true,
		[]any{"a", "b"},
		map[string]any{"a": 1, "b": []any{map[string]any{"c": nil}}},
		map[string]any{},
		[]any{},
	}
	for _, v := range cases {
		got := ir.Value(ir.FromData(v))
		if !ir.DeepEqual(got, v) {
			t.Fatalf("round-trip mismatch: %#v -> %#v", v, got)
		}
	}
}

func TestFromData_PathInvariant(t *testing.T) {
	root := ir.FromData(map[string]any{
		"commands": []any{
			map[string]any{"c1": "a"},
		},
	})
	n, err := ir.Resolve(root, frontmatter.MustParsePath("commands[0].c1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := n.Path().String(); got != "commands[0].c1" {
		t.Fatalf("child path = %q; want commands[0].c1", got)
	}
}

func TestFromData_NormalizesTypedContainers(t *testing.T) {
	// TOML-style concrete types.
	v := map[string]any{
		"rows": []map[string]any{{"x": int64(1)}},
	}
	root := ir.FromData(v)
	n, err := ir.Resolve(root, frontmatter.MustParsePath("rows[0].x"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ir.DeepEqual(ir.Value(n), 1) {
		t.Fatalf("value = %#v; want 1", ir.Value(n))
	}
}

func TestResolve_Broadcast(t *testing.T) {
	root := ir.FromData(map[string]any{
		"commands": []any{
			map[string]any{"c1": "a"},
			map[string]any{"c1": "b"},
		},
	})
	n, err := ir.Resolve(root, frontmatter.MustParsePath("commands[].c1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ir.DeepEqual(ir.Value(n), []any{"a", "b"}) {
		t.Fatalf("broadcast = %#v; want [a b]", ir.Value(n))
	}
}

func TestResolve_BroadcastSkipsMisses(t *testing.T) {
	root := ir.FromData(map[string]any{
		"commands": []any{
			map[string]any{"c1": "a"},
			map[string]any{"other": true},
			map[string]any{"c1": "c"},
		},
	})
	n, err := ir.Resolve(root, frontmatter.MustParsePath("commands[].c1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ir.DeepEqual(ir.Value(n), []any{"a", "c"}) {
		t.Fatalf("broadcast = %#v; want [a c]", ir.Value(n))
	}
}

func TestResolve_NotFound(t *testing.T) {
	root := ir.FromData(map[string]any{"a": 1})
	_, err := ir.Resolve(root, frontmatter.MustParsePath("a.b"))
	iss, ok := frontmatter.AsIssues(err)
	if !ok || iss[0].Code != frontmatter.CodePathNotFound {
		t.Fatalf("error = %v; want %s", err, frontmatter.CodePathNotFound)
	}
}

func TestReplaceValue_SharesSiblings(t *testing.T) {
	root := ir.FromData(map[string]any{
		"keep":   map[string]any{"x": 1},
		"change": "old",
	})
	obj := root.(*ir.Object)
	keepBefore, _ := obj.Child("keep")

	next, err := ir.ReplaceValue(root, frontmatter.MustParsePath("change"), "new")
	if err != nil {
		t.Fatalf("ReplaceValue: %v", err)
	}
	nextObj := next.(*ir.Object)
	keepAfter, _ := nextObj.Child("keep")
	if keepBefore != keepAfter {
		t.Fatalf("untouched sibling was rebuilt instead of shared")
	}
	// Original tree unchanged.
	if old, _ := ir.Resolve(root, frontmatter.MustParsePath("change")); !ir.DeepEqual(ir.Value(old), "old") {
		t.Fatalf("original tree mutated")
	}
	if got, _ := ir.Resolve(next, frontmatter.MustParsePath("change")); !ir.DeepEqual(ir.Value(got), "new") {
		t.Fatalf("replacement not applied")
	}
}

func TestReplaceValue_CreatesMissingTarget(t *testing.T) {
	root := ir.FromData(map[string]any{"a": 1})
	next, err := ir.ReplaceValue(root, frontmatter.MustParsePath("stats.tags"), []any{"x"})
	if err != nil {
		t.Fatalf("ReplaceValue: %v", err)
	}
	got, err := ir.Resolve(next, frontmatter.MustParsePath("stats.tags"))
	if err != nil {
		t.Fatalf("Resolve after upsert: %v", err)
	}
	if !ir.DeepEqual(ir.Value(got), []any{"x"}) {
		t.Fatalf("upserted value = %#v", ir.Value(got))
	}
}

func TestScope_LocalFirstWidening(t *testing.T) {
	root := ir.FromData(map[string]any{
		"name": "outer",
		"items": []any{
			map[string]any{"name": "inner"},
			map[string]any{"other": true},
		},
	})
	items, err := ir.Resolve(root, frontmatter.MustParsePath("items"))
	if err != nil {
		t.Fatalf("Resolve items: %v", err)
	}
	arr := items.(*ir.Array)
	scope := ir.NewScope(root)
	namePath := frontmatter.MustParsePath("name")

	// Element 0 shadows the outer name.
	s0 := scope.Child(arr.Item(0))
	n, err := s0.ResolveRelative(namePath)
	if err != nil || !ir.DeepEqual(ir.Value(n), "inner") {
		t.Fatalf("element scope = %#v, %v; want inner", ir.Value(n), err)
	}
	// Element 1 has no name; widening reaches the outer one.
	s1 := scope.Child(arr.Item(1))
	n, err = s1.ResolveRelative(namePath)
	if err != nil || !ir.DeepEqual(ir.Value(n), "outer") {
		t.Fatalf("widened scope = %#v, %v; want outer", ir.Value(n), err)
	}
	// Nothing anywhere: typed miss.
	_, err = s1.ResolveRelative(frontmatter.MustParsePath("nope"))
	iss, ok := frontmatter.AsIssues(err)
	if !ok || iss[0].Code != frontmatter.CodePathNotFound {
		t.Fatalf("error = %v; want %s", err, frontmatter.CodePathNotFound)
	}
}
