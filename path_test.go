package frontmatter_test

import (
	"testing"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

func TestParsePath_RoundTrip(t *testing.T) {
	cases := []string{
		"",
		"a",
		"a.b",
		"commands[].c1",
		"posts[2].title",
		"a.b[].c[2]",
		"[]",
		"[0].name",
		"a[0][1]",
	}
	for _, in := range cases {
		p, err := frontmatter.ParsePath(in)
		if err != nil {
			t.Fatalf("ParsePath(%q): unexpected error: %v", in, err)
		}
		if got := p.String(); got != in {
			t.Fatalf("ParsePath(%q).String() = %q; want round-trip", in, got)
		}
	}
}

func TestParsePath_Invalid(t *testing.T) {
	cases := []string{
		".a",
		"a..b",
		"a.",
		"a[",
		"a[x]",
		"a[-1]",
		"a[]b",
	}
	for _, in := range cases {
		if _, err := frontmatter.ParsePath(in); err == nil {
			t.Fatalf("ParsePath(%q): expected error, got nil", in)
		}
	}
}

func TestPath_Segments(t *testing.T) {
	p := frontmatter.MustParsePath("commands[].c1")
	if p.Len() != 3 {
		t.Fatalf("Len = %d; want 3", p.Len())
	}
	if s := p.At(0); s.Kind != frontmatter.SegmentProperty || s.Name != "commands" {
		t.Fatalf("segment 0 = %+v; want property commands", s)
	}
	if s := p.At(1); s.Kind != frontmatter.SegmentAll {
		t.Fatalf("segment 1 = %+v; want array marker", s)
	}
	if s := p.At(2); s.Kind != frontmatter.SegmentProperty || s.Name != "c1" {
		t.Fatalf("segment 2 = %+v; want property c1", s)
	}
}

func TestPath_ParentJoinRelative(t *testing.T) {
	p := frontmatter.MustParsePath("a.b[].c")
	if got := p.Parent().String(); got != "a.b[]" {
		t.Fatalf("Parent = %q; want a.b[]", got)
	}
	base := frontmatter.MustParsePath("a.b[]")
	rel, ok := p.RelativeTo(base)
	if !ok || rel.String() != "c" {
		t.Fatalf("RelativeTo = %q, %v; want c, true", rel.String(), ok)
	}
	if got := base.Join(rel).String(); got != "a.b[].c" {
		t.Fatalf("Join = %q; want a.b[].c", got)
	}
	if _, ok := frontmatter.MustParsePath("x.y").RelativeTo(base); ok {
		t.Fatalf("RelativeTo with non-prefix base should report false")
	}
}

func TestPath_Broadcast(t *testing.T) {
	if !frontmatter.MustParsePath("a[].b").HasBroadcast() {
		t.Fatalf("expected broadcast marker to be detected")
	}
	if frontmatter.MustParsePath("a[2].b").HasBroadcast() {
		t.Fatalf("explicit index is not a broadcast marker")
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	iss := frontmatter.Issues{
		{Path: "a", Code: frontmatter.CodeInvalidDirective},
		{Path: "b", Code: frontmatter.CodePathNotFound},
		{Path: "c", Code: frontmatter.CodeParseError},
		{Path: "d", Code: frontmatter.CodeExtractError},
	}
	s := iss.Error()
	if s == "" {
		t.Fatalf("expected non-empty error summary")
	}
}

func TestAsIssues_PromotesSingleIssue(t *testing.T) {
	var err error = frontmatter.Issue{Code: frontmatter.CodePathNotFound, Path: "a.b"}
	iss, ok := frontmatter.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != frontmatter.CodePathNotFound {
		t.Fatalf("AsIssues = %v, %v; want single promoted issue", iss, ok)
	}
}
