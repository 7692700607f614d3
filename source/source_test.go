package source_test

import (
	"testing"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/source"
)

func TestExtract_YAML(t *testing.T) {
	doc := "---\ntitle: hello\ntags: [a, b]\n---\n# Body\n"
	b, err := source.Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if b.Format != source.FormatYAML {
		t.Fatalf("format = %q; want yaml", b.Format)
	}
	if b.Raw != "title: hello\ntags: [a, b]" {
		t.Fatalf("raw = %q", b.Raw)
	}
}

func TestExtract_TOML(t *testing.T) {
	doc := "+++\ntitle = \"hello\"\n+++\nbody"
	b, err := source.Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if b.Format != source.FormatTOML || b.Raw != "title = \"hello\"" {
		t.Fatalf("block = %+v", b)
	}
}

func TestExtract_JSON(t *testing.T) {
	doc := `{"title": "he{llo}", "n": 1}` + "\nbody"
	b, err := source.Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if b.Format != source.FormatJSON {
		t.Fatalf("format = %q; want json", b.Format)
	}
	if b.Raw != `{"title": "he{llo}", "n": 1}` {
		t.Fatalf("raw = %q", b.Raw)
	}
}

func TestExtract_Errors(t *testing.T) {
	cases := []string{
		"no frontmatter here",
		"---\nunterminated: true\n",
		"{\"unbalanced\": true",
		"--- trailing\nx: 1\n---\n",
	}
	for _, doc := range cases {
		_, err := source.Extract(doc)
		iss, ok := frontmatter.AsIssues(err)
		if !ok || iss[0].Code != frontmatter.CodeExtractError {
			t.Fatalf("Extract(%q) error = %v; want %s", doc, err, frontmatter.CodeExtractError)
		}
	}
}

func TestExtract_FenceLookalikeInsideBlock(t *testing.T) {
	doc := "---\ndivider: \"---x\"\n---\nbody"
	b, err := source.Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if b.Raw != "divider: \"---x\"" {
		t.Fatalf("raw = %q", b.Raw)
	}
}

func TestParse_AllFormats(t *testing.T) {
	cases := []struct {
		block source.Block
		field string
	}{
		{source.Block{Raw: "title: hello", Format: source.FormatYAML}, "title"},
		{source.Block{Raw: `{"title": "hello"}`, Format: source.FormatJSON}, "title"},
		{source.Block{Raw: `title = "hello"`, Format: source.FormatTOML}, "title"},
	}
	for _, c := range cases {
		v, err := source.Parse(c.block)
		if err != nil {
			t.Fatalf("Parse(%v): %v", c.block.Format, err)
		}
		m, ok := v.(map[string]any)
		if !ok || m[c.field] != "hello" {
			t.Fatalf("Parse(%v) = %#v", c.block.Format, v)
		}
	}
}

func TestParse_TOMLTablesNormalize(t *testing.T) {
	raw := "[[cmd]]\nname = \"init\"\n[[cmd]]\nname = \"run\"\n"
	v, err := source.ParseTOML([]byte(raw))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}
	m := v.(map[string]any)
	arr, ok := m["cmd"].([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("cmd = %#v; want normalized []any of 2", m["cmd"])
	}
	if first, ok := arr[0].(map[string]any); !ok || first["name"] != "init" {
		t.Fatalf("cmd[0] = %#v", arr[0])
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := source.ParseJSON([]byte("{nope"))
	iss, ok := frontmatter.AsIssues(err)
	if !ok || iss[0].Code != frontmatter.CodeParseError {
		t.Fatalf("error = %v; want %s", err, frontmatter.CodeParseError)
	}
}
