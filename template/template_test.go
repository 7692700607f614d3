package template_test

import (
	"fmt"
	"testing"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/ir"
	"github.com/tettuan/frontmatter-to-schema/schema"
	"github.com/tettuan/frontmatter-to-schema/template"
)

func TestParse_TokenStream(t *testing.T) {
	tpl := template.Parse("# {title}\n{@items}\nend")
	toks := tpl.Tokens()
	kinds := []template.TokenKind{
		template.TokenLiteral, template.TokenVariable, template.TokenLiteral,
		template.TokenItems, template.TokenLiteral,
	}
	if len(toks) != len(kinds) {
		t.Fatalf("token count = %d; want %d (%+v)", len(toks), len(kinds), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d kind = %v; want %v", i, toks[i].Kind, k)
		}
	}
	if !tpl.HasItems() {
		t.Fatalf("items marker not detected")
	}
	if vars := tpl.Variables(); len(vars) != 1 || vars[0] != "title" {
		t.Fatalf("variables = %v; want [title]", vars)
	}
}

func TestParse_NonPathBracesStayLiteral(t *testing.T) {
	tpl := template.Parse(`{"json": true} and {not a path}`)
	for _, tok := range tpl.Tokens() {
		if tok.Kind != template.TokenLiteral {
			t.Fatalf("expected only literals, got %+v", tok)
		}
	}
}

func TestRender_Variables(t *testing.T) {
	root := ir.FromData(map[string]any{
		"title": "Registry",
		"count": 3,
		"ratio": 0.5,
		"on":    true,
		"null":  nil,
		"meta":  map[string]any{"k": "v"},
	})
	r := template.Renderer{Policy: template.FallbackPolicy{Sentinel: ""}}
	cases := []struct{ in, want string }{
		{"{title}", "Registry"},
		{"{count}", "3"},
		{"{ratio}", "0.5"},
		{"{on}", "true"},
		{"{null}", ""},
		{"{meta}", `{"k":"v"}`},
		{"{missing}", ""},
		{"literal only", "literal only"},
	}
	for _, c := range cases {
		if got := r.Render(template.Parse(c.in), root); got != c.want {
			t.Fatalf("Render(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestRender_SentinelPolicy(t *testing.T) {
	root := ir.FromData(map[string]any{})
	r := template.Renderer{Policy: template.FallbackPolicy{Sentinel: "N/A"}}
	if got := r.Render(template.Parse("{missing}"), root); got != "N/A" {
		t.Fatalf("sentinel = %q; want N/A", got)
	}
}

func TestRender_ItemsIterationWithScopes(t *testing.T) {
	root := ir.FromData(map[string]any{
		"name": "outer",
		"commands": []any{
			map[string]any{"name": "init", "desc": "set up"},
			map[string]any{"desc": "no name here"},
		},
	})
	r := template.Renderer{
		Policy:    template.FallbackPolicy{Sentinel: ""},
		ItemsPath: frontmatter.MustParsePath("commands"),
		Items:     template.Parse("- {name}: {desc}\n"),
	}
	got := r.Render(template.Parse("# {name}\n{@items}done"), root)
	// Element 0 shadows the outer name; element 1 widens back to it.
	want := "# outer\n- init: set up\n- outer: no name here\ndone"
	if got != want {
		t.Fatalf("items render = %q; want %q", got, want)
	}
}

func TestLoadTemplates_FromSchema(t *testing.T) {
	raw := []byte(`
type: object
x-template: "main.tpl"
x-template-format: "yaml"
properties:
  commands:
    type: array
    items:
      type: object
      x-template-items: "item.tpl"
`)
	root, err := (&schema.Loader{}).Load(raw, "root.yml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	files := map[string]string{
		"main.tpl": "# {title}\n{@items}",
		"item.tpl": "- {c1}\n",
	}
	f := &template.Facade{ReadFile: func(p string) ([]byte, error) {
		if body, ok := files[p]; ok {
			return []byte(body), nil
		}
		return nil, fmt.Errorf("no such template: %s", p)
	}}
	set, err := f.LoadTemplates(root)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if set.Main == nil || set.Items == nil {
		t.Fatalf("templates not loaded: %+v", set)
	}
	if set.Format != "yaml" {
		t.Fatalf("format = %q; want yaml", set.Format)
	}
	if got := set.ItemsPath.String(); got != "commands[]" {
		t.Fatalf("items path = %q; want commands[]", got)
	}
	if !set.HasItems {
		t.Fatalf("items marker flag not set")
	}
	if len(set.Variables) != 2 {
		t.Fatalf("variables = %v; want [title c1]", set.Variables)
	}
}

func TestLoadTemplates_MissingFileIsTyped(t *testing.T) {
	raw := []byte("type: object\nx-template: \"gone.tpl\"\n")
	root, err := (&schema.Loader{}).Load(raw, "root.yml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := &template.Facade{ReadFile: func(string) ([]byte, error) {
		return nil, fmt.Errorf("missing")
	}}
	_, err = f.LoadTemplates(root)
	iss, ok := frontmatter.AsIssues(err)
	if !ok || iss[0].Code != frontmatter.CodeInvalidDirective {
		t.Fatalf("error = %v; want %s", err, frontmatter.CodeInvalidDirective)
	}
}
