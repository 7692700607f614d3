package template

import (
	"fmt"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/schema"
)

// Set is the template specification carried by a schema: delivered as
// content plus declared variable names and the items-marker flag, never as
// raw paths.
type Set struct {
	Main      *Template
	Items     *Template
	ItemsPath frontmatter.Path
	Format    string
	Variables []string
	HasItems  bool
}

// Facade loads the templates a schema declares. ReadFile resolves directive
// values as file paths; when it is nil, directive values are taken as inline
// template content.
type Facade struct {
	ReadFile func(path string) ([]byte, error)
}

// LoadTemplates extracts the templating-intent directives from the resolved
// schema and materializes them. Only templating directives are consulted;
// processing directives never reach this loader.
func (f *Facade) LoadTemplates(root *schema.Node) (Set, error) {
	var out Set
	classified := schema.Classify(schema.ExtractDirectives(root))
	for _, d := range classified.Templating {
		val, ok := d.Value.(string)
		if !ok {
			return Set{}, frontmatter.Issue{
				Path:    d.Path.String(),
				Code:    frontmatter.CodeInvalidDirective,
				Message: fmt.Sprintf("%s expects a string value, got %T", d.Kind, d.Value),
			}
		}
		switch d.Kind {
		case schema.KindTemplate:
			tpl, err := f.load(val, d)
			if err != nil {
				return Set{}, err
			}
			out.Main = &tpl
		case schema.KindTemplateItems:
			tpl, err := f.load(val, d)
			if err != nil {
				return Set{}, err
			}
			out.Items = &tpl
			out.ItemsPath = d.Path
		case schema.KindTemplateFormat:
			out.Format = val
		}
	}
	if out.Main != nil {
		out.Variables = append(out.Variables, out.Main.Variables()...)
		out.HasItems = out.Main.HasItems()
	}
	if out.Items != nil {
		out.Variables = append(out.Variables, out.Items.Variables()...)
	}
	return out, nil
}

func (f *Facade) load(ref string, d schema.Directive) (Template, error) {
	if f.ReadFile == nil {
		return Parse(ref), nil
	}
	raw, err := f.ReadFile(ref)
	if err != nil {
		return Template{}, frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeInvalidDirective,
			Message: fmt.Sprintf("%s: template %q: %v", d.Kind, ref, err),
			Cause:   err,
		}
	}
	return Parse(string(raw)), nil
}
