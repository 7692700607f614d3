package schema

import (
	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// Kind identifies a known directive.
type Kind int

const (
	KindFrontmatterPart Kind = iota // x-frontmatter-part
	KindTemplate                    // x-template
	KindTemplateItems               // x-template-items
	KindTemplateFormat              // x-template-format
	KindFlattenArrays               // x-flatten-arrays
	KindJmesPathFilter              // x-jmespath-filter
	KindDerivedFrom                 // x-derived-from
	KindDerivedUnique               // x-derived-unique
)

var kindKeys = map[Kind]string{
	KindFrontmatterPart: "x-frontmatter-part",
	KindTemplate:        "x-template",
	KindTemplateItems:   "x-template-items",
	KindTemplateFormat:  "x-template-format",
	KindFlattenArrays:   "x-flatten-arrays",
	KindJmesPathFilter:  "x-jmespath-filter",
	KindDerivedFrom:     "x-derived-from",
	KindDerivedUnique:   "x-derived-unique",
}

var kindByKey = func() map[string]Kind {
	m := make(map[string]Kind, len(kindKeys))
	for k, key := range kindKeys {
		m[key] = k
	}
	return m
}()

// String returns the schema key form, e.g. "x-derived-from".
func (k Kind) String() string { return kindKeys[k] }

// Intent partitions directive kinds into the three independent concerns.
// Each downstream component receives only directives of its own intent:
// the frontmatter reader never sees processing directives, the template
// loader never sees processing directives, and the processing engine never
// sees template directives.
type Intent int

const (
	IntentExtraction Intent = iota // Frontmatter extraction hints.
	IntentTemplating               // Template specification.
	IntentProcessing               // Data-processing directives.
)

// Intent returns the processing intent of the kind.
func (k Kind) Intent() Intent {
	switch k {
	case KindFrontmatterPart:
		return IntentExtraction
	case KindTemplate, KindTemplateItems, KindTemplateFormat:
		return IntentTemplating
	default:
		return IntentProcessing
	}
}

// Directive is a schema-attached instruction: a kind, the path of the owning
// schema node, and the raw directive value. Value shape is validated lazily
// at application time, never during extraction.
type Directive struct {
	Kind  Kind
	Path  frontmatter.Path
	Value any
}

// ExtractDirectives walks the resolved schema depth-first in declaration
// order and returns every recognized x- directive tagged with its owning
// path. Array hierarchy is normalized: a directive under items of
// "commands" reports "commands[]", never "commands.items". Unknown x- keys
// are ignored. Extraction never fails.
func ExtractDirectives(root *Node) []Directive {
	var out []Directive
	walkDirectives(root, frontmatter.RootPath, &out)
	return out
}

func walkDirectives(n *Node, at frontmatter.Path, out *[]Directive) {
	if n == nil {
		return
	}
	for _, raw := range n.Directives {
		if kind, ok := kindByKey[raw.Key]; ok {
			*out = append(*out, Directive{Kind: kind, Path: at, Value: raw.Value})
		}
	}
	for _, p := range n.Properties {
		walkDirectives(p.Node, at.Append(frontmatter.Property(p.Name)), out)
	}
	if n.Items != nil {
		walkDirectives(n.Items, at.Append(frontmatter.ArrayAll()), out)
	}
}

// Classified groups directives by intent, preserving declaration order
// within each group.
type Classified struct {
	Extraction []Directive
	Templating []Directive
	Processing []Directive
}

// Classify splits directives into the three intents.
func Classify(ds []Directive) Classified {
	var c Classified
	for _, d := range ds {
		switch d.Kind.Intent() {
		case IntentExtraction:
			c.Extraction = append(c.Extraction, d)
		case IntentTemplating:
			c.Templating = append(c.Templating, d)
		default:
			c.Processing = append(c.Processing, d)
		}
	}
	return c
}
