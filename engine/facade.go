package engine

import (
	"context"
	"fmt"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/ir"
	"github.com/tettuan/frontmatter-to-schema/schema"
)

// Facade is the sole externally callable accessor into processed data.
// Callers initialize it with extracted per-document data, install the
// directive set, run processing, and read results by schema path; the
// underlying IR is never handed out for direct traversal.
type Facade struct {
	p *Processor
}

// NewFacade returns a facade over a fresh processor.
func NewFacade() *Facade { return &Facade{p: NewProcessor()} }

// Initialize installs extracted data for each document.
func (f *Facade) Initialize(docs []frontmatter.Document) error {
	return f.p.Initialize(docs)
}

// SetDirectives installs the directive set; only processing-intent
// directives are retained.
func (f *Facade) SetDirectives(ds []schema.Directive) {
	f.p.SetDirectives(ds)
}

// Process runs both directive phases.
func (f *Facade) Process(ctx context.Context) error {
	return f.p.Run(ctx)
}

// CallMethod resolves a schema path against the processed data. For a path
// produced by an aggregate-timing directive it returns the single aggregate
// value; otherwise it returns the per-document resolutions in input order,
// skipping failed documents and documents where the path misses. A path that
// resolves nowhere is a typed PathNotFound.
func (f *Facade) CallMethod(schemaPath string) (any, error) {
	p, err := frontmatter.ParsePath(schemaPath)
	if err != nil {
		return nil, err
	}
	if agg, ok := f.p.derived[p.String()]; ok {
		return agg, nil
	}
	var out []any
	for _, id := range f.p.processedIDs() {
		node, err := ir.Resolve(f.p.docs[id].node, p)
		if err != nil {
			continue
		}
		out = append(out, ir.Value(node))
	}
	if out == nil {
		return nil, frontmatter.Issue{
			Path:    p.String(),
			Code:    frontmatter.CodePathNotFound,
			Message: fmt.Sprintf("path %q resolves in no processed document", schemaPath),
		}
	}
	return out, nil
}

// DocumentNode exposes one document's final IR for template rendering.
func (f *Facade) DocumentNode(id string) (ir.Node, error) { return f.p.DocumentNode(id) }

// ProcessedIDs lists the documents that survived processing, in input order.
func (f *Facade) ProcessedIDs() []string { return f.p.processedIDs() }

// Failures lists failed documents in input order.
func (f *Facade) Failures() []Failure { return f.p.Failures() }

// RunIssues reports aggregate-directive failures not tied to one document.
func (f *Facade) RunIssues() frontmatter.Issues { return f.p.RunIssues() }
