// Package engine applies data-processing directives to per-document IR trees
// in two ordered phases: individual timing (flatten-arrays, jmespath-filter)
// runs once per document using only that document's data; aggregate timing
// (derived-from, derived-unique) runs once, after every document completed
// individual timing, because it reads across the whole set. Processed data is
// exposed only through the path-keyed Facade accessor.
package engine

import (
	"context"
	"fmt"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/ir"
	"github.com/tettuan/frontmatter-to-schema/schema"
)

// state is the per-document lifecycle.
type state int

const (
	stateUninitialized state = iota
	stateInitialized
	stateProcessing
	stateProcessed
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateInitialized:
		return "initialized"
	case stateProcessing:
		return "processing"
	case stateProcessed:
		return "processed"
	case stateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// transitions lists the allowed state moves; everything else is a typed error.
var transitions = map[state][]state{
	stateUninitialized: {stateInitialized},
	stateInitialized:   {stateProcessing, stateFailed},
	stateProcessing:    {stateProcessed, stateFailed},
	stateFailed:        {stateInitialized},
}

type document struct {
	id    string
	state state
	node  ir.Node
	fail  *frontmatter.Issue
}

func (d *document) transition(to state) error {
	for _, t := range transitions[d.state] {
		if t == to {
			d.state = to
			return nil
		}
	}
	return frontmatter.Issue{
		Code:    frontmatter.CodeInvalidState,
		Message: fmt.Sprintf("document %s: cannot transition %s -> %s", d.id, d.state, to),
	}
}

func (d *document) failWith(iss frontmatter.Issue) {
	d.state = stateFailed
	d.fail = &iss
}

// Failure records one failed document for aggregation.
type Failure struct {
	DocID string
	Issue frontmatter.Issue
}

// Processor owns the per-document state machines and the directive ordering
// contract. It is not safe for concurrent use; one Processor serves one run.
type Processor struct {
	order      []string
	docs       map[string]*document
	directives []schema.Directive
	derived    map[string]any // aggregate values keyed by canonical target path
	ran        bool
	runIssues  frontmatter.Issues // aggregate-directive failures not tied to one document
}

// NewProcessor returns an empty processor.
func NewProcessor() *Processor {
	return &Processor{docs: map[string]*document{}, derived: map[string]any{}}
}

// Initialize installs extracted data for each document, building its IR.
// A document may be initialized only from the Uninitialized or Failed state.
func (p *Processor) Initialize(docs []frontmatter.Document) error {
	for _, d := range docs {
		doc, ok := p.docs[d.ID]
		if !ok {
			doc = &document{id: d.ID}
			p.docs[d.ID] = doc
			p.order = append(p.order, d.ID)
		}
		if err := doc.transition(stateInitialized); err != nil {
			return err
		}
		doc.node = ir.FromData(d.Data)
		doc.fail = nil
	}
	return nil
}

// SetDirectives installs the processing-intent directives, preserving
// declaration order. Directives of other intents are discarded here; the
// engine never sees extraction or template directives.
func (p *Processor) SetDirectives(ds []schema.Directive) {
	p.directives = p.directives[:0]
	for _, d := range ds {
		if d.Kind.Intent() == schema.IntentProcessing {
			p.directives = append(p.directives, d)
		}
	}
}

// Run applies both directive phases. Per-document failures do not abort the
// run; the document is marked Failed and the rest continue. Cancellation is
// checked between documents; already-built trees stay valid.
func (p *Processor) Run(ctx context.Context) error {
	if p.ran {
		return frontmatter.Issue{Code: frontmatter.CodeInvalidState, Message: "processor has already run"}
	}
	p.ran = true

	individual, aggregate := splitTiming(p.directives)

	// Individual timing: each document sees only its own data.
	for _, id := range p.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := p.docs[id]
		if doc.state == stateFailed {
			continue
		}
		if err := doc.transition(stateProcessing); err != nil {
			return err
		}
		for _, d := range individual {
			if err := p.applyIndividual(doc, d); err != nil {
				doc.failWith(toIssue(err, d))
				break
			}
		}
	}

	// Aggregate timing starts only after every document completed the
	// individual phase (all-or-nothing join).
	for _, d := range aggregate {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.applyAggregate(d); err != nil {
			p.runIssues = frontmatter.AppendIssues(p.runIssues, toIssue(err, d))
		}
	}

	for _, id := range p.order {
		doc := p.docs[id]
		if doc.state == stateProcessing {
			if err := doc.transition(stateProcessed); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitTiming partitions directives into the two phases, keeping declaration
// order within each.
func splitTiming(ds []schema.Directive) (individual, aggregate []schema.Directive) {
	for _, d := range ds {
		switch d.Kind {
		case schema.KindDerivedFrom, schema.KindDerivedUnique:
			aggregate = append(aggregate, d)
		default:
			individual = append(individual, d)
		}
	}
	return individual, aggregate
}

func (p *Processor) applyIndividual(doc *document, d schema.Directive) error {
	switch d.Kind {
	case schema.KindFlattenArrays:
		return applyFlatten(doc, d)
	case schema.KindJmesPathFilter:
		return applyFilter(doc, d)
	default:
		return frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeInvalidDirective,
			Message: fmt.Sprintf("%s is not an individual-timing directive", d.Kind),
		}
	}
}

func (p *Processor) applyAggregate(d schema.Directive) error {
	switch d.Kind {
	case schema.KindDerivedFrom:
		return p.applyDerivedFrom(d)
	case schema.KindDerivedUnique:
		return p.applyDerivedUnique(d)
	default:
		return frontmatter.Issue{
			Path:    d.Path.String(),
			Code:    frontmatter.CodeInvalidDirective,
			Message: fmt.Sprintf("%s is not an aggregate-timing directive", d.Kind),
		}
	}
}

// processedIDs returns the documents that survived processing, in input order.
func (p *Processor) processedIDs() []string {
	out := make([]string, 0, len(p.order))
	for _, id := range p.order {
		if p.docs[id].state != stateFailed {
			out = append(out, id)
		}
	}
	return out
}

// DocumentNode returns the current IR of one document.
func (p *Processor) DocumentNode(id string) (ir.Node, error) {
	doc, ok := p.docs[id]
	if !ok || doc.node == nil {
		return nil, frontmatter.Issue{Code: frontmatter.CodePathNotFound, Message: fmt.Sprintf("unknown document %q", id)}
	}
	if doc.state == stateFailed {
		return nil, *doc.fail
	}
	return doc.node, nil
}

// Failures lists the documents that entered the Failed state, in input order.
func (p *Processor) Failures() []Failure {
	var out []Failure
	for _, id := range p.order {
		if doc := p.docs[id]; doc.state == stateFailed && doc.fail != nil {
			out = append(out, Failure{DocID: id, Issue: *doc.fail})
		}
	}
	return out
}

// RunIssues reports aggregate-directive failures that are not attributable to
// a single document.
func (p *Processor) RunIssues() frontmatter.Issues { return p.runIssues }

func toIssue(err error, d schema.Directive) frontmatter.Issue {
	if iss, ok := frontmatter.AsIssues(err); ok && len(iss) > 0 {
		return iss[0]
	}
	return frontmatter.Issue{
		Path:    d.Path.String(),
		Code:    frontmatter.CodeTransformationFailed,
		Message: err.Error(),
		Cause:   err,
	}
}
