// Package aggregate folds per-document results into one final artifact with
// run statistics, serialized to JSON or YAML.
package aggregate

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// Format selects the serialized artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", frontmatter.Issue{
			Code:    frontmatter.CodeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported output format %q (want json or yaml)", s),
		}
	}
}

type state int

const (
	stateUninitialized state = iota
	stateCollecting
	stateFinalized
)

// DocumentResult is one successfully processed document in the artifact.
type DocumentResult struct {
	ID   string `json:"id" yaml:"id"`
	Data any    `json:"data,omitempty" yaml:"data,omitempty"`
	// Rendered carries the template output for the document, when templates
	// were declared.
	Rendered string `json:"rendered,omitempty" yaml:"rendered,omitempty"`
}

// FailureRecord identifies one failed document.
type FailureRecord struct {
	DocID   string `json:"docId" yaml:"docId"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// FinalResult is the consolidated artifact.
type FinalResult struct {
	RunID             string           `json:"runId" yaml:"runId"`
	Total             int              `json:"total" yaml:"total"`
	Processed         int              `json:"processed" yaml:"processed"`
	Failed            int              `json:"failed" yaml:"failed"`
	SuccessRate       float64          `json:"successRate" yaml:"successRate"`
	DurationSeconds   float64          `json:"durationSeconds" yaml:"durationSeconds"`
	UniqueValueCounts map[string]int   `json:"uniqueValueCounts,omitempty" yaml:"uniqueValueCounts,omitempty"`
	NullCounts        map[string]int   `json:"nullCounts,omitempty" yaml:"nullCounts,omitempty"`
	Failures          []FailureRecord  `json:"failures,omitempty" yaml:"failures,omitempty"`
	Documents         []DocumentResult `json:"documents" yaml:"documents"`
}

// Aggregator accumulates per-document results. Integrate and RecordFailure
// are valid only while Collecting; Serialize only once Finalized. One
// aggregator serves one run and is not safe for concurrent use.
type Aggregator struct {
	state   state
	format  Format
	runID   string
	started time.Time
	total   int
	docs    []DocumentResult
	fails   []FailureRecord
	unique  map[string]map[string]struct{}
	nulls   map[string]int
	final   FinalResult
}

// New returns an uninitialized aggregator.
func New() *Aggregator { return &Aggregator{} }

// Initialize moves the aggregator into the Collecting state.
func (a *Aggregator) Initialize(total int, format Format) error {
	if a.state != stateUninitialized {
		return a.stateErr("initialize")
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	a.state = stateCollecting
	a.format = format
	a.runID = uuid.NewString()
	a.started = time.Now()
	a.total = total
	a.unique = map[string]map[string]struct{}{}
	a.nulls = map[string]int{}
	return nil
}

// Integrate folds one processed document into the accumulator, updating the
// per-field unique-value and null counters from its top-level fields.
func (a *Aggregator) Integrate(docID string, data any, rendered string) error {
	if a.state != stateCollecting {
		return a.stateErr("integrate")
	}
	a.docs = append(a.docs, DocumentResult{ID: docID, Data: data, Rendered: rendered})
	fields, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	for name, v := range fields {
		if v == nil {
			a.nulls[name]++
			continue
		}
		enc, err := json.Marshal(v)
		if err != nil {
			continue
		}
		set, ok := a.unique[name]
		if !ok {
			set = map[string]struct{}{}
			a.unique[name] = set
		}
		set[string(enc)] = struct{}{}
	}
	return nil
}

// RecordFailure registers a failed document without aborting the run.
func (a *Aggregator) RecordFailure(docID string, iss frontmatter.Issue) error {
	if a.state != stateCollecting {
		return a.stateErr("recordFailure")
	}
	a.fails = append(a.fails, FailureRecord{DocID: docID, Kind: iss.Code, Message: iss.Message})
	return nil
}

// Finalize closes collection and computes the run statistics.
func (a *Aggregator) Finalize() (FinalResult, error) {
	if a.state != stateCollecting {
		return FinalResult{}, a.stateErr("finalize")
	}
	a.state = stateFinalized
	res := FinalResult{
		RunID:           a.runID,
		Total:           a.total,
		Processed:       len(a.docs),
		Failed:          len(a.fails),
		DurationSeconds: time.Since(a.started).Seconds(),
		Failures:        a.fails,
		Documents:       a.docs,
	}
	if a.total > 0 {
		res.SuccessRate = float64(len(a.docs)) / float64(a.total)
	}
	if len(a.unique) > 0 {
		res.UniqueValueCounts = map[string]int{}
		for name, set := range a.unique {
			res.UniqueValueCounts[name] = len(set)
		}
	}
	if len(a.nulls) > 0 {
		res.NullCounts = map[string]int{}
		for name, n := range a.nulls {
			res.NullCounts[name] = n
		}
	}
	if res.Documents == nil {
		res.Documents = []DocumentResult{}
	}
	a.final = res
	return res, nil
}

// Serialize encodes the finalized artifact in the configured format.
// Serialization failures do not invalidate the computed result.
func (a *Aggregator) Serialize() ([]byte, error) {
	if a.state != stateFinalized {
		return nil, a.stateErr("serialize")
	}
	switch a.format {
	case FormatJSON:
		out, err := json.MarshalIndent(a.final, "", "  ")
		if err != nil {
			return nil, frontmatter.Issue{
				Code:    frontmatter.CodeTransformationFailed,
				Message: fmt.Sprintf("json serialization: %v", err),
				Cause:   err,
			}
		}
		return out, nil
	case FormatYAML:
		out, err := yaml.Marshal(a.final)
		if err != nil {
			return nil, frontmatter.Issue{
				Code:    frontmatter.CodeTransformationFailed,
				Message: fmt.Sprintf("yaml serialization: %v", err),
				Cause:   err,
			}
		}
		return out, nil
	default:
		return nil, frontmatter.Issue{
			Code:    frontmatter.CodeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported output format %q", a.format),
		}
	}
}

func (a *Aggregator) stateErr(op string) error {
	names := map[state]string{
		stateUninitialized: "uninitialized",
		stateCollecting:    "collecting",
		stateFinalized:     "finalized",
	}
	return frontmatter.Issue{
		Code:    frontmatter.CodeInvalidState,
		Message: fmt.Sprintf("aggregator: %s is not valid in state %s", op, names[a.state]),
	}
}
