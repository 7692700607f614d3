// Package pipeline wires the transformation run end to end: schema loading,
// bounded-parallel frontmatter extraction, two-phase directive processing,
// template rendering, and aggregation into one serialized artifact.
package pipeline

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/aggregate"
	"github.com/tettuan/frontmatter-to-schema/engine"
	"github.com/tettuan/frontmatter-to-schema/internal/logger"
	"github.com/tettuan/frontmatter-to-schema/ir"
	"github.com/tettuan/frontmatter-to-schema/schema"
	"github.com/tettuan/frontmatter-to-schema/source"
	"github.com/tettuan/frontmatter-to-schema/template"
)

// Options configure one run.
type Options struct {
	SchemaPath string
	InputGlob  string
	Format     aggregate.Format
	// Concurrency bounds parallel extraction; zero means GOMAXPROCS.
	Concurrency int
	// FallbackSentinel replaces unresolved template variables.
	FallbackSentinel string

	// ReadFile and ListFiles default to the OS-backed source adapters.
	// Overridable for tests.
	ReadFile  func(path string) ([]byte, error)
	ListFiles func(pattern string) ([]string, error)
}

// Result bundles the finalized statistics with the serialized artifact.
type Result struct {
	Final    aggregate.FinalResult
	Artifact []byte
}

// Run executes the whole flow. Schema errors are fatal; per-document
// extraction and processing errors are recorded and the run continues.
func Run(ctx context.Context, opts Options) (Result, error) {
	log := logger.ForComponent("pipeline")
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = source.ReadFile
	}
	listFiles := opts.ListFiles
	if listFiles == nil {
		listFiles = source.ListFiles
	}
	// Schema is shared configuration: any load failure is fatal to the run.
	rawSchema, err := readFile(opts.SchemaPath)
	if err != nil {
		return Result{}, err
	}
	loader := &schema.Loader{ReadFile: readFile}
	resolved, err := loader.Load(rawSchema, opts.SchemaPath)
	if err != nil {
		return Result{}, err
	}
	directives := schema.ExtractDirectives(resolved)

	tplFacade := &template.Facade{ReadFile: readFile}
	templates, err := tplFacade.LoadTemplates(resolved)
	if err != nil {
		return Result{}, err
	}

	// The schema's declared output format applies unless the caller set one.
	format := opts.Format
	if format == "" && templates.Format != "" {
		parsed, err := aggregate.ParseFormat(templates.Format)
		if err != nil {
			return Result{}, err
		}
		format = parsed
	}
	if format == "" {
		format = aggregate.FormatJSON
	}

	paths, err := listFiles(opts.InputGlob)
	if err != nil {
		return Result{}, err
	}
	log.Info("run starting", "documents", len(paths), "schema", opts.SchemaPath)

	docs, extractFailures := extractAll(ctx, paths, readFile, opts.Concurrency)

	agg := aggregate.New()
	if err := agg.Initialize(len(paths), format); err != nil {
		return Result{}, err
	}
	for _, f := range extractFailures {
		log.Warn("document failed", "doc", f.DocID, "code", f.Issue.Code, "error", f.Issue.Message)
		if err := agg.RecordFailure(f.DocID, f.Issue); err != nil {
			return Result{}, err
		}
	}

	facade := engine.NewFacade()
	if err := facade.Initialize(docs); err != nil {
		return Result{}, err
	}
	facade.SetDirectives(directives)
	if err := facade.Process(ctx); err != nil {
		return Result{}, err
	}
	for _, f := range facade.Failures() {
		log.Warn("document failed", "doc", f.DocID, "code", f.Issue.Code, "error", f.Issue.Message)
		if err := agg.RecordFailure(f.DocID, f.Issue); err != nil {
			return Result{}, err
		}
	}
	for _, iss := range facade.RunIssues() {
		log.Warn("aggregate directive skipped", "path", iss.Path, "code", iss.Code, "error", iss.Message)
	}

	renderer := template.Renderer{
		Policy:    template.FallbackPolicy{Sentinel: opts.FallbackSentinel},
		ItemsPath: templates.ItemsPath,
	}
	if templates.Items != nil {
		renderer.Items = *templates.Items
	}
	for _, id := range facade.ProcessedIDs() {
		node, err := facade.DocumentNode(id)
		if err != nil {
			return Result{}, err
		}
		rendered := ""
		if templates.Main != nil {
			rendered = renderer.Render(*templates.Main, node)
		}
		if err := agg.Integrate(id, ir.Value(node), rendered); err != nil {
			return Result{}, err
		}
	}

	final, err := agg.Finalize()
	if err != nil {
		return Result{}, err
	}
	artifact, err := agg.Serialize()
	if err != nil {
		// The computed statistics stay valid even when serialization fails.
		return Result{Final: final}, err
	}
	log.Info("run finished",
		"run", final.RunID,
		"total", final.Total,
		"processed", final.Processed,
		"failed", final.Failed,
	)
	return Result{Final: final, Artifact: artifact}, nil
}

// extractAll reads and parses frontmatter with bounded parallelism.
// Documents are independent until the aggregate-timing phase, so extraction
// order does not matter; results are reassembled in input order.
func extractAll(ctx context.Context, paths []string, readFile func(string) ([]byte, error), concurrency int) ([]frontmatter.Document, []engine.Failure) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	type slot struct {
		doc  *frontmatter.Document
		fail *engine.Failure
	}
	slots := make([]slot, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := extractOne(path, readFile)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				iss := frontmatter.Issue{Code: frontmatter.CodeExtractError, Message: err.Error(), Cause: err}
				if got, ok := frontmatter.AsIssues(err); ok {
					iss = got[0]
				}
				slots[i] = slot{fail: &engine.Failure{DocID: path, Issue: iss}}
				return nil
			}
			slots[i] = slot{doc: &frontmatter.Document{ID: path, Source: path, Data: data}}
			return nil
		})
	}
	// Extraction failures are per-document; only cancellation aborts here.
	_ = g.Wait()

	var docs []frontmatter.Document
	var failures []engine.Failure
	for _, s := range slots {
		switch {
		case s.doc != nil:
			docs = append(docs, *s.doc)
		case s.fail != nil:
			failures = append(failures, *s.fail)
		}
	}
	return docs, failures
}

func extractOne(path string, readFile func(string) ([]byte, error)) (any, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	block, err := source.Extract(string(raw))
	if err != nil {
		return nil, err
	}
	return source.Parse(block)
}
