package frontmatter

// Package frontmatter implements a schema-directed transformation engine for
// metadata blocks embedded in text documents.
//
// It provides:
//
// - A path addressing model (Path) for dotted/bracketed property paths
// - A stable error model via Issues (path, code, message)
// - Schema loading with $ref resolution and directive extraction (schema/)
// - An immutable, path-addressable intermediate representation (ir/)
// - Ordered directive processing in per-document and cross-document phases (engine/)
// - Template variable resolution with array-iteration scoping (template/)
// - Aggregation of per-document results into one JSON/YAML artifact (aggregate/)
//
// Design policy:
// - Keep only shared value types and the error model in the root package.
// - Place the schema model under schema/, the IR under ir/, directive
//   processing under engine/, templating under template/, input adapters
//   under source/, and the CLI under cmd/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	res, err := pipeline.Run(ctx, pipeline.Options{
//	    SchemaPath: "registry.schema.yml",
//	    InputGlob:  "docs/**/*.md",
//	    Format:     aggregate.FormatJSON,
//	})
