package frontmatter

// Document carries the extracted metadata of one source document into the
// processing engine. Data holds the parsed frontmatter as a JSON-like tree
// (map[string]any / []any / scalars).
type Document struct {
	ID     string // Stable identifier, typically the source-relative file path.
	Source string // Originating file, for diagnostics.
	Data   any
}
