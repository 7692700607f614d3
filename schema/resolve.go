package schema

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// DefaultMaxDepth bounds $ref recursion. Diamond reuse of finished refs is
// cached and does not consume depth beyond its first resolution.
const DefaultMaxDepth = 100

// Loader resolves a schema document and every $ref it reaches.
// ReadFile enables cross-file refs ("other.yml#/definitions/x"); leaving it
// nil restricts the schema to local "#/..." pointers.
type Loader struct {
	ReadFile func(path string) ([]byte, error)
	MaxDepth int
}

// Load parses raw (YAML or JSON; YAML is a superset) rooted at base and
// returns the fully resolved schema. The resolution cache and the
// currently-resolving set live on the per-call resolver, so concurrent Load
// calls never interfere.
func (l *Loader) Load(raw []byte, base string) (*Node, error) {
	root, err := parseDocument(raw, base)
	if err != nil {
		return nil, err
	}
	r := &resolver{
		loader:   l,
		maxDepth: l.MaxDepth,
		docs:     map[string]*yaml.Node{base: root},
		cache:    map[string]*yaml.Node{},
		inflight: map[string]bool{},
	}
	if r.maxDepth <= 0 {
		r.maxDepth = DefaultMaxDepth
	}
	resolved, err := r.resolve(root, base, 0)
	if err != nil {
		return nil, err
	}
	return nodeFromYAML(resolved)
}

func parseDocument(raw []byte, base string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, frontmatter.Issue{Code: frontmatter.CodeParseError, Message: fmt.Sprintf("schema %s: %v", base, err), Cause: err}
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0], nil
	}
	return &doc, nil
}

// resolver carries run-scoped resolution state. Never shared across runs.
type resolver struct {
	loader   *Loader
	maxDepth int
	docs     map[string]*yaml.Node // loaded documents by file path
	cache    map[string]*yaml.Node // finished refs by absolute "file#pointer"
	inflight map[string]bool       // refs currently being resolved
}

// resolve rebuilds n with every $ref replaced by its resolved target.
// The input graph is never mutated.
func (r *resolver) resolve(n *yaml.Node, doc string, depth int) (*yaml.Node, error) {
	if depth > r.maxDepth {
		return nil, frontmatter.Issue{
			Code:    frontmatter.CodeMaxDepthExceeded,
			Message: fmt.Sprintf("$ref recursion exceeded depth %d", r.maxDepth),
		}
	}
	n = deref(n)
	switch n.Kind {
	case yaml.MappingNode:
		if ref, ok := refValue(n); ok {
			return r.resolveRef(ref, doc, depth)
		}
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: n.Tag}
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := r.resolve(n.Content[i+1], doc, depth)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, n.Content[i], val)
		}
		return out, nil
	case yaml.SequenceNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: n.Tag}
		for _, item := range n.Content {
			res, err := r.resolve(item, doc, depth)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, res)
		}
		return out, nil
	default:
		return n, nil
	}
}

func refValue(n *yaml.Node) (string, bool) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "$ref" {
			return deref(n.Content[i+1]).Value, true
		}
	}
	return "", false
}

func (r *resolver) resolveRef(ref, doc string, depth int) (*yaml.Node, error) {
	file, pointer := splitRef(ref, doc)
	key := file + "#" + pointer
	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}
	if r.inflight[key] {
		return nil, frontmatter.Issue{
			Code:    frontmatter.CodeCircularReference,
			Message: fmt.Sprintf("$ref cycle through %q", ref),
			Params:  map[string]any{"ref": ref},
		}
	}
	target, err := r.lookupTarget(file, pointer, ref)
	if err != nil {
		return nil, err
	}
	r.inflight[key] = true
	resolved, err := r.resolve(target, file, depth+1)
	delete(r.inflight, key)
	if err != nil {
		return nil, err
	}
	r.cache[key] = resolved
	return resolved, nil
}

// splitRef separates the file and pointer parts of a ref, resolving relative
// files against the referencing document's directory.
func splitRef(ref, doc string) (file, pointer string) {
	file = doc
	pointer = ""
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		if i > 0 {
			file = relativeTo(doc, ref[:i])
		}
		pointer = ref[i+1:]
	} else if ref != "" {
		file = relativeTo(doc, ref)
	}
	return file, pointer
}

func relativeTo(doc, ref string) string {
	if filepath.IsAbs(ref) || doc == "" {
		return ref
	}
	return filepath.Join(filepath.Dir(doc), ref)
}

func (r *resolver) lookupTarget(file, pointer, ref string) (*yaml.Node, error) {
	root, ok := r.docs[file]
	if !ok {
		if r.loader.ReadFile == nil {
			return nil, frontmatter.Issue{
				Code:    frontmatter.CodeRefResolutionFailed,
				Message: fmt.Sprintf("$ref %q requires file loading, which is not configured", ref),
				Params:  map[string]any{"ref": ref},
			}
		}
		raw, err := r.loader.ReadFile(file)
		if err != nil {
			return nil, frontmatter.Issue{
				Code:    frontmatter.CodeRefResolutionFailed,
				Message: fmt.Sprintf("$ref %q: %v", ref, err),
				Cause:   err,
				Params:  map[string]any{"ref": ref},
			}
		}
		root, err = parseDocument(raw, file)
		if err != nil {
			return nil, err
		}
		r.docs[file] = root
	}
	target, err := lookupPointer(root, pointer)
	if err != nil {
		return nil, frontmatter.Issue{
			Code:    frontmatter.CodeRefResolutionFailed,
			Message: fmt.Sprintf("$ref %q: %v", ref, err),
			Params:  map[string]any{"ref": ref},
		}
	}
	return target, nil
}

// lookupPointer walks an RFC 6901 JSON Pointer ("/definitions/cmd") through
// mappings and sequences.
func lookupPointer(root *yaml.Node, pointer string) (*yaml.Node, error) {
	cur := deref(root)
	if pointer == "" || pointer == "/" {
		return cur, nil
	}
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		cur = deref(cur)
		switch cur.Kind {
		case yaml.MappingNode:
			found := false
			for i := 0; i+1 < len(cur.Content); i += 2 {
				if cur.Content[i].Value == part {
					cur = cur.Content[i+1]
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("pointer segment %q not found", part)
			}
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(cur.Content) {
				return nil, fmt.Errorf("pointer segment %q is not a valid sequence index", part)
			}
			cur = cur.Content[idx]
		default:
			return nil, fmt.Errorf("pointer segment %q descends into a scalar", part)
		}
	}
	return deref(cur), nil
}
