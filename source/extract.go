// Package source is the input boundary: file discovery, frontmatter
// delimiter scanning, and the YAML/JSON/TOML parser adapters. It hands
// unparsed blocks and JSON-like value trees to the core, which never touches
// the filesystem itself.
package source

import (
	"fmt"
	"strings"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// Format identifies the syntax of an extracted frontmatter block.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Block is one unparsed frontmatter block.
type Block struct {
	Raw    string
	Format Format
}

// Extract scans the delimited metadata block at the start of a document:
// "---" fences for YAML, "+++" fences for TOML, or a leading balanced JSON
// object. The block is returned unparsed.
func Extract(text string) (Block, error) {
	body := strings.TrimPrefix(text, "\ufeff")
	switch {
	case strings.HasPrefix(body, "---"):
		raw, err := fenced(body, "---")
		if err != nil {
			return Block{}, err
		}
		return Block{Raw: raw, Format: FormatYAML}, nil
	case strings.HasPrefix(body, "+++"):
		raw, err := fenced(body, "+++")
		if err != nil {
			return Block{}, err
		}
		return Block{Raw: raw, Format: FormatTOML}, nil
	case strings.HasPrefix(body, "{"):
		raw, err := jsonPrefix(body)
		if err != nil {
			return Block{}, err
		}
		return Block{Raw: raw, Format: FormatJSON}, nil
	default:
		return Block{}, frontmatter.Issue{
			Code:    frontmatter.CodeExtractError,
			Message: "document has no frontmatter block",
		}
	}
}

// fenced returns the content between an opening fence line and the next
// closing fence line.
func fenced(body, fence string) (string, error) {
	rest, ok := strings.CutPrefix(body, fence)
	if !ok {
		return "", extractErr("missing opening fence %q", fence)
	}
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", extractErr("unterminated frontmatter fence %q", fence)
	}
	if trailing := strings.TrimSpace(rest[:nl]); trailing != "" {
		return "", extractErr("unexpected content %q on fence line", trailing)
	}
	rest = rest[nl+1:]
	for offset := 0; ; {
		idx := strings.Index(rest[offset:], "\n"+fence)
		if idx < 0 {
			return "", extractErr("unterminated frontmatter fence %q", fence)
		}
		end := offset + idx
		lineEnd := end + 1 + len(fence)
		tail := rest[lineEnd:]
		if tail == "" || strings.TrimSpace(firstLine(tail)) == "" {
			return rest[:end], nil
		}
		offset = lineEnd
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// jsonPrefix returns the balanced JSON object opening the document,
// respecting string literals and escapes.
func jsonPrefix(body string) (string, error) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return body[:i+1], nil
			}
		}
	}
	return "", extractErr("unbalanced JSON frontmatter object")
}

func extractErr(format string, args ...any) error {
	return frontmatter.Issue{
		Code:    frontmatter.CodeExtractError,
		Message: fmt.Sprintf(format, args...),
	}
}
