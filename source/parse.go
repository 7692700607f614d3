package source

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// Parse dispatches an extracted block to the adapter for its format.
func Parse(b Block) (any, error) {
	switch b.Format {
	case FormatYAML:
		return ParseYAML([]byte(b.Raw))
	case FormatTOML:
		return ParseTOML([]byte(b.Raw))
	case FormatJSON:
		return ParseJSON([]byte(b.Raw))
	default:
		return nil, frontmatter.Issue{
			Code:    frontmatter.CodeParseError,
			Message: fmt.Sprintf("unknown frontmatter format %q", b.Format),
		}
	}
}

// ParseYAML decodes YAML into a JSON-like tree.
func ParseYAML(raw []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, parseErr("yaml", err)
	}
	return normalizeValue(v), nil
}

// ParseJSON decodes JSON into a JSON-like tree.
func ParseJSON(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, parseErr("json", err)
	}
	return v, nil
}

// ParseTOML decodes TOML into a JSON-like tree.
func ParseTOML(raw []byte) (any, error) {
	var v map[string]any
	if err := toml.Unmarshal(raw, &v); err != nil {
		return nil, parseErr("toml", err)
	}
	return normalizeValue(v), nil
}

func parseErr(format string, err error) error {
	return frontmatter.Issue{
		Code:    frontmatter.CodeParseError,
		Message: fmt.Sprintf("%s: %v", format, err),
		Cause:   err,
	}
}

// normalizeValue converts decoder-specific container types (map[any]any from
// YAML with non-string keys, typed slices from TOML) into map[string]any and
// []any recursively.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeValue(vv)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeValue(vv)
		}
		return out
	default:
		return v
	}
}
