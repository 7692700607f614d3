package source

import (
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// ReadFile reads one file.
func ReadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, frontmatter.Issue{
			Code:    frontmatter.CodeExtractError,
			Message: err.Error(),
			Cause:   err,
		}
	}
	return raw, nil
}

// ListFiles expands a doublestar pattern ("docs/**/*.md") into a sorted
// file list, so document order is stable across runs.
func ListFiles(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, frontmatter.Issue{
			Code:    frontmatter.CodeExtractError,
			Message: err.Error(),
			Cause:   err,
		}
	}
	sort.Strings(matches)
	return matches, nil
}
