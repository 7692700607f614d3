package frontmatter

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema errors (fatal to the run; the schema is shared configuration).
	CodeCircularReference   = "circular_reference"
	CodeMaxDepthExceeded    = "max_depth_exceeded"
	CodeRefResolutionFailed = "ref_resolution_failed"

	// Processing errors (recovered at document granularity).
	CodeInvalidDirective     = "invalid_directive"
	CodePathNotFound         = "path_not_found"
	CodeTransformationFailed = "transformation_failed"

	// Input boundary errors.
	CodeExtractError = "extract_error"
	CodeParseError   = "parse_error"

	// Output errors.
	CodeUnsupportedFormat = "unsupported_format"

	// Lifecycle errors (disallowed state-machine transitions).
	CodeInvalidState = "invalid_state"
)

// Issue represents a single error entry.
type Issue struct {
	Path    string // Canonical path of the offending node (for example: commands[].c1).
	Code    string // One of the codes listed above.
	Message string
	Cause   error          // Optional: underlying error.
	Params  map[string]any // Structured parameters (e.g., {"ref": "#/definitions/cmd"}).
}

func (i Issue) Error() string {
	if i.Path == "" {
		return i.Code + ": " + i.Message
	}
	return fmt.Sprintf("%s at %s: %s", i.Code, i.Path, i.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (i Issue) Unwrap() error { return i.Cause }

// Issues is a collection of errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Path == "" {
			b.WriteString(it.Code)
		} else {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
// A bare Issue is promoted to a single-element Issues.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var one Issue
	if errors.As(err, &one) {
		return Issues{one}, true
	}
	return nil, false
}

// IssueAt creates an Issue at the given path with the provided code and message.
func IssueAt(p Path, code, msg string) Issue {
	return Issue{Path: p.String(), Code: code, Message: msg}
}
