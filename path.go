package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind identifies a Path segment type.
type SegmentKind int

const (
	SegmentProperty SegmentKind = iota // Named property lookup on an object.
	SegmentIndex                       // Explicit element index on an array.
	SegmentAll                         // Array marker "[]": broadcast over all elements.
)

// Segment is one step of a Path.
type Segment struct {
	Kind  SegmentKind
	Name  string // Set for SegmentProperty.
	Index int    // Set for SegmentIndex.
}

// Property returns a named property segment.
func Property(name string) Segment { return Segment{Kind: SegmentProperty, Name: name} }

// Index returns an explicit array index segment.
func Index(i int) Segment { return Segment{Kind: SegmentIndex, Index: i} }

// ArrayAll returns the broadcast array marker segment ("[]").
func ArrayAll() Segment { return Segment{Kind: SegmentAll} }

func (s Segment) String() string {
	switch s.Kind {
	case SegmentIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case SegmentAll:
		return "[]"
	default:
		return s.Name
	}
}

// Path addresses a node in a document tree using dotted property names and
// bracketed array steps, e.g. "commands[].c1" or "posts[2].title".
// The zero value is the root path. Path values are immutable; all methods
// return copies.
type Path struct {
	segs []Segment
}

// RootPath is the empty path addressing the tree root.
var RootPath = Path{}

// ParsePath parses the canonical textual form. The empty string parses to the
// root path. Canonical strings round-trip: ParsePath(p.String()) == p.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	var segs []Segment
	i := 0
	wantDot := false // true right after a segment; a '.' or '[' must follow
	for i < len(s) {
		switch {
		case s[i] == '.':
			if !wantDot {
				return Path{}, Issue{Code: CodeParseError, Message: fmt.Sprintf("path %q: empty segment at offset %d", s, i)}
			}
			wantDot = false
			i++
		case s[i] == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return Path{}, Issue{Code: CodeParseError, Message: fmt.Sprintf("path %q: unterminated bracket at offset %d", s, i)}
			}
			inner := s[i+1 : i+end]
			if inner == "" {
				segs = append(segs, ArrayAll())
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil || idx < 0 {
					return Path{}, Issue{Code: CodeParseError, Message: fmt.Sprintf("path %q: invalid index %q", s, inner)}
				}
				segs = append(segs, Index(idx))
			}
			i += end + 1
			wantDot = true
		default:
			if wantDot {
				return Path{}, Issue{Code: CodeParseError, Message: fmt.Sprintf("path %q: expected '.' or '[' at offset %d", s, i)}
			}
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			segs = append(segs, Property(s[i:j]))
			i = j
			wantDot = true
		}
	}
	if !wantDot {
		return Path{}, Issue{Code: CodeParseError, Message: fmt.Sprintf("path %q: trailing separator", s)}
	}
	return Path{segs: segs}, nil
}

// MustParsePath is ParsePath that panics on error. Intended for literals.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the canonical textual form. The root path renders as "".
func (p Path) String() string {
	b := &strings.Builder{}
	for i, seg := range p.segs {
		if seg.Kind == SegmentProperty && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// IsRoot reports whether p addresses the tree root.
func (p Path) IsRoot() bool { return len(p.segs) == 0 }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segs) }

// At returns the i-th segment.
func (p Path) At(i int) Segment { return p.segs[i] }

// Segments returns a copy of the segment list.
func (p Path) Segments() []Segment { return append([]Segment(nil), p.segs...) }

// Append returns a new Path with the given segments appended.
func (p Path) Append(segs ...Segment) Path {
	out := make([]Segment, 0, len(p.segs)+len(segs))
	out = append(out, p.segs...)
	out = append(out, segs...)
	return Path{segs: out}
}

// Join returns base + other as an absolute path.
func (p Path) Join(other Path) Path { return p.Append(other.segs...) }

// Parent returns the path without its last segment. The root's parent is root.
func (p Path) Parent() Path {
	if len(p.segs) == 0 {
		return Path{}
	}
	return Path{segs: append([]Segment(nil), p.segs[:len(p.segs)-1]...)}
}

// Last returns the final segment, if any.
func (p Path) Last() (Segment, bool) {
	if len(p.segs) == 0 {
		return Segment{}, false
	}
	return p.segs[len(p.segs)-1], true
}

// RelativeTo strips base from the front of p, turning an absolute path into
// one resolvable from the node base addresses. The second result reports
// whether base is a prefix of p.
func (p Path) RelativeTo(base Path) (Path, bool) {
	if len(base.segs) > len(p.segs) {
		return Path{}, false
	}
	for i, seg := range base.segs {
		if p.segs[i] != seg {
			return Path{}, false
		}
	}
	return Path{segs: append([]Segment(nil), p.segs[len(base.segs):]...)}, true
}

// HasBroadcast reports whether any segment is the "[]" array marker.
func (p Path) HasBroadcast() bool {
	for _, seg := range p.segs {
		if seg.Kind == SegmentAll {
			return true
		}
	}
	return false
}
