// Package template parses externally supplied templates into token streams
// and renders them against the IR through scope-aware variable resolution.
// Unresolved variables never fail a render; the configured fallback policy
// supplies a sentinel, because templates may reference optional fields.
package template

import (
	"strings"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
)

// TokenKind identifies a template token.
type TokenKind int

const (
	TokenLiteral  TokenKind = iota
	TokenVariable           // {path.to.value}
	TokenItems              // {@items}
)

// Token is one element of the parsed template stream.
type Token struct {
	Kind TokenKind
	Text string           // literal text, or the raw variable reference
	Path frontmatter.Path // set for TokenVariable
}

// Template is an immutable parsed template.
type Template struct {
	tokens   []Token
	vars     []string
	hasItems bool
}

// itemsMarker is the placeholder replaced by the spliced items rendering.
const itemsMarker = "@items"

// Parse tokenizes a template. "{name.path}" is a variable reference,
// "{@items}" is the items marker, and any braced run that does not parse as
// a path stays literal text.
func Parse(text string) Template {
	var (
		tokens []Token
		vars   []string
		has    bool
	)
	for len(text) > 0 {
		open := strings.IndexByte(text, '{')
		if open < 0 {
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: text})
			break
		}
		if open > 0 {
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: text[:open]})
			text = text[open:]
			continue
		}
		end := strings.IndexByte(text, '}')
		if end < 0 {
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: text})
			break
		}
		ref := text[1:end]
		switch {
		case ref == itemsMarker:
			tokens = append(tokens, Token{Kind: TokenItems, Text: ref})
			has = true
		default:
			p, err := frontmatter.ParsePath(ref)
			if err != nil || ref == "" || strings.ContainsAny(ref, " \t\n") {
				tokens = append(tokens, Token{Kind: TokenLiteral, Text: text[:end+1]})
			} else {
				tokens = append(tokens, Token{Kind: TokenVariable, Text: ref, Path: p})
				vars = append(vars, ref)
			}
		}
		text = text[end+1:]
	}
	return Template{tokens: tokens, vars: vars, hasItems: has}
}

// Tokens returns a copy of the token stream.
func (t Template) Tokens() []Token { return append([]Token(nil), t.tokens...) }

// Variables lists the referenced variable names in order of appearance.
func (t Template) Variables() []string { return append([]string(nil), t.vars...) }

// HasItems reports whether the template contains the {@items} marker.
func (t Template) HasItems() bool { return t.hasItems }
