package atrium

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ScopeMarker returns the attribute that identifies the named Unit's own
// elements in composed markup. Compose stamps it on every element the Unit's
// template renders, and Scope rewrites the Unit's stylesheet to require it,
// which is what keeps one Unit's styles off another Unit's elements.
//
// The marker is derived from the Unit's name alone, so the same Unit gets
// the same marker in every composition, in every process.
func ScopeMarker(name string) string {
	sum := sha256.Sum256([]byte(name))
	return "data-atrium-" + hex.EncodeToString(sum[:4])
}

// Scope rewrites the passed ruleset so its selectors only match elements
// carrying the passed Unit's scope marker. Every compound in every selector
// gets the marker as an extra attribute requirement, so even descendant and
// sibling matches can't reach elements the Unit didn't render.
//
// Rules inside conditional at-rules like @media and @supports are rewritten
// the same way. At-rules whose blocks hold declarations instead of
// selectors, like @keyframes and @font-face, pass through untouched, as do
// declarations, comments, and anything else that isn't a selector.
func Scope(ctx context.Context, unit Unit, ruleset string) template.CSS {
	marker := "[" + ScopeMarker(unit.Name(ctx)) + "]"
	return template.CSS(scopeRuleset(ruleset, marker)) // #nosec G203
}

// conditionalAtRules are the at-rules whose blocks contain style rules that
// need scoping themselves. Every other at-rule block holds declarations or
// nested structures with no element selectors in them.
var conditionalAtRules = map[string]struct{}{
	"media":     {},
	"supports":  {},
	"container": {},
	"layer":     {},
	"scope":     {},
}

func scopeRuleset(css, marker string) string {
	var out strings.Builder
	out.Grow(len(css))
	pos := 0
	for pos < len(css) {
		switch {
		case isCSSSpace(css[pos]):
			out.WriteByte(css[pos])
			pos++
		case strings.HasPrefix(css[pos:], "/*"):
			end := skipComment(css, pos)
			out.WriteString(css[pos:end])
			pos = end
		case css[pos] == '@':
			pos = scopeAtRule(&out, css, pos, marker)
		default:
			pos = scopeStyleRule(&out, css, pos, marker)
		}
	}
	return out.String()
}

// scopeAtRule consumes the at-rule starting at pos, which must index the
// '@'. Statement at-rules, like @import and @charset, pass through whole.
// Conditional group rules get their blocks rewritten recursively; all other
// block at-rules pass through whole.
func scopeAtRule(out *strings.Builder, css string, pos int, marker string) int {
	nameEnd := pos + 1
	for nameEnd < len(css) && isIdentByte(css[nameEnd]) {
		nameEnd++
	}
	name := css[pos+1 : nameEnd]
	var inSingle, inDouble bool
	parens := 0
	for i := nameEnd; i < len(css); i++ {
		ch := css[i]
		switch {
		case inSingle:
			if ch == '\\' {
				i++
			} else if ch == '\'' {
				inSingle = false
			}
		case inDouble:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inDouble = false
			}
		case ch == '\'':
			inSingle = true
		case ch == '"':
			inDouble = true
		case strings.HasPrefix(css[i:], "/*"):
			i = skipComment(css, i) - 1
		case ch == '(':
			parens++
		case ch == ')':
			parens--
		case parens == 0 && ch == ';':
			out.WriteString(css[pos : i+1])
			return i + 1
		case parens == 0 && ch == '{':
			closer := matchBrace(css, i)
			if closer < 0 {
				out.WriteString(css[pos:])
				return len(css)
			}
			if _, ok := conditionalAtRules[name]; ok {
				out.WriteString(css[pos : i+1])
				out.WriteString(scopeRuleset(css[i+1:closer], marker))
				out.WriteByte('}')
			} else {
				out.WriteString(css[pos : closer+1])
			}
			return closer + 1
		}
	}
	out.WriteString(css[pos:])
	return len(css)
}

// scopeStyleRule consumes the style rule starting at pos, rewriting its
// selector group and passing its declaration block through untouched.
func scopeStyleRule(out *strings.Builder, css string, pos int, marker string) int {
	var inSingle, inDouble bool
	for i := pos; i < len(css); i++ {
		ch := css[i]
		switch {
		case inSingle:
			if ch == '\\' {
				i++
			} else if ch == '\'' {
				inSingle = false
			}
		case inDouble:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inDouble = false
			}
		case ch == '\'':
			inSingle = true
		case ch == '"':
			inDouble = true
		case strings.HasPrefix(css[i:], "/*"):
			i = skipComment(css, i) - 1
		case ch == '{':
			closer := matchBrace(css, i)
			if closer < 0 {
				out.WriteString(css[pos:])
				return len(css)
			}
			out.WriteString(scopeSelectors(css[pos:i], marker))
			out.WriteString(css[i : closer+1])
			return closer + 1
		case ch == '}':
			// a stray closer outside any block; pass it through
			out.WriteString(css[pos : i+1])
			return i + 1
		}
	}
	out.WriteString(css[pos:])
	return len(css)
}

// scopeSelectors rewrites a selector group, constraining each selector in
// it. Comments inside the group are dropped.
func scopeSelectors(group, marker string) string {
	parts := splitSelectors(group)
	for pos, part := range parts {
		parts[pos] = scopeSelector(part, marker)
	}
	return strings.Join(parts, ",")
}

// splitSelectors splits a selector group on the commas between selectors,
// leaving commas inside brackets, parentheses, and strings alone.
func splitSelectors(group string) []string {
	var parts []string
	var current strings.Builder
	var inSingle, inDouble bool
	depth := 0
	for i := 0; i < len(group); i++ {
		ch := group[i]
		switch {
		case inSingle:
			if ch == '\\' && i+1 < len(group) {
				current.WriteByte(ch)
				i++
				ch = group[i]
			} else if ch == '\'' {
				inSingle = false
			}
			current.WriteByte(ch)
		case inDouble:
			if ch == '\\' && i+1 < len(group) {
				current.WriteByte(ch)
				i++
				ch = group[i]
			} else if ch == '"' {
				inDouble = false
			}
			current.WriteByte(ch)
		case ch == '\\':
			current.WriteByte(ch)
			if i+1 < len(group) {
				i++
				current.WriteByte(group[i])
			}
		case ch == '\'':
			inSingle = true
			current.WriteByte(ch)
		case ch == '"':
			inDouble = true
			current.WriteByte(ch)
		case strings.HasPrefix(group[i:], "/*"):
			i = skipComment(group, i) - 1
		case ch == '(' || ch == '[':
			depth++
			current.WriteByte(ch)
		case ch == ')' || ch == ']':
			depth--
			current.WriteByte(ch)
		case ch == ',' && depth == 0:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	parts = append(parts, current.String())
	return parts
}

// scopeSelector rewrites one complex selector, constraining every compound
// in it so combinator matches can't escape the unit's own markup either.
func scopeSelector(selector, marker string) string {
	var out strings.Builder
	var compound strings.Builder
	var inSingle, inDouble bool
	depth := 0
	flush := func() {
		if compound.Len() == 0 {
			return
		}
		out.WriteString(rewriteCompound(compound.String(), marker))
		compound.Reset()
	}
	for i := 0; i < len(selector); i++ {
		ch := selector[i]
		switch {
		case inSingle:
			if ch == '\\' && i+1 < len(selector) {
				compound.WriteByte(ch)
				i++
				ch = selector[i]
			} else if ch == '\'' {
				inSingle = false
			}
			compound.WriteByte(ch)
		case inDouble:
			if ch == '\\' && i+1 < len(selector) {
				compound.WriteByte(ch)
				i++
				ch = selector[i]
			} else if ch == '"' {
				inDouble = false
			}
			compound.WriteByte(ch)
		case ch == '\\':
			compound.WriteByte(ch)
			if i+1 < len(selector) {
				i++
				compound.WriteByte(selector[i])
			}
		case ch == '\'':
			inSingle = true
			compound.WriteByte(ch)
		case ch == '"':
			inDouble = true
			compound.WriteByte(ch)
		case ch == '(' || ch == '[':
			depth++
			compound.WriteByte(ch)
		case ch == ')' || ch == ']':
			depth--
			compound.WriteByte(ch)
		case depth == 0 && (isCSSSpace(ch) || ch == '>' || ch == '+' || ch == '~'):
			flush()
			out.WriteByte(ch)
		default:
			compound.WriteByte(ch)
		}
	}
	flush()
	return out.String()
}

// rewriteCompound constrains one compound selector with the marker. The
// marker lands just before the compound's first pseudo-class or
// pseudo-element, so compounds like a::before stay valid, and at the end
// otherwise. A bare pseudo-class like :hover scopes to the marker itself.
func rewriteCompound(compound, marker string) string {
	var inSingle, inDouble bool
	depth := 0
	for i := 0; i < len(compound); i++ {
		ch := compound[i]
		switch {
		case inSingle:
			if ch == '\\' {
				i++
			} else if ch == '\'' {
				inSingle = false
			}
		case inDouble:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inDouble = false
			}
		case ch == '\\':
			i++
		case ch == '\'':
			inSingle = true
		case ch == '"':
			inDouble = true
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
		case depth == 0 && ch == ':':
			return compound[:i] + marker + compound[i:]
		}
	}
	return compound + marker
}

// matchBrace returns the index of the '}' closing the block opened at pos,
// which must index a '{'. It returns -1 if the block never closes.
func matchBrace(css string, pos int) int {
	depth := 0
	var inSingle, inDouble bool
	for i := pos; i < len(css); i++ {
		ch := css[i]
		switch {
		case inSingle:
			if ch == '\\' {
				i++
			} else if ch == '\'' {
				inSingle = false
			}
		case inDouble:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inDouble = false
			}
		case ch == '\'':
			inSingle = true
		case ch == '"':
			inDouble = true
		case strings.HasPrefix(css[i:], "/*"):
			i = skipComment(css, i) - 1
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipComment returns the index just past the comment starting at pos, which
// must index the opening "/*", or the end of the input if the comment never
// closes.
func skipComment(css string, pos int) int {
	end := strings.Index(css[pos+2:], "*/")
	if end < 0 {
		return len(css)
	}
	return pos + 2 + end + 2
}

func isCSSSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isIdentByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_'
}

// tagMarkup stamps the marker attribute on every element start tag in the
// passed markup. Text, comments, and everything else pass through as they
// were tokenized; in particular, slot placeholder comments survive so slot
// content substituted afterwards is never stamped with the marker.
func tagMarkup(markup, marker string) (string, error) {
	var out strings.Builder
	out.Grow(len(markup))
	tokens := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch tokens.Next() {
		case html.ErrorToken:
			err := tokens.Err()
			if errors.Is(err, io.EOF) {
				return out.String(), nil
			}
			return "", fmt.Errorf("error tokenizing markup: %w", err)
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokens.Token()
			token.Attr = append(token.Attr, html.Attribute{Key: marker})
			out.WriteString(token.String())
		default:
			out.Write(tokens.Raw())
		}
	}
}
