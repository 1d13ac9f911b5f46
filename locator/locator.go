// CLAUDE:SUMMARY Parses the human locator grammar (role/text/testid/css) into an engine query.
// Package locator resolves human-authored locator expressions into the
// query form the browser engine evaluates.
//
// Accepted grammar:
//
//	role=button[name="Sign in"]   role plus optional accessible name
//	text="Checkout"               elements whose visible text matches
//	testid=submit-btn             test-id attribute lookup
//	css=nav > a.active            explicit CSS passthrough
//	#login-form                   bare CSS (no scheme prefix)
//
// Resolution is deterministic: the same expression and test-id attribute
// always produce the same query. Expressions outside the grammar fail with
// a *ParseError.
package locator

import (
	"fmt"
	"strings"
)

// DefaultTestIDAttribute is used when the caller does not override the
// test-id attribute convention.
const DefaultTestIDAttribute = "data-testid"

// Query is the engine-native form of a locator: a CSS selector plus an
// optional accessible-name filter applied by the engine after the CSS
// match. InnermostOnly keeps only matches with no matching descendant
// (text queries would otherwise match every ancestor carrying the same
// visible text).
type Query struct {
	CSS           string
	Name          string // normalized via NormalizeName; empty = no filter
	InnermostOnly bool
}

// ParseError reports a locator expression outside the accepted grammar.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("locator: cannot parse %q: %s", e.Input, e.Reason)
}

// roleSelectors maps ARIA roles to the CSS covering their implicit and
// explicit carriers. Roles absent from the table match explicit
// role attributes only.
var roleSelectors = map[string]string{
	"button":     `button, input[type="button"], input[type="submit"], input[type="reset"], [role="button"]`,
	"link":       `a[href], [role="link"]`,
	"textbox":    `input:not([type]), input[type="text"], input[type="email"], input[type="password"], input[type="search"], input[type="tel"], input[type="url"], textarea, [role="textbox"]`,
	"checkbox":   `input[type="checkbox"], [role="checkbox"]`,
	"radio":      `input[type="radio"], [role="radio"]`,
	"combobox":   `select, [role="combobox"]`,
	"option":     `option, [role="option"]`,
	"searchbox":  `input[type="search"], [role="searchbox"]`,
	"slider":     `input[type="range"], [role="slider"]`,
	"spinbutton": `input[type="number"], [role="spinbutton"]`,
	"heading":    `h1, h2, h3, h4, h5, h6, [role="heading"]`,
	"img":        `img, [role="img"]`,
	"list":       `ul, ol, [role="list"]`,
	"listitem":   `li, [role="listitem"]`,
	"table":      `table, [role="table"]`,
	"row":        `tr, [role="row"]`,
	"cell":       `td, th, [role="cell"]`,
	"navigation": `nav, [role="navigation"]`,
	"main":       `main, [role="main"]`,
	"banner":     `header, [role="banner"]`,
	"dialog":     `dialog, [role="dialog"]`,
}

// Resolve translates a locator expression into an engine Query.
// testIDAttr selects the attribute used by testid= expressions; empty
// means DefaultTestIDAttribute.
func Resolve(expr, testIDAttr string) (Query, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Query{}, &ParseError{Input: expr, Reason: "empty expression"}
	}
	if testIDAttr == "" {
		testIDAttr = DefaultTestIDAttribute
	}

	scheme, rest, ok := splitScheme(trimmed)
	if !ok {
		// No scheme prefix: bare CSS passthrough.
		return Query{CSS: trimmed}, nil
	}

	switch scheme {
	case "css":
		if rest == "" {
			return Query{}, &ParseError{Input: expr, Reason: "empty css selector"}
		}
		return Query{CSS: rest}, nil

	case "testid":
		value := unquote(rest)
		if value == "" {
			return Query{}, &ParseError{Input: expr, Reason: "empty test id"}
		}
		return Query{CSS: fmt.Sprintf("[%s=%q]", testIDAttr, value)}, nil

	case "text":
		value := unquote(rest)
		if value == "" {
			return Query{}, &ParseError{Input: expr, Reason: "empty text"}
		}
		return Query{CSS: "*", Name: NormalizeName(value), InnermostOnly: true}, nil

	case "role":
		return resolveRole(expr, rest)

	default:
		return Query{}, &ParseError{Input: expr, Reason: fmt.Sprintf("unsupported scheme %q", scheme)}
	}
}

func resolveRole(expr, rest string) (Query, error) {
	role := rest
	name := ""

	if i := strings.IndexByte(rest, '['); i >= 0 {
		role = rest[:i]
		opts := rest[i:]
		if !strings.HasSuffix(opts, "]") {
			return Query{}, &ParseError{Input: expr, Reason: "unterminated option bracket"}
		}
		body := opts[1 : len(opts)-1]
		key, value, found := strings.Cut(body, "=")
		if !found || key != "name" {
			return Query{}, &ParseError{Input: expr, Reason: "only [name=...] options are supported"}
		}
		name = unquote(value)
		if name == "" {
			return Query{}, &ParseError{Input: expr, Reason: "empty name option"}
		}
	}

	role = strings.TrimSpace(role)
	if role == "" {
		return Query{}, &ParseError{Input: expr, Reason: "empty role"}
	}
	for _, c := range role {
		if c < 'a' || c > 'z' {
			return Query{}, &ParseError{Input: expr, Reason: fmt.Sprintf("invalid role %q", role)}
		}
	}

	css, ok := roleSelectors[role]
	if !ok {
		css = fmt.Sprintf("[role=%q]", role)
	}
	return Query{CSS: css, Name: NormalizeName(name)}, nil
}

// splitScheme detects a leading "<ident>=" prefix. Identifiers are ASCII
// letters only, so CSS like "input[type=text]" is never mistaken for a
// scheme.
func splitScheme(s string) (scheme, rest string, ok bool) {
	for i, c := range s {
		if c == '=' {
			if i == 0 {
				return "", "", false
			}
			return s[:i], s[i+1:], true
		}
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return "", "", false
		}
	}
	return "", "", false
}

// unquote strips one level of matching single or double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// NormalizeName canonicalizes an accessible name for comparison:
// whitespace runs collapse to single spaces, surrounding space is
// trimmed, and the result is lowercased. The engine applies the same
// normalization to candidate element names.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
