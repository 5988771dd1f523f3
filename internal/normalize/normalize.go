// Package normalize cleans user-supplied text before it is validated or stored.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	htmlTagPattern  = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Text trims surrounding whitespace, drops NUL bytes and puts the string in
// NFC form so equal-looking input compares equal.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
	return norm.NFC.String(strings.TrimSpace(s))
}

// Label normalizes a lookup label ("  Science  Fiction " -> "Science Fiction").
// Inner whitespace runs collapse to a single space; case is preserved because
// lookups compare labels exactly.
func Label(s string) string {
	return whitespaceRun.ReplaceAllString(Text(s), " ")
}

// Email trims and case-folds an address for storage and lookup.
func Email(s string) string {
	return cases.Fold().String(Text(s))
}

// Fold case-folds s for case-insensitive comparison ("Straße" -> "strasse").
// A Caser is stateful, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Slug converts s to a URL-safe slug.
// "Science Fiction" -> "science-fiction", "Café Noir" -> "cafe-noir".
func Slug(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// ContainsHTML reports whether s appears to carry HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Description normalizes free-form description text. Descriptions pasted as
// HTML are converted to Markdown; plain text passes through Text unchanged.
func Description(s string) string {
	s = Text(s)
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
