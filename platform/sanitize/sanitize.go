// Package sanitize provides text sanitization utilities to prevent XSS attacks.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes free text such as descriptions and motives.
func Text(s string) string {
	return StripHTML(s)
}

// Line sanitizes a single-line value (names, zones, contacts) and collapses whitespace.
func Line(s string) string {
	return whitespaceRegex.ReplaceAllString(StripHTML(s), " ")
}

// Lower sanitizes a single-line value and lower-cases it. Used for emails and applicant names.
func Lower(s string) string {
	return strings.ToLower(Line(s))
}

// TextPtr is a helper for optional string pointers. Blank input becomes nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Line(*s)
	if result == "" {
		return nil
	}
	return &result
}
