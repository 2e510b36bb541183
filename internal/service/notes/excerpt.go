package notes

import (
	"strings"
	"unicode/utf8"
)

// excerptAround returns a bounded window of text around the first
// occurrence of token, for backlink display. When the token is absent
// (the reference text changed since the link row was written, e.g. the
// target was renamed) the opening of the body is returned instead.
func excerptAround(body, token string, radius int) string {
	idx := strings.Index(body, token)
	if idx < 0 {
		return clipRunes(body, 2*radius)
	}

	start := idx - radius
	if start < 0 {
		start = 0
	}
	// Back off to a rune boundary
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}

	end := idx + len(token) + radius
	if end > len(body) {
		end = len(body)
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}

	excerpt := body[start:end]
	if start > 0 {
		excerpt = "…" + excerpt
	}
	if end < len(body) {
		excerpt = excerpt + "…"
	}
	return excerpt
}

// clipRunes truncates s to at most n bytes on a rune boundary, with a
// trailing ellipsis when anything was cut.
func clipRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
