package notes

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// ParsedRefs holds the cross-references extracted from one note body.
// Both lists carry distinct tokens in first-occurrence order; repeating
// [[Alpha]] ten times is still one logical reference.
type ParsedRefs struct {
	Wikilinks []string // [[Title]] targets
	Mentions  []string // @Name targets
}

// wikilinkPattern matches [[Title]]: two opening brackets, one or more
// characters that are neither ']' nor a newline, two closing brackets.
// A newline inside the brackets invalidates the candidate.
var wikilinkPattern = regexp.MustCompile(`\[\[([^\]\n]+)\]\]`)

// ParseRefs extracts wikilink and mention references from raw text.
// Deterministic, side-effect-free, idempotent. The two passes are
// independent: a span claimed by a wikilink is not re-scanned for
// mentions, and a mention run stops at a wikilink boundary.
func ParseRefs(text string) ParsedRefs {
	refs := ParsedRefs{}

	type span struct{ start, end int }
	matches := wikilinkPattern.FindAllStringSubmatchIndex(text, -1)
	spans := make([]span, 0, len(matches))
	seenTitles := make(map[string]bool)
	for _, m := range matches {
		spans = append(spans, span{m[0], m[1]})
		title := text[m[2]:m[3]]
		if !seenTitles[title] {
			seenTitles[title] = true
			refs.Wikilinks = append(refs.Wikilinks, title)
		}
	}

	// inSpan reports whether byte offset i falls inside a wikilink and,
	// if so, where that wikilink ends.
	inSpan := func(i int) (int, bool) {
		for _, s := range spans {
			if i >= s.start && i < s.end {
				return s.end, true
			}
		}
		return 0, false
	}

	seenNames := make(map[string]bool)
	for i := 0; i < len(text); {
		if end, ok := inSpan(i); ok {
			i = end
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		if r != '@' {
			i += size
			continue
		}

		// A mention is '@' followed by a maximal run of non-whitespace
		// characters. No escaping mechanism exists.
		j := i + size
		for j < len(text) {
			if _, ok := inSpan(j); ok {
				break
			}
			r2, size2 := utf8.DecodeRuneInString(text[j:])
			if unicode.IsSpace(r2) {
				break
			}
			j += size2
		}

		name := text[i+size : j]
		if name != "" && !seenNames[name] {
			seenNames[name] = true
			refs.Mentions = append(refs.Mentions, name)
		}

		if j > i+size {
			i = j
		} else {
			i += size
		}
	}

	return refs
}
