package notes

import (
	"reflect"
	"testing"
)

func TestParseRefs(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantWikilinks []string
		wantMentions  []string
	}{
		{
			name:          "wikilinks and mentions with duplicates collapsed",
			text:          "See [[Alpha]] and @Bob and [[Alpha]] again",
			wantWikilinks: []string{"Alpha"},
			wantMentions:  []string{"Bob"},
		},
		{
			name: "empty text",
			text: "",
		},
		{
			name: "plain text without references",
			text: "The party rested at the inn.",
		},
		{
			name:          "multiple distinct wikilinks keep first-occurrence order",
			text:          "[[Beta]] then [[Alpha]] then [[Beta]]",
			wantWikilinks: []string{"Beta", "Alpha"},
		},
		{
			name:          "title with spaces and punctuation",
			text:          "visit [[The Sunken Temple, Level 2]]",
			wantWikilinks: []string{"The Sunken Temple, Level 2"},
		},
		{
			name: "newline inside brackets invalidates the candidate",
			text: "[[Broken\nTitle]]",
		},
		{
			name: "empty brackets are not a wikilink",
			text: "[[]]",
		},
		{
			name:          "unclosed brackets are ignored",
			text:          "[[Dangling and [[Closed]]",
			wantWikilinks: []string{"Dangling and [[Closed"},
		},
		{
			name:         "mention terminated by whitespace",
			text:         "ask @Bob about the map",
			wantMentions: []string{"Bob"},
		},
		{
			name:         "mention terminated by newline",
			text:         "ask @Bob\nabout the map",
			wantMentions: []string{"Bob"},
		},
		{
			name:         "mention keeps trailing punctuation",
			text:         "thanks, @Bob!",
			wantMentions: []string{"Bob!"},
		},
		{
			name:         "mention at end of text",
			text:         "handled by @Greta",
			wantMentions: []string{"Greta"},
		},
		{
			name: "bare at-sign is not a mention",
			text: "meet @ noon",
		},
		{
			name:          "bracket-enclosed text is not scanned for mentions",
			text:          "[[@Keth's Lair]] and @Keth",
			wantWikilinks: []string{"@Keth's Lair"},
			wantMentions:  []string{"Keth"},
		},
		{
			name:         "duplicate mentions collapse",
			text:         "@Bob met @Alice then @Bob left",
			wantMentions: []string{"Bob", "Alice"},
		},
		{
			name:         "unicode mention",
			text:         "spoke with @Ægir yesterday",
			wantMentions: []string{"Ægir"},
		},
		{
			name:          "adjacent grammars",
			text:          "@Bob[[Alpha]]",
			wantWikilinks: []string{"Alpha"},
			wantMentions:  []string{"Bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRefs(tt.text)
			if !reflect.DeepEqual(got.Wikilinks, tt.wantWikilinks) {
				t.Errorf("wikilinks = %v, want %v", got.Wikilinks, tt.wantWikilinks)
			}
			if !reflect.DeepEqual(got.Mentions, tt.wantMentions) {
				t.Errorf("mentions = %v, want %v", got.Mentions, tt.wantMentions)
			}
		})
	}
}

func TestParseRefs_Idempotent(t *testing.T) {
	text := "See [[Alpha]] and @Bob and [[Gamma]]"
	first := ParseRefs(text)
	second := ParseRefs(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("parse not idempotent: %v vs %v", first, second)
	}
}
