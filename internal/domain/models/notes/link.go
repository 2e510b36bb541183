package notes

import (
	"time"
)

// LinkTargetKind is the closed set of things a reference can point at.
type LinkTargetKind string

const (
	// KindNote is a [[Title]] wikilink target.
	KindNote LinkTargetKind = "note"

	// KindCharacter and KindLocation are @Name mention targets from the
	// campaign's external entity directory.
	KindCharacter LinkTargetKind = "character"
	KindLocation  LinkTargetKind = "location"

	// KindMention marks an @Name that matched no entity of any kind at
	// save time: a dangling mention with no concrete kind yet.
	KindMention LinkTargetKind = "mention"
)

// Valid reports whether k is one of the known target kinds.
func (k LinkTargetKind) Valid() bool {
	switch k {
	case KindNote, KindCharacter, KindLocation, KindMention:
		return true
	}
	return false
}

// Link is one stored edge of the reference graph: a note's body referenced
// something by text. TargetID is nil when the referenced title/name did
// not resolve at save time (a dangling link). The full set for a source
// note is recomputed and replaced on every successful save.
type Link struct {
	ID           string         `json:"id" db:"id"`
	SourceNoteID string         `json:"source_note_id" db:"source_note_id"`
	CampaignID   string         `json:"campaign_id" db:"campaign_id"`
	Kind         LinkTargetKind `json:"kind" db:"kind"`
	TargetID     *string        `json:"target_id,omitempty" db:"target_id"`
	Label        string         `json:"label" db:"label"` // the literal referenced text
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// Dangling reports whether the link failed to resolve at save time.
func (l *Link) Dangling() bool {
	return l.TargetID == nil
}
