package notes

import (
	"time"
)

// Revision is an immutable snapshot of a note at a given version. It is
// the audit trail and the undo source; revisions are never mutated or
// deleted by normal operation, and survive the note's tombstone.
type Revision struct {
	NoteID     string     `json:"note_id" db:"note_id"`
	Version    int        `json:"version" db:"version"`
	Title      string     `json:"title" db:"title"`
	Body       string     `json:"body" db:"body"`
	Tags       []string   `json:"tags" db:"tags"`
	Visibility Visibility `json:"visibility" db:"visibility"`
	Folder     *string    `json:"folder,omitempty" db:"folder"`
	SavedBy    string     `json:"saved_by" db:"saved_by"`
	SavedAt    time.Time  `json:"saved_at" db:"saved_at"`
}
