package notes

import (
	"context"

	"lorekeeper/internal/domain/models/notes"
)

// RevisionRepository is the append-only snapshot log. No update or
// delete operations exist; revisions outlive their note's tombstone.
type RevisionRepository interface {
	// Append stores one immutable snapshot. The version must be
	// strictly greater than every version already stored for the note;
	// otherwise domain.ErrRevisionOrder is returned and nothing is
	// written.
	Append(ctx context.Context, rev *notes.Revision) error

	// ListByNote returns up to limit revisions for a note, newest first
	ListByNote(ctx context.Context, noteID string, limit int) ([]notes.Revision, error)

	// Get retrieves a single revision by note and version
	Get(ctx context.Context, noteID string, version int) (*notes.Revision, error)
}
