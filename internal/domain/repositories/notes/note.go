package notes

import (
	"context"

	"lorekeeper/internal/domain/models/notes"
)

// NoteRepository defines data access operations for live notes. The
// tombstone excludes a note from lookups, scans, and listings the
// moment it is set.
type NoteRepository interface {
	// Create inserts a new note. The caller supplies the ID and
	// Version (always 1 on create).
	Create(ctx context.Context, note *notes.Note) error

	// GetByID retrieves a live note by ID
	GetByID(ctx context.Context, id string) (*notes.Note, error)

	// GetByTitle retrieves a live note by exact, case-sensitive title
	// within a campaign
	GetByTitle(ctx context.Context, campaignID, title string) (*notes.Note, error)

	// UpdateVersioned performs the compare-and-swap write: fields are
	// stored and the version bumped to expectedVersion+1 only when the
	// stored version still equals expectedVersion. A stale version
	// yields *domain.ConflictError and mutates nothing.
	UpdateVersioned(ctx context.Context, note *notes.Note, expectedVersion int) error

	// SoftDelete sets the tombstone timestamp. Links and revisions are
	// not cascaded.
	SoftDelete(ctx context.Context, id string) error

	// ListByCampaign retrieves all live note metadata in a campaign
	// (no body), newest-updated first
	ListByCampaign(ctx context.Context, campaignID string) ([]notes.Note, error)

	// SearchBodyToken retrieves live notes in a campaign whose body
	// contains the literal token. Used as the text-scan fallback of
	// backlink lookup; bodies are included in the result.
	SearchBodyToken(ctx context.Context, campaignID, token string) ([]notes.Note, error)
}
