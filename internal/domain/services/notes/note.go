package notes

import (
	"context"

	"lorekeeper/internal/domain/models/notes"
)

// NoteService is the save entrypoint and the read surfaces built on top
// of it. Manual saves and auto-saves share one Save path and therefore
// one set of conflict semantics.
type NoteService interface {
	// Save runs one save attempt: validate, write (insert or
	// compare-and-swap), recompute links, snapshot per policy. The
	// returned version is the caller's new expected-version baseline.
	Save(ctx context.Context, req *SaveNoteRequest) (*SaveResult, error)

	// Get retrieves a live note
	Get(ctx context.Context, noteID string) (*notes.Note, error)

	// Delete tombstones a note. Links and revisions remain stored, but
	// the note disappears from resolution, backlinks, and the graph.
	Delete(ctx context.Context, noteID string) error

	// ListRevisions returns revision history newest-first. limit <= 0
	// applies the default page size.
	ListRevisions(ctx context.Context, noteID string, limit int) ([]notes.Revision, error)

	// GetRevision retrieves one snapshot
	GetRevision(ctx context.Context, noteID string, version int) (*notes.Revision, error)

	// ForwardLinks returns the stored links originating from a note
	ForwardLinks(ctx context.Context, noteID string) ([]notes.Link, error)

	// Backlinks returns the live notes referencing this one, deduplicated
	// by source, each with a short excerpt around the reference
	Backlinks(ctx context.Context, noteID string) ([]notes.Backlink, error)

	// BuildGraph assembles the renderable node/edge projection for a
	// campaign. Read-only and eventually consistent.
	BuildGraph(ctx context.Context, campaignID string) (*notes.Graph, error)
}

// Draft is the in-progress edit state of one open note: the fields a
// save writes, detached from any stored version.
type Draft struct {
	Title      string
	Body       string
	Tags       []string
	Visibility notes.Visibility
	Folder     *string
	SessionID  *string
}

// SaveNoteRequest is one save attempt. NoteID nil means create; then
// ExpectedVersion is ignored and the stored version starts at 1.
type SaveNoteRequest struct {
	NoteID          *string
	CampaignID      string
	AuthorID        string
	ExpectedVersion int
	Draft           Draft
	IsAutoSave      bool
}

// SaveResult reports the outcome of a committed (or skipped) save.
type SaveResult struct {
	NoteID  string
	Version int

	// Skipped is set when an auto-save with an empty title deliberately
	// did nothing. Not an error: background saves never interrupt the
	// user with a blocking validation failure.
	Skipped bool

	// LinkWarning carries a *domain.LinkIndexError when the note write
	// committed but the link recompute failed. Nil on clean saves.
	LinkWarning error
}

// StageRevision copies a revision's fields into a fresh draft. Pure
// staging: nothing is written and no version is bumped. The user must
// explicitly save the draft afterward, at which point ordinary
// optimistic-concurrency rules apply.
func StageRevision(rev *notes.Revision) Draft {
	tags := make([]string, len(rev.Tags))
	copy(tags, rev.Tags)
	return Draft{
		Title:      rev.Title,
		Body:       rev.Body,
		Tags:       tags,
		Visibility: rev.Visibility,
		Folder:     rev.Folder,
	}
}
