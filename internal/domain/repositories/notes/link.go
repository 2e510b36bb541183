package notes

import (
	"context"

	"lorekeeper/internal/domain/models/notes"
)

// LinkRepository maintains the derived edge set of the reference graph.
// Link rows for a source note are always replaced wholesale, never
// patched, so a failed replacement self-heals on the next save.
type LinkRepository interface {
	// ReplaceForNote atomically drops every stored link whose source is
	// noteID and inserts the new set
	ReplaceForNote(ctx context.Context, noteID string, links []notes.Link) error

	// ForwardLinks returns the stored links originating from a note
	ForwardLinks(ctx context.Context, noteID string) ([]notes.Link, error)

	// BacklinkSources returns the live notes (title and body included)
	// holding a wikilink row that targets noteID
	BacklinkSources(ctx context.Context, noteID string) ([]notes.Note, error)

	// ListByCampaign returns every stored link in a campaign whose
	// source note is live. Feed for the graph projection.
	ListByCampaign(ctx context.Context, campaignID string) ([]notes.Link, error)
}
