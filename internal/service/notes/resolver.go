package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lorekeeper/internal/domain"
	models "lorekeeper/internal/domain/models/notes"
	notesRepo "lorekeeper/internal/domain/repositories/notes"

	"github.com/google/uuid"
)

// Resolver maps parsed reference tokens onto stable identifiers against
// the live corpus. Resolution runs fresh on every save - never cached
// across saves - because referenced titles can be renamed or tombstoned
// at any time and a stale positive would silently corrupt the graph.
type Resolver struct {
	noteRepo notesRepo.NoteRepository
	entities notesRepo.EntityDirectory
}

// NewResolver creates a new resolver
func NewResolver(noteRepo notesRepo.NoteRepository, entities notesRepo.EntityDirectory) *Resolver {
	return &Resolver{
		noteRepo: noteRepo,
		entities: entities,
	}
}

// Resolve turns parsed refs into the full link set for a source note.
//
// Wikilink titles are matched exactly (case-sensitive) against live
// notes in the campaign; a miss produces a dangling link, not an error.
// Mention names are matched against every entity kind in the directory;
// when several kinds share a name, one candidate link per match is
// emitted rather than silently picking a winner.
func (r *Resolver) Resolve(ctx context.Context, campaignID, sourceNoteID string, refs ParsedRefs) ([]models.Link, error) {
	now := time.Now()
	links := make([]models.Link, 0, len(refs.Wikilinks)+len(refs.Mentions))

	for _, title := range refs.Wikilinks {
		link := models.Link{
			ID:           uuid.NewString(),
			SourceNoteID: sourceNoteID,
			CampaignID:   campaignID,
			Kind:         models.KindNote,
			Label:        title,
			CreatedAt:    now,
		}

		target, err := r.noteRepo.GetByTitle(ctx, campaignID, title)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("resolve wikilink '%s': %w", title, err)
			}
			// No live note with this exact title: dangling link
		} else {
			targetID := target.ID
			link.TargetID = &targetID
		}

		links = append(links, link)
	}

	for _, name := range refs.Mentions {
		matches, err := r.entities.FindByName(ctx, campaignID, name)
		if err != nil {
			return nil, fmt.Errorf("resolve mention '%s': %w", name, err)
		}

		if len(matches) == 0 {
			links = append(links, models.Link{
				ID:           uuid.NewString(),
				SourceNoteID: sourceNoteID,
				CampaignID:   campaignID,
				Kind:         models.KindMention,
				Label:        name,
				CreatedAt:    now,
			})
			continue
		}

		for _, m := range matches {
			targetID := m.ID
			links = append(links, models.Link{
				ID:           uuid.NewString(),
				SourceNoteID: sourceNoteID,
				CampaignID:   campaignID,
				Kind:         m.Kind,
				TargetID:     &targetID,
				Label:        name,
				CreatedAt:    now,
			})
		}
	}

	return links, nil
}
