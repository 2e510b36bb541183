package notes

import (
	"context"
	"fmt"

	"lorekeeper/internal/config"
	models "lorekeeper/internal/domain/models/notes"
)

// Backlinks returns the live notes referencing noteID, newest-updated
// first within each lookup path, deduplicated by source note.
//
// Dual-path lookup: stored link rows are authoritative; a literal
// body scan for "[[Title]]" catches the one case rows cannot - a note
// that referenced this title before the target existed and has not been
// saved since. A note found by both paths is reported once, from the
// link-row path.
func (s *noteService) Backlinks(ctx context.Context, noteID string) ([]models.Backlink, error) {
	// A tombstoned target is excluded from backlink queries entirely.
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("backlinks: %w", err)
	}

	token := "[[" + note.Title + "]]"
	seen := make(map[string]bool)
	backlinks := []models.Backlink{}

	sources, err := s.linkRepo.BacklinkSources(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("backlinks: %w", err)
	}
	for _, src := range sources {
		if src.ID == noteID || seen[src.ID] {
			continue
		}
		seen[src.ID] = true
		backlinks = append(backlinks, models.Backlink{
			SourceID: src.ID,
			Title:    src.Title,
			Excerpt:  excerptAround(src.Body, token, config.BacklinkExcerptRadius),
		})
	}

	scanned, err := s.noteRepo.SearchBodyToken(ctx, note.CampaignID, token)
	if err != nil {
		return nil, fmt.Errorf("backlinks: %w", err)
	}
	for _, src := range scanned {
		if src.ID == noteID || seen[src.ID] {
			continue
		}
		seen[src.ID] = true
		backlinks = append(backlinks, models.Backlink{
			SourceID: src.ID,
			Title:    src.Title,
			Excerpt:  excerptAround(src.Body, token, config.BacklinkExcerptRadius),
		})
	}

	return backlinks, nil
}
