package notes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"lorekeeper/internal/domain"
	models "lorekeeper/internal/domain/models/notes"
	"lorekeeper/internal/domain/repositories"
)

// In-memory repository fakes mirroring the Postgres implementations'
// semantics: live-only reads, compare-and-swap updates, strictly
// increasing revision versions, wholesale link replacement.

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes map[string]*models.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[string]*models.Note)}
}

func (f *fakeNoteRepo) Create(ctx context.Context, note *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.notes {
		if existing.DeletedAt == nil && existing.CampaignID == note.CampaignID && existing.Title == note.Title {
			return &domain.ValidationError{
				Message: fmt.Sprintf("a note titled '%s' already exists in this campaign", note.Title),
			}
		}
	}

	stored := *note
	f.notes[note.ID] = &stored
	return nil
}

func (f *fakeNoteRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	note, ok := f.notes[id]
	if !ok || note.DeletedAt != nil {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNoteRepo) GetByTitle(ctx context.Context, campaignID, title string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, note := range f.notes {
		if note.DeletedAt == nil && note.CampaignID == campaignID && note.Title == title {
			copied := *note
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("note titled '%s': %w", title, domain.ErrNotFound)
}

func (f *fakeNoteRepo) UpdateVersioned(ctx context.Context, note *models.Note, expectedVersion int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.notes[note.ID]
	if !ok || stored.DeletedAt != nil {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}

	if stored.Version != expectedVersion {
		return &domain.ConflictError{
			NoteID:          note.ID,
			ExpectedVersion: expectedVersion,
			CurrentVersion:  stored.Version,
		}
	}

	stored.Title = note.Title
	stored.Body = note.Body
	stored.Tags = append([]string(nil), note.Tags...)
	stored.Visibility = note.Visibility
	stored.Folder = note.Folder
	stored.SessionID = note.SessionID
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now()

	note.Version = stored.Version
	note.UpdatedAt = stored.UpdatedAt
	note.CampaignID = stored.CampaignID
	return nil
}

func (f *fakeNoteRepo) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	note, ok := f.notes[id]
	if !ok || note.DeletedAt != nil {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	now := time.Now()
	note.DeletedAt = &now
	return nil
}

func (f *fakeNoteRepo) ListByCampaign(ctx context.Context, campaignID string) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []models.Note{}
	for _, note := range f.notes {
		if note.DeletedAt == nil && note.CampaignID == campaignID {
			copied := *note
			result = append(result, copied)
		}
	}
	return result, nil
}

func (f *fakeNoteRepo) SearchBodyToken(ctx context.Context, campaignID, token string) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []models.Note{}
	for _, note := range f.notes {
		if note.DeletedAt == nil && note.CampaignID == campaignID && strings.Contains(note.Body, token) {
			copied := *note
			result = append(result, copied)
		}
	}
	return result, nil
}

type fakeRevisionRepo struct {
	mu   sync.Mutex
	revs map[string][]models.Revision
}

func newFakeRevisionRepo() *fakeRevisionRepo {
	return &fakeRevisionRepo{revs: make(map[string][]models.Revision)}
}

func (f *fakeRevisionRepo) Append(ctx context.Context, rev *models.Revision) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.revs[rev.NoteID]
	if len(stored) > 0 && stored[len(stored)-1].Version >= rev.Version {
		return fmt.Errorf("revision %d for note %s: %w", rev.Version, rev.NoteID, domain.ErrRevisionOrder)
	}
	f.revs[rev.NoteID] = append(stored, *rev)
	return nil
}

func (f *fakeRevisionRepo) ListByNote(ctx context.Context, noteID string, limit int) ([]models.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.revs[noteID]
	result := []models.Revision{}
	for i := len(stored) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, stored[i])
	}
	return result, nil
}

func (f *fakeRevisionRepo) Get(ctx context.Context, noteID string, version int) (*models.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rev := range f.revs[noteID] {
		if rev.Version == version {
			copied := rev
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("revision %d for note %s: %w", version, noteID, domain.ErrNotFound)
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links map[string][]models.Link

	// noteRepo backs the live-source joins of the real repository
	noteRepo *fakeNoteRepo

	// replaceErr, when set, makes ReplaceForNote fail (for exercising
	// the partial-success path)
	replaceErr error
}

func newFakeLinkRepo(noteRepo *fakeNoteRepo) *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string][]models.Link), noteRepo: noteRepo}
}

func (f *fakeLinkRepo) ReplaceForNote(ctx context.Context, noteID string, links []models.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.links[noteID] = append([]models.Link(nil), links...)
	return nil
}

func (f *fakeLinkRepo) ForwardLinks(ctx context.Context, noteID string) ([]models.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Link{}, f.links[noteID]...), nil
}

func (f *fakeLinkRepo) BacklinkSources(ctx context.Context, noteID string) ([]models.Note, error) {
	f.mu.Lock()
	sourceIDs := []string{}
	for srcID, links := range f.links {
		for _, link := range links {
			if link.Kind == models.KindNote && link.TargetID != nil && *link.TargetID == noteID {
				sourceIDs = append(sourceIDs, srcID)
				break
			}
		}
	}
	f.mu.Unlock()

	result := []models.Note{}
	for _, id := range sourceIDs {
		note, err := f.noteRepo.GetByID(ctx, id)
		if err != nil {
			continue // tombstoned source
		}
		result = append(result, *note)
	}
	return result, nil
}

func (f *fakeLinkRepo) ListByCampaign(ctx context.Context, campaignID string) ([]models.Link, error) {
	f.mu.Lock()
	all := []models.Link{}
	for _, links := range f.links {
		for _, link := range links {
			if link.CampaignID == campaignID {
				all = append(all, link)
			}
		}
	}
	f.mu.Unlock()

	result := []models.Link{}
	for _, link := range all {
		if _, err := f.noteRepo.GetByID(ctx, link.SourceNoteID); err != nil {
			continue // tombstoned source
		}
		result = append(result, link)
	}
	return result, nil
}

type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[string]*models.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[string]*models.Campaign)}
}

func (f *fakeCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *campaign
	f.campaigns[campaign.ID] = &stored
	return nil
}

func (f *fakeCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	campaign, ok := f.campaigns[id]
	if !ok || campaign.DeletedAt != nil {
		return nil, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
	}
	copied := *campaign
	return &copied, nil
}

type fakeEntityDirectory struct {
	mu   sync.Mutex
	refs map[string][]models.EntityRef // campaignID -> refs
}

func newFakeEntityDirectory() *fakeEntityDirectory {
	return &fakeEntityDirectory{refs: make(map[string][]models.EntityRef)}
}

func (f *fakeEntityDirectory) add(campaignID string, ref models.EntityRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[campaignID] = append(f.refs[campaignID], ref)
}

func (f *fakeEntityDirectory) FindByName(ctx context.Context, campaignID, name string) ([]models.EntityRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []models.EntityRef{}
	for _, ref := range f.refs[campaignID] {
		if ref.Name == name {
			result = append(result, ref)
		}
	}
	return result, nil
}

// fakeTxManager runs the function directly; the fakes are already
// internally consistent without transactional boundaries.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
