package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lorekeeper/internal/config"
	"lorekeeper/internal/domain"
	models "lorekeeper/internal/domain/models/notes"
	"lorekeeper/internal/domain/repositories"
	notesRepo "lorekeeper/internal/domain/repositories/notes"
	svcNotes "lorekeeper/internal/domain/services/notes"

	"github.com/google/uuid"
)

// noteService implements the NoteService interface. It is the
// conflict-aware store: it owns the save state machine, orchestrates
// revision snapshotting, and drives link recomputation after each
// committed write.
//
// Consistency model: the compare-and-swap on the note row is the only
// atomic step. Link replacement and revision snapshotting run after the
// commit and are deliberately not part of the same atomic unit; links
// self-heal on the next save because they are always recomputed in
// full, and a missed snapshot only widens the undo granularity.
type noteService struct {
	noteRepo  notesRepo.NoteRepository
	revRepo   notesRepo.RevisionRepository
	linkRepo  notesRepo.LinkRepository
	txManager repositories.TransactionManager
	resolver  *Resolver
	validator *CampaignValidator
	logger    *slog.Logger

	revisionEveryNAuto int

	// mu guards autoSaves: successful auto-saves per note since the
	// last snapshot. Manual saves clear the entry so cadence restarts.
	mu        sync.Mutex
	autoSaves map[string]int
}

// NewNoteService creates a new note service
func NewNoteService(
	noteRepo notesRepo.NoteRepository,
	revRepo notesRepo.RevisionRepository,
	linkRepo notesRepo.LinkRepository,
	txManager repositories.TransactionManager,
	resolver *Resolver,
	validator *CampaignValidator,
	cfg *config.Config,
	logger *slog.Logger,
) svcNotes.NoteService {
	every := cfg.RevisionEveryNAuto
	if every <= 0 {
		every = 5
	}
	return &noteService{
		noteRepo:           noteRepo,
		revRepo:            revRepo,
		linkRepo:           linkRepo,
		txManager:          txManager,
		resolver:           resolver,
		validator:          validator,
		logger:             logger,
		revisionEveryNAuto: every,
		autoSaves:          make(map[string]int),
	}
}

// Save runs one save attempt through the
// Validating -> Writing -> {Committed | Conflict | Failed} flow.
func (s *noteService) Save(ctx context.Context, req *svcNotes.SaveNoteRequest) (*svcNotes.SaveResult, error) {
	// Validating. An auto-save mid-thought often has no title yet;
	// aborting silently keeps the background save from interrupting the
	// user with a blocking error.
	if strings.TrimSpace(req.Draft.Title) == "" && req.IsAutoSave {
		return &svcNotes.SaveResult{Skipped: true}, nil
	}

	if err := validateSaveRequest(req); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateCampaign(ctx, req.CampaignID); err != nil {
		return nil, err
	}

	// Writing
	note, err := s.write(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &svcNotes.SaveResult{
		NoteID:  note.ID,
		Version: note.Version,
	}

	// Link recompute is best-effort after commit: the note write stands
	// even when this fails, and the next successful save rewrites the
	// full set anyway.
	if err := s.reindexLinks(ctx, note); err != nil {
		indexErr := &domain.LinkIndexError{NoteID: note.ID, Err: err}
		if req.IsAutoSave {
			s.logger.Warn("link indexing failed after auto-save",
				"note_id", note.ID,
				"version", note.Version,
				"error", err,
			)
		} else {
			s.logger.Warn("link indexing failed after manual save",
				"note_id", note.ID,
				"version", note.Version,
				"error", err,
			)
			result.LinkWarning = indexErr
		}
	}

	s.applySnapshotPolicy(ctx, note, req.IsAutoSave)

	// Committed
	return result, nil
}

// write inserts a new note or compare-and-swaps an existing one. On a
// conflict no fields are merged; the caller gets *domain.ConflictError
// and must refresh from storage before retrying.
func (s *noteService) write(ctx context.Context, req *svcNotes.SaveNoteRequest) (*models.Note, error) {
	now := time.Now()
	note := &models.Note{
		CampaignID: req.CampaignID,
		Title:      req.Draft.Title,
		Body:       req.Draft.Body,
		Tags:       normalizeTags(req.Draft.Tags),
		Visibility: req.Draft.Visibility,
		Folder:     req.Draft.Folder,
		SessionID:  req.Draft.SessionID,
		AuthorID:   req.AuthorID,
		UpdatedAt:  now,
	}

	if req.NoteID == nil {
		note.ID = uuid.NewString()
		note.Version = 1
		note.CreatedAt = now
		if err := s.noteRepo.Create(ctx, note); err != nil {
			return nil, err
		}
		return note, nil
	}

	note.ID = *req.NoteID
	if err := s.noteRepo.UpdateVersioned(ctx, note, req.ExpectedVersion); err != nil {
		return nil, err
	}
	return note, nil
}

// reindexLinks recomputes the full link set for the saved body and
// replaces the stored set inside one transaction. No incremental
// diffing: replacement is what guarantees no stale or duplicate edge
// survives a rename or deletion of referenced text.
func (s *noteService) reindexLinks(ctx context.Context, note *models.Note) error {
	refs := ParseRefs(note.Body)

	links, err := s.resolver.Resolve(ctx, note.CampaignID, note.ID, refs)
	if err != nil {
		return err
	}

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.linkRepo.ReplaceForNote(txCtx, note.ID, links)
	})
}

// applySnapshotPolicy creates a revision for every manual save and for
// every Nth successful auto-save. A manual save resets the per-note
// auto-save counter so the cadence restarts cleanly.
func (s *noteService) applySnapshotPolicy(ctx context.Context, note *models.Note, isAutoSave bool) {
	shouldSnapshot := true
	if isAutoSave {
		s.mu.Lock()
		s.autoSaves[note.ID]++
		if s.autoSaves[note.ID] >= s.revisionEveryNAuto {
			s.autoSaves[note.ID] = 0
		} else {
			shouldSnapshot = false
		}
		s.mu.Unlock()
	} else {
		s.mu.Lock()
		delete(s.autoSaves, note.ID)
		s.mu.Unlock()
	}

	if !shouldSnapshot {
		return
	}

	rev := &models.Revision{
		NoteID:     note.ID,
		Version:    note.Version,
		Title:      note.Title,
		Body:       note.Body,
		Tags:       note.Tags,
		Visibility: note.Visibility,
		Folder:     note.Folder,
		SavedBy:    note.AuthorID,
		SavedAt:    time.Now(),
	}

	// Best-effort after commit: a failed snapshot never rolls back the
	// save, it only widens the undo granularity until the next one.
	if err := s.revRepo.Append(ctx, rev); err != nil {
		s.logger.Warn("revision snapshot failed",
			"note_id", note.ID,
			"version", note.Version,
			"error", err,
		)
	}
}

// Get retrieves a live note
func (s *noteService) Get(ctx context.Context, noteID string) (*models.Note, error) {
	return s.noteRepo.GetByID(ctx, noteID)
}

// Delete tombstones a note. Links and revisions stay stored for audit,
// but the note drops out of resolution, backlinks, and the graph
// immediately.
func (s *noteService) Delete(ctx context.Context, noteID string) error {
	if err := s.noteRepo.SoftDelete(ctx, noteID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.autoSaves, noteID)
	s.mu.Unlock()

	s.logger.Info("note tombstoned", "note_id", noteID)
	return nil
}

// ListRevisions returns revision history newest-first
func (s *noteService) ListRevisions(ctx context.Context, noteID string, limit int) ([]models.Revision, error) {
	if limit <= 0 {
		limit = config.DefaultRevisionListLimit
	}
	return s.revRepo.ListByNote(ctx, noteID, limit)
}

// GetRevision retrieves one snapshot
func (s *noteService) GetRevision(ctx context.Context, noteID string, version int) (*models.Revision, error) {
	return s.revRepo.Get(ctx, noteID, version)
}

// ForwardLinks returns the stored links originating from a note
func (s *noteService) ForwardLinks(ctx context.Context, noteID string) ([]models.Link, error) {
	if _, err := s.noteRepo.GetByID(ctx, noteID); err != nil {
		return nil, fmt.Errorf("forward links: %w", err)
	}
	return s.linkRepo.ForwardLinks(ctx, noteID)
}
