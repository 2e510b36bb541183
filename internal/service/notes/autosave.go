package notes

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lorekeeper/internal/config"
	"lorekeeper/internal/domain"
	models "lorekeeper/internal/domain/models/notes"
	svcNotes "lorekeeper/internal/domain/services/notes"
)

// EditSession is the edit context for one open note. It owns the
// debounced auto-save: each edit restarts the timer, only the most
// recent pending draft is ever flushed, and at most one pending flush
// exists at any time. Switching notes means closing this session (which
// cancels any pending flush) and constructing a new one - sessions are
// never reused across notes.
//
// Manual saves go through the same underlying Save and therefore the
// same conflict semantics: a manual save can lose to another actor's
// auto-save and vice versa.
type EditSession struct {
	svc    svcNotes.NoteService
	logger *slog.Logger
	delay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	timer      *time.Timer
	enabled    bool
	closed     bool
	noteID     *string
	baseline   int // expected version for the next save
	campaignID string
	authorID   string
	pending    *svcNotes.Draft
}

// NewEditSession creates the edit context for one open note. noteID is
// nil when the session starts on a brand-new, never-saved note;
// baselineVersion is the version the editor loaded (ignored while
// noteID is nil).
func NewEditSession(
	svc svcNotes.NoteService,
	cfg *config.Config,
	logger *slog.Logger,
	campaignID, authorID string,
	noteID *string,
	baselineVersion int,
) *EditSession {
	delay := cfg.AutoSaveDelay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &EditSession{
		svc:        svc,
		logger:     logger,
		delay:      delay,
		ctx:        ctx,
		cancel:     cancel,
		campaignID: campaignID,
		authorID:   authorID,
		noteID:     noteID,
		baseline:   baselineVersion,
	}
}

// SetAutoSave toggles the auto-save flag. Toggling off cancels any
// pending flush; toggling on re-arms the debounce if an eligible draft
// is already pending.
func (s *EditSession) SetAutoSave(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.enabled = enabled
	if !enabled {
		s.stopTimerLocked()
		return
	}
	if s.pending != nil && strings.TrimSpace(s.pending.Title) != "" {
		s.armTimerLocked()
	}
}

// Edited records the latest in-progress draft and restarts the debounce.
// A superseded draft is discarded, never queued. The debounce is only
// armed while auto-save is enabled and the draft has a non-empty title.
func (s *EditSession) Edited(draft svcNotes.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.pending = &draft
	s.stopTimerLocked()
	if s.enabled && strings.TrimSpace(draft.Title) != "" {
		s.armTimerLocked()
	}
}

// Restore copies a revision's fields into the in-progress edit state.
// Pure staging: nothing is written and no version is bumped - the user
// must explicitly save afterward, and that save is subject to ordinary
// conflict rules like any other.
func (s *EditSession) Restore(rev *models.Revision) svcNotes.Draft {
	draft := svcNotes.StageRevision(rev)
	s.Edited(draft)
	return draft
}

// SaveNow issues a manual save of the current draft, discarding any
// pending auto-save flush (the draft it would have written is the one
// being saved). Blocks until the attempt resolves; the error is the
// caller's to surface.
func (s *EditSession) SaveNow(ctx context.Context, draft svcNotes.Draft) (*svcNotes.SaveResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.New("edit session closed")
	}
	s.pending = nil
	s.stopTimerLocked()
	req := s.requestLocked(draft, false)
	s.mu.Unlock()

	result, err := s.svc.Save(ctx, req)
	if err != nil {
		return nil, err
	}

	s.adoptResult(result)
	return result, nil
}

// Close destroys the edit context: the pending flush (if any) is
// canceled and no further saves are issued. An already in-flight save
// is not interrupted; it resolves on its own.
func (s *EditSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.pending = nil
	s.stopTimerLocked()
	s.mu.Unlock()

	s.cancel()
}

// Baseline returns the expected version the next save will present.
func (s *EditSession) Baseline() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

// NoteID returns the note this session is bound to, nil until the first
// successful save of a new note.
func (s *EditSession) NoteID() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

// flush is the debounce callback: it issues the single pending
// auto-save. Conflicts and storage failures are logged, never surfaced
// mid-typing; no retry is scheduled beyond the next edit re-arming the
// debounce.
func (s *EditSession) flush() {
	s.mu.Lock()
	if s.closed || !s.enabled || s.pending == nil {
		s.mu.Unlock()
		return
	}
	draft := *s.pending
	s.pending = nil
	s.timer = nil
	req := s.requestLocked(draft, true)
	s.mu.Unlock()

	result, err := s.svc.Save(s.ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Warn("auto-save lost a version conflict; user must reload before saving",
				"campaign_id", s.campaignID,
				"error", err,
			)
		} else {
			s.logger.Error("auto-save failed",
				"campaign_id", s.campaignID,
				"error", err,
			)
		}
		return
	}

	if result.Skipped {
		return
	}

	s.adoptResult(result)
}

// adoptResult advances the session's note binding and version baseline
// after a committed save.
func (s *EditSession) adoptResult(result *svcNotes.SaveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.noteID == nil {
		id := result.NoteID
		s.noteID = &id
	}
	if result.Version > s.baseline {
		s.baseline = result.Version
	}
}

// requestLocked builds a save request from the session's current
// binding. Caller holds mu.
func (s *EditSession) requestLocked(draft svcNotes.Draft, isAutoSave bool) *svcNotes.SaveNoteRequest {
	return &svcNotes.SaveNoteRequest{
		NoteID:          s.noteID,
		CampaignID:      s.campaignID,
		AuthorID:        s.authorID,
		ExpectedVersion: s.baseline,
		Draft:           draft,
		IsAutoSave:      isAutoSave,
	}
}

// armTimerLocked (re)starts the debounce. Caller holds mu.
func (s *EditSession) armTimerLocked() {
	s.stopTimerLocked()
	s.timer = time.AfterFunc(s.delay, s.flush)
}

// stopTimerLocked cancels a pending flush. Caller holds mu.
func (s *EditSession) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
