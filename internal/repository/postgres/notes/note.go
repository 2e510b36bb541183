package notes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lorekeeper/internal/domain"
	models "lorekeeper/internal/domain/models/notes"
	notesRepo "lorekeeper/internal/domain/repositories/notes"

	"lorekeeper/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *postgres.RepositoryConfig) notesRepo.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new note at version 1
func (r *PostgresNoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, campaign_id, title, body, tags, visibility, folder, session_id, version, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		note.ID,
		note.CampaignID,
		note.Title,
		note.Body,
		note.Tags,
		note.Visibility,
		note.Folder,
		note.SessionID,
		note.Version,
		note.AuthorID,
		note.CreatedAt,
		note.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ValidationError{
				Message: fmt.Sprintf("a note titled '%s' already exists in this campaign", note.Title),
			}
		}
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID retrieves a live note by ID
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := fmt.Sprintf(`
		SELECT id, campaign_id, title, body, tags, visibility, folder, session_id, version, author_id, created_at, updated_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	return r.scanNote(executor.QueryRow(ctx, query, id), fmt.Sprintf("note %s", id))
}

// GetByTitle retrieves a live note by exact title within a campaign
func (r *PostgresNoteRepository) GetByTitle(ctx context.Context, campaignID, title string) (*models.Note, error) {
	query := fmt.Sprintf(`
		SELECT id, campaign_id, title, body, tags, visibility, folder, session_id, version, author_id, created_at, updated_at
		FROM %s
		WHERE campaign_id = $1 AND title = $2 AND deleted_at IS NULL
	`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	return r.scanNote(executor.QueryRow(ctx, query, campaignID, title), fmt.Sprintf("note titled '%s'", title))
}

// UpdateVersioned performs the compare-and-swap write. The stored row is
// touched only when its version still equals expectedVersion; a stale
// version returns *domain.ConflictError with the current version and
// mutates nothing.
func (r *PostgresNoteRepository) UpdateVersioned(ctx context.Context, note *models.Note, expectedVersion int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, body = $2, tags = $3, visibility = $4, folder = $5, session_id = $6, version = $7, updated_at = $8
		WHERE id = $9 AND version = $10 AND deleted_at IS NULL
		RETURNING version
	`, r.tables.Notes)

	now := time.Now()
	var newVersion int
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		note.Title,
		note.Body,
		note.Tags,
		note.Visibility,
		note.Folder,
		note.SessionID,
		expectedVersion+1,
		now,
		note.ID,
		expectedVersion,
	).Scan(&newVersion)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ValidationError{
				Message: fmt.Sprintf("a note titled '%s' already exists in this campaign", note.Title),
			}
		}
		if postgres.IsPgNoRowsError(err) {
			return r.versionConflict(ctx, note.ID, expectedVersion)
		}
		return fmt.Errorf("update note: %w", err)
	}

	note.Version = newVersion
	note.UpdatedAt = now
	return nil
}

// versionConflict distinguishes a stale expected version from a missing
// or tombstoned note after a zero-row compare-and-swap.
func (r *PostgresNoteRepository) versionConflict(ctx context.Context, id string, expectedVersion int) error {
	query := fmt.Sprintf(`
		SELECT version FROM %s WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Notes)

	var current int
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&current)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("check note version: %w", err)
	}

	return &domain.ConflictError{
		NoteID:          id,
		ExpectedVersion: expectedVersion,
		CurrentVersion:  current,
	}
}

// SoftDelete sets the tombstone timestamp
func (r *PostgresNoteRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByCampaign retrieves all live note metadata in a campaign (no body)
func (r *PostgresNoteRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.Note, error) {
	query := fmt.Sprintf(`
		SELECT id, campaign_id, title, tags, visibility, folder, session_id, version, author_id, created_at, updated_at
		FROM %s
		WHERE campaign_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
	`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var note models.Note
		err := rows.Scan(
			&note.ID,
			&note.CampaignID,
			&note.Title,
			&note.Tags,
			&note.Visibility,
			&note.Folder,
			&note.SessionID,
			&note.Version,
			&note.AuthorID,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		result = append(result, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	// Return empty slice instead of nil
	if result == nil {
		result = []models.Note{}
	}

	return result, nil
}

// SearchBodyToken retrieves live notes whose body contains the literal
// token. POSITION is used instead of LIKE so tokens such as "[[Title]]"
// need no metacharacter escaping.
func (r *PostgresNoteRepository) SearchBodyToken(ctx context.Context, campaignID, token string) ([]models.Note, error) {
	query := fmt.Sprintf(`
		SELECT id, campaign_id, title, body, tags, visibility, folder, session_id, version, author_id, created_at, updated_at
		FROM %s
		WHERE campaign_id = $1 AND deleted_at IS NULL AND POSITION($2 IN body) > 0
		ORDER BY updated_at DESC
	`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, campaignID, token)
	if err != nil {
		return nil, fmt.Errorf("search note bodies: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var note models.Note
		err := rows.Scan(
			&note.ID,
			&note.CampaignID,
			&note.Title,
			&note.Body,
			&note.Tags,
			&note.Visibility,
			&note.Folder,
			&note.SessionID,
			&note.Version,
			&note.AuthorID,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		result = append(result, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	if result == nil {
		result = []models.Note{}
	}

	return result, nil
}

// scanNote scans a single full note row
func (r *PostgresNoteRepository) scanNote(row interface{ Scan(dest ...any) error }, desc string) (*models.Note, error) {
	var note models.Note
	err := row.Scan(
		&note.ID,
		&note.CampaignID,
		&note.Title,
		&note.Body,
		&note.Tags,
		&note.Visibility,
		&note.Folder,
		&note.SessionID,
		&note.Version,
		&note.AuthorID,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s: %w", desc, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &note, nil
}
