package notes

import (
	"context"
	"fmt"
	"log/slog"

	"lorekeeper/internal/domain"
	models "lorekeeper/internal/domain/models/notes"
	notesRepo "lorekeeper/internal/domain/repositories/notes"

	"lorekeeper/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRevisionRepository implements the RevisionRepository interface
type PostgresRevisionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRevisionRepository creates a new revision repository
func NewRevisionRepository(config *postgres.RepositoryConfig) notesRepo.RevisionRepository {
	return &PostgresRevisionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append stores one immutable snapshot. The guarded INSERT enforces the
// one invariant of the store: versions for a note are strictly
// increasing. A snapshot at or below the highest stored version writes
// nothing and returns domain.ErrRevisionOrder.
func (r *PostgresRevisionRepository) Append(ctx context.Context, rev *models.Revision) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (note_id, version, title, body, tags, visibility, folder, saved_by, saved_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM %s WHERE note_id = $1 AND version >= $2
		)
	`, r.tables.Revisions, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		rev.NoteID,
		rev.Version,
		rev.Title,
		rev.Body,
		rev.Tags,
		rev.Visibility,
		rev.Folder,
		rev.SavedBy,
		rev.SavedAt,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			// Concurrent append raced past the NOT EXISTS guard
			return fmt.Errorf("revision %d for note %s: %w", rev.Version, rev.NoteID, domain.ErrRevisionOrder)
		}
		return fmt.Errorf("append revision: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("revision %d for note %s: %w", rev.Version, rev.NoteID, domain.ErrRevisionOrder)
	}

	return nil
}

// ListByNote returns up to limit revisions, newest first
func (r *PostgresRevisionRepository) ListByNote(ctx context.Context, noteID string, limit int) ([]models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT note_id, version, title, body, tags, visibility, folder, saved_by, saved_at
		FROM %s
		WHERE note_id = $1
		ORDER BY version DESC
		LIMIT $2
	`, r.tables.Revisions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, noteID, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []models.Revision
	for rows.Next() {
		var rev models.Revision
		err := rows.Scan(
			&rev.NoteID,
			&rev.Version,
			&rev.Title,
			&rev.Body,
			&rev.Tags,
			&rev.Visibility,
			&rev.Folder,
			&rev.SavedBy,
			&rev.SavedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}

	// Return empty slice instead of nil
	if revisions == nil {
		revisions = []models.Revision{}
	}

	return revisions, nil
}

// Get retrieves a single revision by note and version
func (r *PostgresRevisionRepository) Get(ctx context.Context, noteID string, version int) (*models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT note_id, version, title, body, tags, visibility, folder, saved_by, saved_at
		FROM %s
		WHERE note_id = $1 AND version = $2
	`, r.tables.Revisions)

	var rev models.Revision
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, noteID, version).Scan(
		&rev.NoteID,
		&rev.Version,
		&rev.Title,
		&rev.Body,
		&rev.Tags,
		&rev.Visibility,
		&rev.Folder,
		&rev.SavedBy,
		&rev.SavedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("revision %d for note %s: %w", version, noteID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}

	return &rev, nil
}
