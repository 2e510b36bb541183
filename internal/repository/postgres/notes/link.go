package notes

import (
	"context"
	"fmt"
	"log/slog"

	models "lorekeeper/internal/domain/models/notes"
	notesRepo "lorekeeper/internal/domain/repositories/notes"

	"lorekeeper/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLinkRepository implements the LinkRepository interface
type PostgresLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(config *postgres.RepositoryConfig) notesRepo.LinkRepository {
	return &PostgresLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ReplaceForNote drops every stored link whose source is noteID and
// inserts the new set. Callers run this inside a transaction (the save
// path wraps it in the TransactionManager) so readers never see a
// half-replaced set.
func (r *PostgresLinkRepository) ReplaceForNote(ctx context.Context, noteID string, links []models.Link) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE source_note_id = $1`, r.tables.Links)
	if _, err := executor.Exec(ctx, deleteQuery, noteID); err != nil {
		return fmt.Errorf("drop links for note %s: %w", noteID, err)
	}

	if len(links) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (id, source_note_id, campaign_id, kind, target_id, label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Links)

	batch := &pgx.Batch{}
	for _, link := range links {
		batch.Queue(insertQuery,
			link.ID,
			link.SourceNoteID,
			link.CampaignID,
			link.Kind,
			link.TargetID,
			link.Label,
			link.CreatedAt,
		)
	}

	results := executor.SendBatch(ctx, batch)
	defer results.Close()

	for range links {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert links for note %s: %w", noteID, err)
		}
	}

	return nil
}

// ForwardLinks returns the stored links originating from a note
func (r *PostgresLinkRepository) ForwardLinks(ctx context.Context, noteID string) ([]models.Link, error) {
	query := fmt.Sprintf(`
		SELECT id, source_note_id, campaign_id, kind, target_id, label, created_at
		FROM %s
		WHERE source_note_id = $1
		ORDER BY label ASC
	`, r.tables.Links)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("list forward links: %w", err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// BacklinkSources returns the live notes holding a wikilink row that
// targets noteID. Bodies are included so the caller can extract
// excerpts.
func (r *PostgresLinkRepository) BacklinkSources(ctx context.Context, noteID string) ([]models.Note, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (n.id)
		       n.id, n.campaign_id, n.title, n.body, n.tags, n.visibility, n.folder, n.session_id, n.version, n.author_id, n.created_at, n.updated_at
		FROM %s l
		JOIN %s n ON n.id = l.source_note_id
		WHERE l.kind = $1 AND l.target_id = $2 AND n.deleted_at IS NULL
		ORDER BY n.id
	`, r.tables.Links, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, models.KindNote, noteID)
	if err != nil {
		return nil, fmt.Errorf("list backlink sources: %w", err)
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
			return nil, fmt.Errorf("scan backlink source: %w", err)
		}
		result = append(result, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backlink sources: %w", err)
	}

	if result == nil {
		result = []models.Note{}
	}

	return result, nil
}

// ListByCampaign returns every stored link in a campaign whose source
// note is live
func (r *PostgresLinkRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.Link, error) {
	query := fmt.Sprintf(`
		SELECT l.id, l.source_note_id, l.campaign_id, l.kind, l.target_id, l.label, l.created_at
		FROM %s l
		JOIN %s n ON n.id = l.source_note_id
		WHERE l.campaign_id = $1 AND n.deleted_at IS NULL
	`, r.tables.Links, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list campaign links: %w", err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// scanLinks collects link rows, returning an empty slice for no matches
func scanLinks(rows pgx.Rows) ([]models.Link, error) {
	var links []models.Link
	for rows.Next() {
		var link models.Link
		err := rows.Scan(
			&link.ID,
			&link.SourceNoteID,
			&link.CampaignID,
			&link.Kind,
			&link.TargetID,
			&link.Label,
			&link.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	if links == nil {
		links = []models.Link{}
	}

	return links, nil
}
