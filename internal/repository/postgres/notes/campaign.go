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

// PostgresCampaignRepository implements the CampaignRepository interface
type PostgresCampaignRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(config *postgres.RepositoryConfig) notesRepo.CampaignRepository {
	return &PostgresCampaignRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a campaign (seed/bootstrap use)
func (r *PostgresCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, r.tables.Campaigns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, campaign.ID, campaign.Name, campaign.OwnerID, campaign.CreatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a live campaign by ID
func (r *PostgresCampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT id, name, owner_id, created_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Campaigns)

	var campaign models.Campaign
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.OwnerID,
		&campaign.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	return &campaign, nil
}

// PostgresEntityDirectory implements the EntityDirectory interface over
// the campaign's character and location tables. Those tables are owned
// by the surrounding product; this subsystem only reads names.
type PostgresEntityDirectory struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewEntityDirectory creates a new entity directory
func NewEntityDirectory(config *postgres.RepositoryConfig) notesRepo.EntityDirectory {
	return &PostgresEntityDirectory{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// FindByName looks up live entities of every kind by exact name within
// a campaign. When a character and a location share the name, both rows
// come back; the resolver surfaces every candidate rather than picking.
func (r *PostgresEntityDirectory) FindByName(ctx context.Context, campaignID, name string) ([]models.EntityRef, error) {
	query := fmt.Sprintf(`
		SELECT '%s' AS kind, id, name FROM %s
		WHERE campaign_id = $1 AND name = $2 AND deleted_at IS NULL
		UNION ALL
		SELECT '%s' AS kind, id, name FROM %s
		WHERE campaign_id = $1 AND name = $2 AND deleted_at IS NULL
		ORDER BY kind ASC
	`, models.KindCharacter, r.tables.Characters, models.KindLocation, r.tables.Locations)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, campaignID, name)
	if err != nil {
		return nil, fmt.Errorf("find entities named '%s': %w", name, err)
	}
	defer rows.Close()

	var refs []models.EntityRef
	for rows.Next() {
		var ref models.EntityRef
		if err := rows.Scan(&ref.Kind, &ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}

	if refs == nil {
		refs = []models.EntityRef{}
	}

	return refs, nil
}
