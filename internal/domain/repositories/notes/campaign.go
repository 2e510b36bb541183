package notes

import (
	"context"

	"lorekeeper/internal/domain/models/notes"
)

// CampaignRepository exposes the campaign scope records. Campaign CRUD
// lives in the surrounding product; the note core only reads them to
// validate liveness, plus Create for seed tooling.
type CampaignRepository interface {
	// Create inserts a campaign (seed/bootstrap use)
	Create(ctx context.Context, campaign *notes.Campaign) error

	// GetByID retrieves a live campaign by ID
	GetByID(ctx context.Context, id string) (*notes.Campaign, error)
}

// EntityDirectory is the read-only lookup mention resolution runs
// against: external entities (characters, locations) by exact name
// within a campaign. All kinds are consulted; when several kinds share
// a name every match is returned.
type EntityDirectory interface {
	FindByName(ctx context.Context, campaignID, name string) ([]notes.EntityRef, error)
}
