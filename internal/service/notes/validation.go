package notes

import (
	"context"
	"fmt"
	"strings"

	"lorekeeper/internal/config"
	"lorekeeper/internal/domain"
	models "lorekeeper/internal/domain/models/notes"
	notesRepo "lorekeeper/internal/domain/repositories/notes"
	svcNotes "lorekeeper/internal/domain/services/notes"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CampaignValidator validates that the campaign scope is live before
// allowing operations on notes inside it
type CampaignValidator struct {
	campaignRepo notesRepo.CampaignRepository
}

// NewCampaignValidator creates a new campaign validator
func NewCampaignValidator(campaignRepo notesRepo.CampaignRepository) *CampaignValidator {
	return &CampaignValidator{campaignRepo: campaignRepo}
}

// ValidateCampaign ensures a campaign exists and is not soft-deleted
// Returns domain.ErrNotFound if the campaign is deleted or doesn't exist
func (v *CampaignValidator) ValidateCampaign(ctx context.Context, campaignID string) error {
	_, err := v.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("invalid campaign: %w", err)
	}
	return nil
}

// validateSaveRequest runs manual-save validation. The auto-save
// empty-title skip is decided before this runs; everything here is a
// blocking error.
func validateSaveRequest(req *svcNotes.SaveNoteRequest) error {
	err := validation.Errors{
		"campaign_id": validation.Validate(req.CampaignID, validation.Required),
		"author_id":   validation.Validate(req.AuthorID, validation.Required),
		"title": validation.Validate(req.Draft.Title,
			validation.Required,
			validation.Length(1, config.MaxNoteTitleLength),
		),
		"body": validation.Validate(req.Draft.Body,
			validation.Length(0, config.MaxNoteBodyLength),
		),
		"tags": validation.Validate(req.Draft.Tags,
			validation.Length(0, config.MaxTagsPerNote),
			validation.Each(validation.Length(1, config.MaxTagLength)),
		),
		"visibility": validation.Validate(string(req.Draft.Visibility),
			validation.Required,
			validation.In(
				string(models.VisibilityOwner),
				string(models.VisibilityShared),
				string(models.VisibilityPrivate),
			),
		),
	}.Filter()

	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// normalizeTags trims whitespace, drops empties, and deduplicates while
// preserving first-occurrence order. Stored tag sets stay canonical even
// though the tag taxonomy UI lives outside this subsystem.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}

	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}
