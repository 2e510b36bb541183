package notes

import (
	"time"
)

// Campaign is the scope record notes live inside. Campaign CRUD belongs
// to the surrounding product; this subsystem only needs to know a
// campaign exists and is live before letting a save through.
type Campaign struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// EntityRef is one row of the campaign's external entity directory
// (characters, locations) as seen by mention resolution.
type EntityRef struct {
	Kind LinkTargetKind `json:"kind"`
	ID   string         `json:"id"`
	Name string         `json:"name"`
}
