package notes

import (
	"time"
)

// Visibility controls who can see a note inside its campaign.
type Visibility string

const (
	VisibilityOwner   Visibility = "owner"   // campaign owner only
	VisibilityShared  Visibility = "shared"  // visible to the whole table
	VisibilityPrivate Visibility = "private" // author only
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityOwner, VisibilityShared, VisibilityPrivate:
		return true
	}
	return false
}

// Note is the live, mutable record of a campaign note. Version starts at
// 1 and increments exactly once per successful save; every write goes
// through the save path, never through partial field updates.
type Note struct {
	ID         string     `json:"id" db:"id"`
	CampaignID string     `json:"campaign_id" db:"campaign_id"`
	Title      string     `json:"title" db:"title"` // unique among live notes per campaign
	Body       string     `json:"body" db:"body"`   // markdown content
	Tags       []string   `json:"tags" db:"tags"`
	Visibility Visibility `json:"visibility" db:"visibility"`
	Folder     *string    `json:"folder,omitempty" db:"folder"`         // NULL = unfiled
	SessionID  *string    `json:"session_id,omitempty" db:"session_id"` // optional session association
	Version    int        `json:"version" db:"version"`
	AuthorID   string     `json:"author_id" db:"author_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"` // tombstone, not physical delete
}

// Deleted reports whether the note carries a tombstone.
func (n *Note) Deleted() bool {
	return n.DeletedAt != nil
}
