package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated   ActivityType = "project_created"
	TypeMemberAdded      ActivityType = "member_added"
	TypeItemCreated      ActivityType = "item_created"
	TypeItemStateChanged ActivityType = "item_state_changed"
	TypeItemDeleted      ActivityType = "item_deleted"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TenantID     string       `json:"tenant_id,omitempty"`
	ProjectID    string       `json:"project_id"`
	ItemID       *string      `json:"item_id,omitempty"`
	ActorID      string       `json:"actor_id"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
