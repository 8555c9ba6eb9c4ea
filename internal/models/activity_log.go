package models

// ActivityLog records notable user operations (imports, family changes)
// for the family activity feed. Writes are best-effort and must never
// fail the operation being logged.
type ActivityLog struct {
	Base
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	ActionType  string `gorm:"not null" json:"action_type"`
	EntityType  string `gorm:"not null" json:"entity_type"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
}
