package audit

import "time"

// Entry is one recorded action. UserID is empty for system actions (for
// example the completion transition, which no single user performs).
type Entry struct {
	ID         string         `json:"id" bson:"_id,omitempty"`
	Timestamp  time.Time      `json:"timestamp" bson:"timestamp"`
	UserID     string         `json:"userId,omitempty" bson:"userId,omitempty"`
	Action     string         `json:"action" bson:"action"`
	EntityType string         `json:"entityType,omitempty" bson:"entityType,omitempty"`
	EntityID   string         `json:"entityId,omitempty" bson:"entityId,omitempty"`
	Details    map[string]any `json:"details,omitempty" bson:"details,omitempty"`
}

// Filter narrows a log query. Zero fields are ignored.
type Filter struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Limit      int64
}
