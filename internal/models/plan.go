// internal/models/plan.go
package models

import (
	"encoding/json"
	"time"
)

// WeeklyPlan carries an opaque payload; the pipeline only matches on the
// owning user id.
type WeeklyPlan struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	BusinessType string          `json:"businessType,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
