package model

import (
	"encoding/json"
	"time"
)

// Timeline is a user-built chronology of cases and events. The document is
// semi-structured JSON authored by the frontend; the service layer validates
// it field by field before persisting.
type Timeline struct {
	ID        string          `json:"id"`
	CreatedBy string          `json:"created_by"`
	Document  json.RawMessage `json:"timeline"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
