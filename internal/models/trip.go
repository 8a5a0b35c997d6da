package models

import (
	"encoding/json"
	"time"
)

// Trip is an archived, immutable plan. The archiver creates one Trip
// plus one History entry when a done Job is retired.
type Trip struct {
	TripID      string          `json:"trip_id"`
	UserID      string          `json:"user_id"`
	Destination string          `json:"destination"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Interests   []string        `json:"interests"`
	RawPlan     json.RawMessage `json:"raw_plan"`
	SavedAt     time.Time       `json:"saved_at"`
}
