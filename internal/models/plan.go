package models

import "encoding/json"

// Coords is a latitude/longitude pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DayPlan is one day of an itinerary as produced by the plan generator.
type DayPlan struct {
	Description string `json:"description"`
	Place       string `json:"place,omitempty"`
	Coords      Coords `json:"coords"`
	ImageURL    string `json:"image_url,omitempty"`
}

// ErrorDetail describes a failed plan generation. A PlanDocument
// carrying an ErrorDetail is still a terminal result: the Job goes to
// done either way.
type ErrorDetail struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PlanDocument is the structured result of processing one Job. Either
// Days is populated, or Error is set and the rest is empty.
type PlanDocument struct {
	Days        []DayPlan       `json:"days,omitempty"`
	Waypoints   []Coords        `json:"waypoints,omitempty"`
	GoogleRoute json.RawMessage `json:"google_route,omitempty"`
	Error       *ErrorDetail    `json:"error,omitempty"`
}

// ErrorPlan builds the placeholder result written when the generator's
// output cannot be parsed.
func ErrorPlan(message, details string) PlanDocument {
	return PlanDocument{Error: &ErrorDetail{Message: message, Details: details}}
}
