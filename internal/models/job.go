package models

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	StatusPending JobStatus = "pending"
	StatusDone    JobStatus = "done"
)

// Job is one row of the requests table: a single asynchronous plan
// request tracked by request_id from submission until it is archived.
// The gateway creates it pending, a worker writes the terminal result,
// the archiver deletes it after the client has read the result.
type Job struct {
	RequestID string          `json:"request_id"`
	UserID    string          `json:"user_id"`
	Status    JobStatus       `json:"status"`
	Payload   json.RawMessage `json:"payload"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TripSpec is the client-submitted trip specification, stored verbatim
// as the Job payload.
type TripSpec struct {
	StartLocation string   `json:"start_location"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Interests     []string `json:"interests"`
}

// JobMessage is the broker snapshot of a Job: exactly the fields a
// worker needs to process the request.
type JobMessage struct {
	RequestID     string   `json:"request_id"`
	UserID        string   `json:"user_id"`
	StartLocation string   `json:"start_location"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Interests     []string `json:"interests"`
}

// Spec returns the trip specification carried by the message.
func (m JobMessage) Spec() TripSpec {
	return TripSpec{
		StartLocation: m.StartLocation,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		Interests:     m.Interests,
	}
}
