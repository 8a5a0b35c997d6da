package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Danilov210/Trip-Planner/internal/models"
)

// CreateJob inserts a new pending request row. The gateway is the only
// caller; the row must be durably written before the broker message for
// the same request_id is published.
func (d *DB) CreateJob(ctx context.Context, job models.Job) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO requests (request_id, user_id, status, payload)
         VALUES ($1, $2, $3, $4)`,
		job.RequestID, job.UserID, job.Status, job.Payload,
	)
	return err
}

// GetJob fetches the request row for a status poll.
func (d *DB) GetJob(ctx context.Context, requestID string) (models.Job, error) {
	var job models.Job
	row := d.pool.QueryRow(ctx,
		`SELECT request_id, user_id, status, payload, result, created_at
           FROM requests WHERE request_id = $1`, requestID,
	)
	err := row.Scan(&job.RequestID, &job.UserID, &job.Status, &job.Payload, &job.Result, &job.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, ErrNotFound
	}
	return job, err
}

// CompleteJob writes the terminal result. The update is blind on
// purpose: broker redelivery may repeat it and the row ends up in the
// same state either way.
func (d *DB) CompleteJob(ctx context.Context, requestID string, result json.RawMessage) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE requests SET status = $1, result = $2 WHERE request_id = $3`,
		models.StatusDone, result, requestID,
	)
	return err
}
