package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Danilov210/Trip-Planner/internal/models"
)

// ArchiveDoneJob atomically retires a done request: the conditional
// delete that claims the row, the trips insert, and the history insert
// commit as one transaction. A failure anywhere rolls the claim back,
// so the request row stays in place and a later attempt can archive it;
// a result is never deleted without its Trip/History pair landing.
//
// Of any number of concurrent attempts for the same request_id exactly
// one sees the row; the rest get ErrNotFound. build turns the claimed
// row into the Trip to persist.
func (d *DB) ArchiveDoneJob(ctx context.Context, requestID string, build func(models.Job) (models.Trip, error)) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var job models.Job
	row := tx.QueryRow(ctx,
		`DELETE FROM requests
          WHERE request_id = $1 AND status = $2
      RETURNING request_id, user_id, status, payload, result, created_at`,
		requestID, models.StatusDone,
	)
	err = row.Scan(&job.RequestID, &job.UserID, &job.Status, &job.Payload, &job.Result, &job.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	trip, err := build(job)
	if err != nil {
		return err
	}
	interests, err := json.Marshal(trip.Interests)
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO trips (trip_id, user_id, destination, start_date, end_date, interests, raw_plan)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		trip.TripID, trip.UserID, trip.Destination, trip.StartDate, trip.EndDate, interests, trip.RawPlan,
	)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO history (user_id, trip_id) VALUES ($1, $2)`,
		trip.UserID, trip.TripID,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return tx.Commit(ctx)
}

// ListHistory returns the user's archived trips, most recent first.
func (d *DB) ListHistory(ctx context.Context, userID string) ([]models.Trip, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT t.trip_id, t.user_id, t.destination, t.start_date, t.end_date, t.interests, t.raw_plan, h.saved_at
           FROM history h
           JOIN trips t ON t.trip_id = h.trip_id
          WHERE h.user_id = $1
          ORDER BY h.saved_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []models.Trip{}
	for rows.Next() {
		var t models.Trip
		var interests []byte
		if err := rows.Scan(&t.TripID, &t.UserID, &t.Destination, &t.StartDate, &t.EndDate, &interests, &t.RawPlan, &t.SavedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(interests, &t.Interests); err != nil {
			return nil, fmt.Errorf("unmarshal interests: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// FindCachedPlan is the dedup lookup: an exact match over the user's
// history for destination, both dates, and the interests array in its
// stored serialized form. JSONB array equality is order-sensitive, so
// ["museums","food"] and ["food","museums"] are different keys.
// Returns the most recently saved match.
func (d *DB) FindCachedPlan(ctx context.Context, userID string, spec models.TripSpec) (json.RawMessage, error) {
	interests, err := json.Marshal(spec.Interests)
	if err != nil {
		return nil, fmt.Errorf("marshal interests: %w", err)
	}

	var rawPlan json.RawMessage
	row := d.pool.QueryRow(ctx,
		`SELECT t.raw_plan
           FROM history h
           JOIN trips t ON t.trip_id = h.trip_id
          WHERE h.user_id = $1
            AND t.destination = $2
            AND t.start_date = $3
            AND t.end_date = $4
            AND t.interests = $5::jsonb
          ORDER BY h.saved_at DESC
          LIMIT 1`,
		userID, spec.StartLocation, spec.StartDate, spec.EndDate, interests,
	)
	err = row.Scan(&rawPlan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rawPlan, err
}
