// Package archiver retires done jobs: the terminal result becomes a
// permanent Trip plus History entry and the request row is removed.
package archiver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Danilov210/Trip-Planner/internal/db"
	"github.com/Danilov210/Trip-Planner/internal/metrics"
	"github.com/Danilov210/Trip-Planner/internal/models"
)

// Store is the archiver's slice of the state store: one transactional
// operation that claims the done row and persists the built Trip
// together, or does neither.
type Store interface {
	ArchiveDoneJob(ctx context.Context, requestID string, build func(models.Job) (models.Trip, error)) error
}

type Archiver struct {
	store Store
	log   *slog.Logger
}

func New(store Store) *Archiver {
	return &Archiver{store: store, log: slog.Default()}
}

// Archive turns the done request row into a Trip and a History entry
// and retires the row, all in one atomic step. Concurrent polls that
// schedule archival for the same job race harmlessly: only one claim
// sees the row, every other call is a no-op. If persisting fails the
// claim rolls back and the row stays available for a later attempt.
func (a *Archiver) Archive(ctx context.Context, requestID string) error {
	var tripID string
	err := a.store.ArchiveDoneJob(ctx, requestID, func(job models.Job) (models.Trip, error) {
		var spec models.TripSpec
		if err := json.Unmarshal(job.Payload, &spec); err != nil {
			return models.Trip{}, fmt.Errorf("decode payload: %w", err)
		}
		tripID = uuid.New().String()
		return models.Trip{
			TripID:      tripID,
			UserID:      job.UserID,
			Destination: spec.StartLocation,
			StartDate:   spec.StartDate,
			EndDate:     spec.EndDate,
			Interests:   spec.Interests,
			RawPlan:     job.Result,
		}, nil
	})
	if errors.Is(err, db.ErrNotFound) {
		// Lost the claim, or the job was never done. Nothing to do.
		return nil
	}
	if err != nil {
		return fmt.Errorf("archive job %s: %w", requestID, err)
	}

	metrics.ArchivedTotal.Inc()
	a.log.Info("archived job", "request_id", requestID, "trip_id", tripID)
	return nil
}
