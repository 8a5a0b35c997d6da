package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Danilov210/Trip-Planner/internal/metrics"
	"github.com/Danilov210/Trip-Planner/internal/models"
	"github.com/Danilov210/Trip-Planner/internal/planner"
	"github.com/Danilov210/Trip-Planner/internal/queue"
)

// wikimediaPrefix marks image references the plan must not ship with;
// the worker swaps them for a fresh photo lookup.
const wikimediaPrefix = "upload.wikimedia.org"

// Store is the slice of the state store the worker needs: the single
// idempotent terminal write.
type Store interface {
	CompleteJob(ctx context.Context, requestID string, result json.RawMessage) error
}

// Broker is the consuming side of the message broker.
type Broker interface {
	Consume(ctx context.Context, group, consumer string) (queue.Delivery, error)
	Ack(ctx context.Context, group, entryID string) error
}

// Generator produces an unstructured plan document for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Enricher is the optional route/photo collaborator. Both calls are
// best-effort: an error means "leave the field empty", never a failed
// job.
type Enricher interface {
	Route(ctx context.Context, origin, destination string) (json.RawMessage, error)
	PlacePhoto(ctx context.Context, placeName string) (string, error)
}

// Worker is one member of the consumer group. It pulls one message at
// a time, processes it fully, and acknowledges only after the terminal
// write succeeded.
type Worker struct {
	store    Store
	broker   Broker
	gen      Generator
	enricher Enricher
	group    string
	consumer string
	log      *slog.Logger
}

func NewWorker(store Store, broker Broker, gen Generator, enricher Enricher, group, consumer string) *Worker {
	return &Worker{
		store:    store,
		broker:   broker,
		gen:      gen,
		enricher: enricher,
		group:    group,
		consumer: consumer,
		log:      slog.Default().With("consumer", consumer),
	}
}

// Start runs the consume loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("worker started, waiting for messages")
	for {
		delivery, err := w.broker.Consume(ctx, w.group, w.consumer)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("consume failed", "error", err)
			continue
		}

		if err := w.Process(ctx, delivery.Msg); err != nil {
			// No ack: the entry stays pending in the group and will be
			// redelivered. Process is idempotent, so a repeat is safe.
			w.log.Error("processing failed", "request_id", delivery.Msg.RequestID, "error", err)
			metrics.JobsProcessedTotal.WithLabelValues("error").Inc()
			continue
		}

		if err := w.broker.Ack(ctx, w.group, delivery.EntryID); err != nil {
			w.log.Error("ack failed", "request_id", delivery.Msg.RequestID, "error", err)
		}
		w.log.Info("completed processing", "request_id", delivery.Msg.RequestID)
	}
}

// Process handles one Job message end to end: generate, parse, enrich,
// write the terminal result. Safe to invoke more than once for the
// same request_id; the only write is a blind update keyed by it.
func (w *Worker) Process(ctx context.Context, msg models.JobMessage) error {
	prompt := planner.BuildPrompt(msg)
	planText, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate plan for %s: %w", msg.RequestID, err)
	}

	var doc models.PlanDocument
	if err := json.Unmarshal([]byte(sanitizeJSON(planText)), &doc); err != nil {
		// Unparseable output is still a terminal result: the job goes
		// to done with an error-shaped plan.
		w.log.Warn("unparseable plan output", "request_id", msg.RequestID, "error", err)
		doc = models.ErrorPlan("invalid JSON from plan generator", err.Error())
	} else {
		w.enrich(ctx, msg, &doc)
	}

	result, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal result for %s: %w", msg.RequestID, err)
	}
	if err := w.store.CompleteJob(ctx, msg.RequestID, result); err != nil {
		return fmt.Errorf("write result for %s: %w", msg.RequestID, err)
	}
	metrics.JobsProcessedTotal.WithLabelValues("done").Inc()
	return nil
}

// enrich attaches the driving route and replaces disallowed image
// references. Every failure here degrades the plan instead of failing
// the job.
func (w *Worker) enrich(ctx context.Context, msg models.JobMessage, doc *models.PlanDocument) {
	if w.enricher == nil {
		return
	}

	route, err := w.enricher.Route(ctx, msg.StartLocation, msg.StartLocation)
	if err != nil {
		w.log.Warn("route lookup failed", "request_id", msg.RequestID, "error", err)
	} else {
		doc.GoogleRoute = route
	}

	for i := range doc.Days {
		day := &doc.Days[i]
		if !isDisallowedImage(day.ImageURL) {
			continue
		}
		place := day.Place
		if place == "" {
			place = msg.StartLocation
		}
		photo, err := w.enricher.PlacePhoto(ctx, place)
		if err != nil {
			w.log.Warn("photo lookup failed", "request_id", msg.RequestID, "place", place, "error", err)
			day.ImageURL = ""
			continue
		}
		day.ImageURL = photo
	}
}

func isDisallowedImage(imageURL string) bool {
	if imageURL == "" {
		return false
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(imageURL, "https://"), "http://")
	return strings.HasPrefix(trimmed, wikimediaPrefix)
}

// sanitizeJSON strips the markdown code fences models sometimes wrap
// around their output despite instructions.
func sanitizeJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
