// Package usage records which gated features a user has consumed.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/indiepro/indiepro/internal/platform/db"
)

// Event names a consumed feature.
type Event string

const (
	EventCalculatorUsed     Event = "calculator_used"
	EventTemplateDownloaded Event = "template_downloaded"
	EventPipelineViewed     Event = "pipeline_viewed"
)

// ConsumptionThreshold is the number of events after which a purchase counts as used.
const ConsumptionThreshold = 3

// Record is a stored usage event.
type Record struct {
	ID        int64
	UserID    string
	Event     Event
	Slug      string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Tracker writes usage_events.
type Tracker struct {
	q      db.Querier
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker returns a new Tracker.
func NewTracker(q db.Querier, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{q: q, logger: logger, now: time.Now}
}

// Record persists the event.
func (t *Tracker) Record(ctx context.Context, rec Record) error {
	if t == nil {
		return errors.New("usage tracker not initialised")
	}
	if rec.UserID == "" || rec.Event == "" || rec.Slug == "" {
		return errors.New("usage event requires user/event/slug")
	}
	var meta []byte
	if len(rec.Metadata) > 0 {
		var err error
		if meta, err = json.Marshal(rec.Metadata); err != nil {
			return err
		}
	}
	at := rec.CreatedAt
	if at.IsZero() {
		at = t.now().UTC()
	}
	_, err := t.q.Exec(ctx,
		`INSERT INTO usage_events (user_id, event, slug, metadata, created_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.UserID, string(rec.Event), rec.Slug, meta, at)
	if err != nil {
		return fmt.Errorf("usage: insert: %w", err)
	}
	return nil
}

// Track records an event, logging and discarding any failure. Usage
// tracking never blocks the feature being used.
func (t *Tracker) Track(ctx context.Context, userID string, event Event, slug string, meta map[string]any) {
	if t == nil {
		return
	}
	if err := t.Record(ctx, Record{UserID: userID, Event: event, Slug: slug, Metadata: meta}); err != nil {
		t.logger.Warn("track usage",
			slog.String("user_id", userID),
			slog.String("event", string(event)),
			slog.Any("error", err))
	}
}

// Count returns the number of events recorded for userID.
func (t *Tracker) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := t.q.QueryRow(ctx, `SELECT COUNT(*) FROM usage_events WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("usage: count: %w", err)
	}
	return n, nil
}

// HasConsumedContent reports whether userID crossed ConsumptionThreshold.
func (t *Tracker) HasConsumedContent(ctx context.Context, userID string) (bool, error) {
	n, err := t.Count(ctx, userID)
	if err != nil {
		return false, err
	}
	return n >= ConsumptionThreshold, nil
}

// Recent lists the newest events for userID.
func (t *Tracker) Recent(ctx context.Context, userID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := t.q.Query(ctx,
		`SELECT id, user_id, event, slug, metadata, created_at FROM usage_events
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("usage: recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec   Record
			event string
			meta  []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &event, &rec.Slug, &meta, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("usage: scan: %w", err)
		}
		rec.Event = Event(event)
		rec.Metadata = decodeMetadata(meta)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// decodeMetadata treats absent or malformed blobs as empty.
func decodeMetadata(raw []byte) map[string]any {
	out := map[string]any{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
