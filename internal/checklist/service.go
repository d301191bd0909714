package checklist

import (
	"context"
	"time"
)

// Progress is a user's state on one checklist.
type Progress struct {
	Checklist Checklist `json:"checklist"`
	Completed []string  `json:"completedSteps"`
	Percent   int       `json:"percent"`
}

// Service applies catalog rules on top of Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Progress returns the user's completed steps for slug.
func (s *Service) Progress(ctx context.Context, userID, slug string) (*Progress, error) {
	c, err := Lookup(slug)
	if err != nil {
		return nil, err
	}
	done, err := s.store.Completed(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	return newProgress(c, done), nil
}

// Toggle marks stepID complete, or incomplete when it already was.
func (s *Service) Toggle(ctx context.Context, userID, slug, stepID string) (*Progress, error) {
	c, err := Lookup(slug)
	if err != nil {
		return nil, err
	}
	if !c.HasStep(stepID) {
		return nil, ErrUnknownStep
	}
	done, err := s.store.Toggle(ctx, userID, slug, stepID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return newProgress(c, done), nil
}

// Reset clears all progress for slug.
func (s *Service) Reset(ctx context.Context, userID, slug string) (*Progress, error) {
	c, err := Lookup(slug)
	if err != nil {
		return nil, err
	}
	if err := s.store.Reset(ctx, userID, slug); err != nil {
		return nil, err
	}
	return newProgress(c, []string{}), nil
}

// newProgress drops ids no longer in the catalog.
func newProgress(c Checklist, done []string) *Progress {
	kept := make([]string, 0, len(done))
	for _, id := range done {
		if c.HasStep(id) {
			kept = append(kept, id)
		}
	}
	var pct int
	if n := len(c.Steps); n > 0 {
		pct = (len(kept)*100 + n/2) / n
	}
	return &Progress{Checklist: c, Completed: kept, Percent: pct}
}
