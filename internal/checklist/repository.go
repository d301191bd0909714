package checklist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/indiepro/indiepro/internal/platform/db"
)

// Store persists completed steps.
type Store interface {
	Completed(ctx context.Context, userID, slug string) ([]string, error)
	Toggle(ctx context.Context, userID, slug, stepID string, at time.Time) ([]string, error)
	Reset(ctx context.Context, userID, slug string) error
}

// Repository implements Store on PostgreSQL with one row per completed step.
type Repository struct {
	pool db.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Completed lists completed step ids in completion order.
func (r *Repository) Completed(ctx context.Context, userID, slug string) ([]string, error) {
	return completed(ctx, r.pool, userID, slug)
}

// Toggle flips stepID and returns the resulting ordered set.
func (r *Repository) Toggle(ctx context.Context, userID, slug, stepID string, at time.Time) ([]string, error) {
	var out []string
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM checklist_steps WHERE user_id = $1 AND checklist_slug = $2 AND step_id = $3`,
			userID, slug, stepID)
		if err != nil {
			return fmt.Errorf("checklist: delete step: %w", err)
		}
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx,
				`INSERT INTO checklist_steps (user_id, checklist_slug, step_id, completed_at)
				 VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
				userID, slug, stepID, at); err != nil {
				return fmt.Errorf("checklist: insert step: %w", err)
			}
		}
		out, err = completed(ctx, tx, userID, slug)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reset removes every completed step of the checklist.
func (r *Repository) Reset(ctx context.Context, userID, slug string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM checklist_steps WHERE user_id = $1 AND checklist_slug = $2`, userID, slug)
	if err != nil {
		return fmt.Errorf("checklist: reset: %w", err)
	}
	return nil
}

func completed(ctx context.Context, q db.Querier, userID, slug string) ([]string, error) {
	rows, err := q.Query(ctx,
		`SELECT step_id FROM checklist_steps WHERE user_id = $1 AND checklist_slug = $2 ORDER BY seq`,
		userID, slug)
	if err != nil {
		return nil, fmt.Errorf("checklist: list steps: %w", err)
	}
	steps, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("checklist: scan steps: %w", err)
	}
	if steps == nil {
		steps = []string{}
	}
	return steps, nil
}

var _ Store = (*Repository)(nil)
