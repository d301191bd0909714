package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/indiepro/indiepro/internal/platform/db"
	"github.com/indiepro/indiepro/internal/shared"
)

// Store persists profiles.
type Store interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, userID string, a Answers) (*Profile, error)
}

// Repository implements Store on PostgreSQL.
type Repository struct {
	q   db.Querier
	now func() time.Time
}

// NewRepository constructs a Repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q, now: time.Now}
}

const profileColumns = `user_id, role, collection_method, income_structure, entity_status, created_at, updated_at`

// Get returns the user's profile or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	return scanProfile(r.q.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

// Save upserts the profile. Unanswered fields keep their stored value.
func (r *Repository) Save(ctx context.Context, userID string, a Answers) (*Profile, error) {
	now := r.now().UTC()
	return scanProfile(r.q.QueryRow(ctx, `
		INSERT INTO profiles (user_id, role, collection_method, income_structure, entity_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			role = COALESCE(EXCLUDED.role, profiles.role),
			collection_method = COALESCE(EXCLUDED.collection_method, profiles.collection_method),
			income_structure = COALESCE(EXCLUDED.income_structure, profiles.income_structure),
			entity_status = COALESCE(EXCLUDED.entity_status, profiles.entity_status),
			updated_at = EXCLUDED.updated_at
		RETURNING `+profileColumns,
		userID,
		nullable(string(a.Role)),
		nullable(string(a.CollectionMethod)),
		nullable(string(a.IncomeStructure)),
		nullable(string(a.EntityStatus)),
		now))
}

func nullable(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var (
		p                                   Profile
		role, method, structure, entityStat pgtype.Text
	)
	if err := row.Scan(&p.UserID, &role, &method, &structure, &entityStat, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("profile: scan: %w", err)
	}
	p.Role = Role(role.String)
	p.CollectionMethod = CollectionMethod(method.String)
	p.IncomeStructure = IncomeStructure(structure.String)
	p.EntityStatus = EntityStatus(entityStat.String)
	return &p, nil
}

var _ Store = (*Repository)(nil)
