package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/indiepro/indiepro/internal/platform/db"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindOrCreateUser(ctx context.Context, email string) (*users.User, error)
	FindUserByEmail(ctx context.Context, email string) (*users.User, error)
	CreateLoginCode(ctx context.Context, code LoginCode) (int64, error)
	LatestLoginCode(ctx context.Context, email string) (*LoginCode, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	q     db.Querier
	users *users.Repository
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.Querier, userRepo *users.Repository) *PGRepository {
	return &PGRepository{q: q, users: userRepo}
}

// FindOrCreateUser upserts a user without touching existing rows.
func (r *PGRepository) FindOrCreateUser(ctx context.Context, email string) (*users.User, error) {
	return r.users.FindOrCreate(ctx, email)
}

// FindUserByEmail fetches a user by email.
func (r *PGRepository) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.users.FindByEmail(ctx, email)
}

// CreateLoginCode appends a code to the email's history.
func (r *PGRepository) CreateLoginCode(ctx context.Context, code LoginCode) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx,
		`INSERT INTO login_codes (email, code_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		code.Email, code.CodeHash, code.ExpiresAt, code.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("auth: insert login code: %w", err)
	}
	return id, nil
}

// LatestLoginCode returns the newest code for email; ties on created_at go to
// the row inserted last.
func (r *PGRepository) LatestLoginCode(ctx context.Context, email string) (*LoginCode, error) {
	var c LoginCode
	err := r.q.QueryRow(ctx,
		`SELECT id, email, code_hash, expires_at, created_at FROM login_codes
		 WHERE email = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		email).Scan(&c.ID, &c.Email, &c.CodeHash, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: latest login code: %w", err)
	}
	return &c, nil
}

var _ Repository = (*PGRepository)(nil)
