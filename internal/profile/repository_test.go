package profile

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indiepro/indiepro/internal/shared"
)

var profileCols = []string{"user_id", "role", "collection_method", "income_structure", "entity_status", "created_at", "updated_at"}

func TestRepositorySaveKeepsUnansweredFields(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := NewRepository(mock)
	repo.now = func() time.Time { return now }

	mock.ExpectQuery(`(?s)INSERT INTO profiles .* COALESCE\(EXCLUDED.role, profiles.role\)`).
		WithArgs("u-1",
			pgtype.Text{String: "barber", Valid: true},
			pgtype.Text{},
			pgtype.Text{},
			pgtype.Text{String: "LLC", Valid: true},
			now).
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow("u-1", "barber", "SHOP", "A", "LLC", now, now))

	p, err := repo.Save(context.Background(), "u-1", Answers{Role: RoleBarber, EntityStatus: EntityLLC})
	require.NoError(t, err)
	assert.Equal(t, CollectionShop, p.CollectionMethod)
	assert.Equal(t, StructureA, p.IncomeStructure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	repo := NewRepository(mock)

	mock.ExpectQuery(`FROM profiles WHERE user_id = \$1`).WithArgs("u-1").WillReturnError(pgx.ErrNoRows)

	_, err = repo.Get(context.Background(), "u-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
