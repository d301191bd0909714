package checklist

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryToggleInsertsWhenAbsent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	repo := NewRepository(mock)
	at := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectExec(`DELETE FROM checklist_steps`).
		WithArgs("u-1", "ca-llc-setup", "research").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO checklist_steps`).
		WithArgs("u-1", "ca-llc-setup", "research", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT step_id FROM checklist_steps .* ORDER BY seq`).
		WithArgs("u-1", "ca-llc-setup").
		WillReturnRows(pgxmock.NewRows([]string{"step_id"}).AddRow("get-ein").AddRow("research"))
	mock.ExpectCommit()

	steps, err := repo.Toggle(context.Background(), "u-1", "ca-llc-setup", "research", at)
	require.NoError(t, err)
	assert.Equal(t, []string{"get-ein", "research"}, steps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryToggleRemovesWhenPresent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	repo := NewRepository(mock)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectExec(`DELETE FROM checklist_steps`).
		WithArgs("u-1", "ca-llc-setup", "research").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`SELECT step_id FROM checklist_steps`).
		WithArgs("u-1", "ca-llc-setup").
		WillReturnRows(pgxmock.NewRows([]string{"step_id"}))
	mock.ExpectCommit()

	steps, err := repo.Toggle(context.Background(), "u-1", "ca-llc-setup", "research", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{}, steps)
	assert.NoError(t, mock.ExpectationsWereMet())
}
