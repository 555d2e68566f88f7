package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

func newPermissionRepoMock(t *testing.T) (*PermissionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPermissionRepo(db), mock
}

func TestPermissionGrant(t *testing.T) {
	repo, mock := newPermissionRepoMock(t)

	mock.ExpectExec("INSERT INTO permission").
		WithArgs(7, "book", model.PermRead|model.PermWrite, nil).
		WillReturnResult(sqlmock.NewResult(3, 1))

	p := model.Permission{UserID: 7, ModuleName: "book", Authority: model.PermRead | model.PermWrite}
	id, err := repo.Grant(context.Background(), &p)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, uint64(3), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionAuthority(t *testing.T) {
	repo, mock := newPermissionRepoMock(t)

	mock.ExpectQuery("SELECT authority FROM permission").
		WithArgs(7, "book").
		WillReturnRows(sqlmock.NewRows([]string{"authority"}).AddRow(6))

	mask, err := repo.Authority(context.Background(), 7, "book")
	require.NoError(t, err)
	assert.Equal(t, 6, mask)
}

func TestPermissionAuthorityNoGrant(t *testing.T) {
	repo, mock := newPermissionRepoMock(t)

	mock.ExpectQuery("SELECT authority FROM permission").
		WithArgs(7, "application").
		WillReturnRows(sqlmock.NewRows([]string{"authority"}))

	_, err := repo.Authority(context.Background(), 7, "application")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPermissionRevoke(t *testing.T) {
	repo, mock := newPermissionRepoMock(t)

	mock.ExpectExec("DELETE FROM permission").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Revoke(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRevokeMissing(t *testing.T) {
	repo, mock := newPermissionRepoMock(t)

	mock.ExpectExec("DELETE FROM permission").
		WithArgs(404).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Revoke(context.Background(), 404), sql.ErrNoRows)
}
