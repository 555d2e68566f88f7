package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfeicloud/cashbook-api/internal/repository"
)

// newPermissionEcho serves the /v1/permission routes with the user id
// pre-set the way TokenGuard would, backed by a mocked database.
func newPermissionEcho(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewPermissionHandler(repository.NewPermissionRepo(db))
	asUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", uint64(9))
			return next(c)
		}
	}
	e := echo.New()
	e.POST("/v1/permission", h.Grant, asUser)
	e.GET("/v1/permission", h.Authority, asUser)
	e.DELETE("/v1/permission/:id", h.Revoke, asUser)
	return e, mock
}

func permRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPermissionGrantFlow(t *testing.T) {
	e, mock := newPermissionEcho(t)
	mock.ExpectExec("INSERT INTO permission").
		WithArgs(7, "book", 6, nil).
		WillReturnResult(sqlmock.NewResult(3, 1))

	rec := permRequest(e, http.MethodPost, "/v1/permission",
		`{"userId":7,"moduleName":"book","authority":6}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authority":6`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionGrantRejectsBadAuthority(t *testing.T) {
	e, mock := newPermissionEcho(t)

	for _, body := range []string{
		`{"userId":7,"moduleName":"book","authority":0}`,
		`{"userId":7,"moduleName":"book","authority":9}`,
		`{"moduleName":"book","authority":6}`,
		`{"userId":7,"authority":6}`,
	} {
		rec := permRequest(e, http.MethodPost, "/v1/permission", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.NoError(t, mock.ExpectationsWereMet(), "validation failures must not reach the database")
}

func TestPermissionAuthorityDefaultsToCaller(t *testing.T) {
	e, mock := newPermissionEcho(t)
	mock.ExpectQuery("SELECT authority FROM permission").
		WithArgs(9, "book").
		WillReturnRows(sqlmock.NewRows([]string{"authority"}).AddRow(7))

	rec := permRequest(e, http.MethodGet, "/v1/permission?module=book", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authority":7`)
}

func TestPermissionAuthorityNoGrant(t *testing.T) {
	e, mock := newPermissionEcho(t)
	mock.ExpectQuery("SELECT authority FROM permission").
		WithArgs(42, "book").
		WillReturnRows(sqlmock.NewRows([]string{"authority"}))

	rec := permRequest(e, http.MethodGet, "/v1/permission?module=book&userId=42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPermissionRevokeNotFound(t *testing.T) {
	e, mock := newPermissionEcho(t)
	mock.ExpectExec("DELETE FROM permission").
		WithArgs(404).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := permRequest(e, http.MethodDelete, "/v1/permission/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPermissionRequiresAuth(t *testing.T) {
	e := echo.New()
	h := &PermissionHandler{}
	e.POST("/v1/permission", h.Grant)

	rec := permRequest(e, http.MethodPost, "/v1/permission",
		`{"userId":7,"moduleName":"book","authority":6}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
