package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/perfeicloud/cashbook-api/internal/model"
	"github.com/perfeicloud/cashbook-api/internal/repository"
)

// TallyHandler manages transaction records.  Access rides on the
// permission bitmask of the tally's book: write=2 to record and edit,
// delete=1 to remove, read=4 to view and query.
type TallyHandler struct {
	Tallies *repository.TallyRepo
	Books   *repository.BookRepo
}

func NewTallyHandler(t *repository.TallyRepo, b *repository.BookRepo) *TallyHandler {
	return &TallyHandler{Tallies: t, Books: b}
}

func (h *TallyHandler) requireBookPermission(ctx context.Context, uid, bookID uint64, want int) error {
	mask, err := h.Books.GetPermission(ctx, uid, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrForbidden
		}
		return err
	}
	if !model.Allows(mask, want) {
		return repository.ErrForbidden
	}
	return nil
}

type tallyCreateReq struct {
	BookID          uint64          `json:"bookId"`
	Amount          decimal.Decimal `json:"amount"`
	RecordTimestamp int64           `json:"recordTimestamp"`
	Remark          string          `json:"remark"`
	CategoryID      uint64          `json:"categoryId"`
	AccountID       *uint64         `json:"accountId"`
	TagIDs          []uint64        `json:"tagIds"`
}

// Create handles POST /v1/tally.
func (h *TallyHandler) Create(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req tallyCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.BookID == 0 || req.CategoryID == 0 {
		return fail(c, http.StatusBadRequest, "bookId and categoryId required")
	}
	if req.RecordTimestamp == 0 {
		req.RecordTimestamp = time.Now().Unix()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireBookPermission(ctx, uid, req.BookID, model.PermWrite); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}

	tally := model.Tally{
		Amount:          req.Amount,
		RecordTimestamp: req.RecordTimestamp,
		Remark:          req.Remark,
		BookID:          req.BookID,
		CategoryID:      req.CategoryID,
		AccountID:       req.AccountID,
		TagIDs:          req.TagIDs,
	}
	if _, err := h.Tallies.Create(ctx, &tally); err != nil {
		return fail(c, http.StatusInternalServerError, "create failed")
	}
	return created(c, tally)
}

// ByID handles GET, PUT and DELETE /v1/tally/:id.
func (h *TallyHandler) ByID(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tally, err := h.Tallies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "tally not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	want := model.PermRead
	switch c.Request().Method {
	case http.MethodPut:
		want = model.PermWrite
	case http.MethodDelete:
		want = model.PermDelete
	}
	if err := h.requireBookPermission(ctx, uid, tally.BookID, want); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}

	switch c.Request().Method {
	case http.MethodDelete:
		if err := h.Tallies.Delete(ctx, id); err != nil {
			return fail(c, http.StatusInternalServerError, "delete failed")
		}
		return respond(c, http.StatusNoContent, "", nil)
	case http.MethodPut:
		var upd model.TallyUpdate
		if err := c.Bind(&upd); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if err := h.Tallies.Update(ctx, id, upd); err != nil {
			return fail(c, http.StatusInternalServerError, "update failed")
		}
		tally, err = h.Tallies.GetByID(ctx, id)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "query failed")
		}
	}
	return ok(c, tally)
}

// ListRange handles GET /v1/tallies?bookId=N&start=S&end=E, the ranged
// query backing the monthly/period views.  start and end are epoch
// seconds, inclusive.
func (h *TallyHandler) ListRange(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	bookID, err := strconv.ParseUint(queryParam(c, "bookId", "book-id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "bookId required")
	}
	start, err := strconv.ParseInt(queryParam(c, "start"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "start required")
	}
	end, err := strconv.ParseInt(queryParam(c, "end"), 10, 64)
	if err != nil || end < start {
		return fail(c, http.StatusBadRequest, "end required and must not precede start")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireBookPermission(ctx, uid, bookID, model.PermRead); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}
	tallies, err := h.Tallies.ListByBookRange(ctx, bookID, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, tallies)
}

// queryParam returns the first non-empty value among the given query
// parameter names.  The hyphenated aliases keep the original mobile
// clients working.
func queryParam(c echo.Context, names ...string) string {
	for _, n := range names {
		if v := c.QueryParam(n); v != "" {
			return v
		}
	}
	return ""
}
