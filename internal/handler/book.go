package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/perfeicloud/cashbook-api/internal/model"
	"github.com/perfeicloud/cashbook-api/internal/repository"
)

// BookHandler manages ledgers and their sharing.  Every access to an
// existing book is gated on the caller's user_book permission bitmask:
// read=4 for GET, write=2 for PUT, delete=1 for DELETE.
type BookHandler struct {
	Books *repository.BookRepo
	Users *repository.UserRepo
}

func NewBookHandler(b *repository.BookRepo, u *repository.UserRepo) *BookHandler {
	return &BookHandler{Books: b, Users: u}
}

// requirePermission checks that the user holds the wanted bits on the
// book.  An unshared book reads as no permission at all.
func (h *BookHandler) requirePermission(ctx context.Context, userID, bookID uint64, want int) error {
	mask, err := h.Books.GetPermission(ctx, userID, bookID)
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

type bookCreateReq struct {
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Remark string `json:"remark"`
}

// Create handles POST /v1/book.  The book row and the creator's
// full-permission join row commit in one transaction.
func (h *BookHandler) Create(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req bookCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	book := model.Book{Name: req.Name, Icon: req.Icon, Remark: req.Remark}
	if err := h.Books.CreateWithOwner(ctx, &book, uid); err != nil {
		return fail(c, http.StatusInternalServerError, "create failed")
	}
	return created(c, book)
}

// ByID handles GET, PUT and DELETE /v1/book/:id.
func (h *BookHandler) ByID(c echo.Context) error {
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

	if _, err := h.Books.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "book not found")
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
	if err := h.requirePermission(ctx, uid, id, want); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}

	switch c.Request().Method {
	case http.MethodDelete:
		if err := h.Books.Delete(ctx, id); err != nil {
			return fail(c, http.StatusInternalServerError, "delete failed")
		}
		return respond(c, http.StatusNoContent, "", nil)
	case http.MethodPut:
		var upd model.BookUpdate
		if err := c.Bind(&upd); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if err := h.Books.Update(ctx, id, upd); err != nil {
			return fail(c, http.StatusInternalServerError, "update failed")
		}
	}

	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, book)
}

// List handles GET /v1/books: the books shared with the caller.
func (h *BookHandler) List(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	books, err := h.Books.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, books)
}

type shareReq struct {
	UserID     uint64 `json:"userId"`
	Permission int    `json:"permission"`
}

// Share handles POST /v1/book/:id/share: attach another user to the
// book with a permission bitmask.  Only a holder of full permission may
// share, and a grant can never exceed full.
func (h *BookHandler) Share(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req shareReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.UserID == 0 || req.Permission < 0 || req.Permission > model.PermFull {
		return fail(c, http.StatusBadRequest, "userId and permission (0-7) required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requirePermission(ctx, uid, id, model.PermFull); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}
	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if err := h.Books.Share(ctx, req.UserID, id, req.Permission); err != nil {
		return fail(c, http.StatusInternalServerError, "share failed")
	}
	return ok(c, nil)
}

// Configure handles GET and PUT /v1/book/:id/configure, the budget
// amount and period of the book.
func (h *BookHandler) Configure(c echo.Context) error {
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

	want := model.PermRead
	if c.Request().Method == http.MethodPut {
		want = model.PermWrite
	}
	if err := h.requirePermission(ctx, uid, id, want); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}

	if c.Request().Method == http.MethodPut {
		var conf model.BookConfigure
		if err := c.Bind(&conf); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		conf.BookID = id
		if conf.Period == "" {
			conf.Period = "month"
		}
		if err := h.Books.SetConfigure(ctx, conf); err != nil {
			return fail(c, http.StatusInternalServerError, "update failed")
		}
	}

	conf, err := h.Books.GetConfigure(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "book has no configuration")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, conf)
}
