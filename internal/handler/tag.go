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

// TagHandler manages the hierarchical tags of a book.
type TagHandler struct {
	Tags  *repository.TagRepo
	Books *repository.BookRepo
}

func NewTagHandler(t *repository.TagRepo, b *repository.BookRepo) *TagHandler {
	return &TagHandler{Tags: t, Books: b}
}

func (h *TagHandler) requireBookPermission(ctx context.Context, uid, bookID uint64, want int) error {
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

type tagCreateReq struct {
	BookID uint64  `json:"bookId"`
	Name   string  `json:"name"`
	Remark string  `json:"remark"`
	Seq    int     `json:"seq"`
	PID    *uint64 `json:"pid"`
}

// Create handles POST /v1/tag.
func (h *TagHandler) Create(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req tagCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.BookID == 0 || req.Name == "" {
		return fail(c, http.StatusBadRequest, "bookId and name required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireBookPermission(ctx, uid, req.BookID, model.PermWrite); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}

	tag := model.Tag{Name: req.Name, Remark: req.Remark, Seq: req.Seq, PID: req.PID}
	if _, err := h.Tags.Create(ctx, req.BookID, &tag); err != nil {
		return fail(c, http.StatusInternalServerError, "create failed")
	}
	return created(c, tag)
}

// ByID handles GET, PUT and DELETE /v1/tag/:id.
func (h *TagHandler) ByID(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tag, err := h.Tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "tag not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	switch c.Request().Method {
	case http.MethodDelete:
		if err := h.Tags.Delete(ctx, id); err != nil {
			return fail(c, http.StatusInternalServerError, "delete failed")
		}
		return respond(c, http.StatusNoContent, "", nil)
	case http.MethodPut:
		var upd model.TagUpdate
		if err := c.Bind(&upd); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if err := h.Tags.Update(ctx, id, upd); err != nil {
			return fail(c, http.StatusInternalServerError, "update failed")
		}
		tag, err = h.Tags.GetByID(ctx, id)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "query failed")
		}
	}
	return ok(c, tag)
}

// List handles GET /v1/tags?bookId=N.
func (h *TagHandler) List(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	bookID, err := strconv.ParseUint(c.QueryParam("bookId"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "bookId required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireBookPermission(ctx, uid, bookID, model.PermRead); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}
	tags, err := h.Tags.ListByBook(ctx, bookID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, tags)
}
