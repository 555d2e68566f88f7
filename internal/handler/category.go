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

// CategoryHandler manages the hierarchical categories of a book.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
	Books      *repository.BookRepo
}

func NewCategoryHandler(cat *repository.CategoryRepo, b *repository.BookRepo) *CategoryHandler {
	return &CategoryHandler{Categories: cat, Books: b}
}

func (h *CategoryHandler) requireBookPermission(ctx context.Context, uid, bookID uint64, want int) error {
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

type categoryCreateReq struct {
	BookID uint64  `json:"bookId"`
	Name   string  `json:"name"`
	Type   int     `json:"type"`
	Icon   string  `json:"icon"`
	Remark string  `json:"remark"`
	Seq    int     `json:"seq"`
	PID    *uint64 `json:"pid"`
}

// Create handles POST /v1/category.
func (h *CategoryHandler) Create(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req categoryCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.BookID == 0 || req.Name == "" {
		return fail(c, http.StatusBadRequest, "bookId and name required")
	}
	if req.Type < model.CategoryExpense || req.Type > model.CategoryIncome {
		return fail(c, http.StatusBadRequest, "type must be -1, 0 or 1")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireBookPermission(ctx, uid, req.BookID, model.PermWrite); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "permission check failed")
	}

	cat := model.Category{Name: req.Name, Type: req.Type, Icon: req.Icon,
		Remark: req.Remark, Seq: req.Seq, PID: req.PID}
	if _, err := h.Categories.Create(ctx, req.BookID, &cat); err != nil {
		return fail(c, http.StatusInternalServerError, "create failed")
	}
	return created(c, cat)
}

// ByID handles GET, PUT and DELETE /v1/category/:id.
func (h *CategoryHandler) ByID(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "category not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	switch c.Request().Method {
	case http.MethodDelete:
		if err := h.Categories.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fail(c, http.StatusConflict, "category still referenced by tallies")
			}
			return fail(c, http.StatusInternalServerError, "delete failed")
		}
		return respond(c, http.StatusNoContent, "", nil)
	case http.MethodPut:
		var upd model.CategoryUpdate
		if err := c.Bind(&upd); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if upd.Type != nil && (*upd.Type < model.CategoryExpense || *upd.Type > model.CategoryIncome) {
			return fail(c, http.StatusBadRequest, "type must be -1, 0 or 1")
		}
		if err := h.Categories.Update(ctx, id, upd); err != nil {
			return fail(c, http.StatusInternalServerError, "update failed")
		}
		cat, err = h.Categories.GetByID(ctx, id)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "query failed")
		}
	}
	return ok(c, cat)
}

// List handles GET /v1/categories?bookId=N.
func (h *CategoryHandler) List(c echo.Context) error {
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
	cats, err := h.Categories.ListByBook(ctx, bookID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, cats)
}
