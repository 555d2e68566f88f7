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

// AccountHandler manages the caller's money accounts.  Accounts are
// owned by exactly one user; touching someone else's account is 403.
type AccountHandler struct {
	Accounts *repository.AccountRepo
	Books    *repository.BookRepo
}

func NewAccountHandler(a *repository.AccountRepo, b *repository.BookRepo) *AccountHandler {
	return &AccountHandler{Accounts: a, Books: b}
}

type accountCreateReq struct {
	Name   string  `json:"name"`
	Icon   string  `json:"icon"`
	Remark string  `json:"remark"`
	BookID *uint64 `json:"bookId"` // optionally attach to a book on creation
}

// Create handles POST /v1/account.
func (h *AccountHandler) Create(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req accountCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct := model.Account{Name: req.Name, Icon: req.Icon, Remark: req.Remark, UserID: uid}
	if _, err := h.Accounts.Create(ctx, &acct); err != nil {
		return fail(c, http.StatusInternalServerError, "create failed")
	}
	if req.BookID != nil {
		if err := h.Books.AttachAccount(ctx, *req.BookID, acct.ID); err != nil {
			return fail(c, http.StatusInternalServerError, "attach failed")
		}
	}
	return created(c, acct)
}

// ownedAccount loads the account and verifies ownership.
func (h *AccountHandler) ownedAccount(ctx context.Context, uid, id uint64) (model.Account, error) {
	acct, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		return model.Account{}, err
	}
	if acct.UserID != uid {
		return model.Account{}, repository.ErrForbidden
	}
	return acct, nil
}

// ByID handles GET, PUT and DELETE /v1/account/:id.
func (h *AccountHandler) ByID(c echo.Context) error {
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

	acct, err := h.ownedAccount(ctx, uid, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "account not found")
		}
		if errors.Is(err, repository.ErrForbidden) {
			return fail(c, http.StatusForbidden, "forbidden")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	switch c.Request().Method {
	case http.MethodDelete:
		if err := h.Accounts.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fail(c, http.StatusConflict, "account still referenced by tallies")
			}
			return fail(c, http.StatusInternalServerError, "delete failed")
		}
		return respond(c, http.StatusNoContent, "", nil)
	case http.MethodPut:
		var upd model.AccountUpdate
		if err := c.Bind(&upd); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if err := h.Accounts.Update(ctx, id, upd); err != nil {
			return fail(c, http.StatusInternalServerError, "update failed")
		}
		acct, err = h.Accounts.GetByID(ctx, id)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "query failed")
		}
	}
	return ok(c, acct)
}

// List handles GET /v1/accounts: the caller's accounts.
func (h *AccountHandler) List(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	accounts, err := h.Accounts.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, accounts)
}
