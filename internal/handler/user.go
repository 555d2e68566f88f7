package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/perfeicloud/cashbook-api/internal/middleware"
	"github.com/perfeicloud/cashbook-api/internal/model"
	"github.com/perfeicloud/cashbook-api/internal/repository"
)

// UserHandler serves the profile endpoints of the authenticated user.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler { return &UserHandler{Users: u} }

// currentUserID pulls the guard-injected user id; the guard wraps every
// route this handler is registered on.
func currentUserID(c echo.Context) (uint64, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return 0, errors.New("unauthenticated route")
	}
	return uid, nil
}

// My handles GET /v1/my.  A disabled (or vanished) user answers 403: the
// token may still verify, but the account is restricted.
func (h *UserHandler) My(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusForbidden, "user restricted")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if u.State != model.UserStateActive {
		return fail(c, http.StatusForbidden, "user restricted")
	}
	return ok(c, u)
}

// Userinfo handles GET and PUT /v1/userinfo.  Updates go through the
// typed UserUpdate struct; unknown fields in the body are ignored and no
// column can be assigned that the struct does not name.
func (h *UserHandler) Userinfo(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if c.Request().Method == http.MethodPut {
		var upd model.UserUpdate
		if err := c.Bind(&upd); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if err := h.Users.UpdateProfile(ctx, uid, upd); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fail(c, http.StatusNotFound, "user not found")
			}
			return fail(c, http.StatusInternalServerError, "update failed")
		}
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, u)
}

// Remove handles DELETE /v1/user.  By default the account is disabled
// and its data kept; ?purge=true deletes the row, cascading owned
// accounts and book memberships per the schema.
func (h *UserHandler) Remove(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if c.QueryParam("purge") == "true" {
		err = h.Users.Delete(ctx, uid)
	} else {
		err = h.Users.SetState(ctx, uid, model.UserStateDisabled)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return respond(c, http.StatusNoContent, "", nil)
}

// Configure handles GET and PUT /v1/user/configure, the per-user
// settings row (currently the book the client last worked in).  A user
// with no row yet reads as the zero configuration.
func (h *UserHandler) Configure(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if c.Request().Method == http.MethodPut {
		var conf model.UserConfigure
		if err := c.Bind(&conf); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		conf.UserID = uid
		if err := h.Users.SetConfigure(ctx, conf); err != nil {
			return fail(c, http.StatusInternalServerError, "update failed")
		}
	}

	conf, err := h.Users.GetConfigure(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ok(c, model.UserConfigure{UserID: uid})
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, conf)
}
