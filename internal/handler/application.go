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

// ApplicationHandler manages registered client applications.  Secret
// keys are write-only: they enter through create/update bodies and are
// excluded from every response by the model's JSON tags.
type ApplicationHandler struct {
	Apps *repository.ApplicationRepo
}

func NewApplicationHandler(a *repository.ApplicationRepo) *ApplicationHandler {
	return &ApplicationHandler{Apps: a}
}

type applicationCreateReq struct {
	AppID      string    `json:"appId"`
	AppName    string    `json:"appName"`
	SecretKey  string    `json:"secretKey"`
	ExpiryDate time.Time `json:"expirydate"`
}

// Create handles POST /v1/application.
func (h *ApplicationHandler) Create(c echo.Context) error {
	var req applicationCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.AppID = strings.TrimSpace(req.AppID)
	if req.AppID == "" || req.AppName == "" || req.SecretKey == "" || req.ExpiryDate.IsZero() {
		return fail(c, http.StatusBadRequest, "appId, appName, secretKey and expirydate required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	app := model.Application{
		AppID:      req.AppID,
		AppName:    req.AppName,
		SecretKey:  req.SecretKey,
		ExpiryDate: req.ExpiryDate,
	}
	if _, err := h.Apps.Create(ctx, &app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusConflict, "appId already exists")
		}
		return fail(c, http.StatusInternalServerError, "create failed")
	}
	return created(c, app)
}

// ByID handles GET, PUT and DELETE /v1/application/:id.
func (h *ApplicationHandler) ByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch c.Request().Method {
	case http.MethodDelete:
		if err := h.Apps.Delete(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fail(c, http.StatusNotFound, "application not found")
			}
			return fail(c, http.StatusInternalServerError, "delete failed")
		}
		return respond(c, http.StatusNoContent, "", nil)
	case http.MethodPut:
		var upd model.ApplicationUpdate
		if err := c.Bind(&upd); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
		if err := h.Apps.Update(ctx, id, upd); err != nil {
			return fail(c, http.StatusInternalServerError, "update failed")
		}
	}

	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, app)
}

// List handles GET /v1/applications.
func (h *ApplicationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	apps, err := h.Apps.List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, apps)
}
