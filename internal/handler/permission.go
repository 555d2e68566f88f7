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

// PermissionHandler manages the standalone per-module ACL.  Grants
// recorded here do not gate any route on their own: book access still
// runs on the user_book bitmask.  The endpoints exist so module-level
// authority can be recorded and inspected ahead of enforcement.
type PermissionHandler struct {
	Perms *repository.PermissionRepo
}

func NewPermissionHandler(p *repository.PermissionRepo) *PermissionHandler {
	return &PermissionHandler{Perms: p}
}

type permissionGrantReq struct {
	UserID     uint64 `json:"userId"`
	ModuleName string `json:"moduleName"`
	Authority  int    `json:"authority"`
	Remark     string `json:"remark"`
}

// Grant handles POST /v1/permission.
func (h *PermissionHandler) Grant(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req permissionGrantReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.ModuleName = strings.TrimSpace(req.ModuleName)
	if req.UserID == 0 || req.ModuleName == "" {
		return fail(c, http.StatusBadRequest, "userId and moduleName required")
	}
	if req.Authority == 0 || req.Authority&^model.PermFull != 0 {
		return fail(c, http.StatusBadRequest, "authority must combine read=4, write=2 and delete=1")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.Permission{
		UserID:     req.UserID,
		ModuleName: req.ModuleName,
		Authority:  req.Authority,
		Remark:     req.Remark,
	}
	if _, err := h.Perms.Grant(ctx, &p); err != nil {
		return fail(c, http.StatusInternalServerError, "grant failed")
	}
	return created(c, p)
}

// Authority handles GET /v1/permission.  Without a userId parameter it
// answers for the calling user.
func (h *PermissionHandler) Authority(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	module := strings.TrimSpace(c.QueryParam("module"))
	if module == "" {
		return fail(c, http.StatusBadRequest, "module required")
	}
	if s := c.QueryParam("userId"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid userId")
		}
		uid = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	mask, err := h.Perms.Authority(ctx, uid, module)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "no grant for module")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, echo.Map{"userId": uid, "moduleName": module, "authority": mask})
}

// Revoke handles DELETE /v1/permission/:id.
func (h *PermissionHandler) Revoke(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Perms.Revoke(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "grant not found")
		}
		return fail(c, http.StatusInternalServerError, "revoke failed")
	}
	return respond(c, http.StatusNoContent, "", nil)
}
