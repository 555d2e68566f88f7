package handler

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/perfeicloud/cashbook-api/internal/auth"
	"github.com/perfeicloud/cashbook-api/internal/config"
	"github.com/perfeicloud/cashbook-api/internal/model"
	"github.com/perfeicloud/cashbook-api/internal/queue"
	"github.com/perfeicloud/cashbook-api/internal/repository"
	"github.com/perfeicloud/cashbook-api/internal/service"
	"github.com/perfeicloud/cashbook-api/internal/vcode"
)

// AuthHandler bundles dependencies for the authorization endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Auth  *auth.Authorizer
	Users *repository.UserRepo
	Codes vcode.Store
	// Publish sends the issued-code event to the gateway worker; nil
	// disables dispatch (codes still land in the cache).  Replaceable
	// in tests.
	Publish func(ctx context.Context, ev queue.VCodeIssuedEvent) error
}

func NewAuthHandler(cfg config.Config, a *auth.Authorizer, users *repository.UserRepo, codes vcode.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: a, Users: users, Codes: codes, Publish: service.PublishVCodeIssued}
}

// loginReq carries all three credential shapes; exactly one must be
// filled in.  The identifier is mobile or mail, at most one of the two.
type loginReq struct {
	Mobile   string `json:"mobile"`
	Mail     string `json:"mail"`
	Password string `json:"password"`
	VCode    string `json:"vcode"`
	Code     string `json:"code"`
}

// credential builds the explicit credential union from the request body.
// Bodies naming more than one strategy are rejected rather than silently
// picking one.
func (req *loginReq) credential() (auth.Credential, error) {
	identifier := strings.TrimSpace(req.Mobile)
	if identifier == "" {
		identifier = strings.ToLower(strings.TrimSpace(req.Mail))
	} else if strings.TrimSpace(req.Mail) != "" {
		return nil, fmt.Errorf("supply mobile or mail, not both")
	}

	supplied := 0
	for _, v := range []string{req.Password, req.VCode, req.Code} {
		if v != "" {
			supplied++
		}
	}
	if supplied > 1 {
		return nil, fmt.Errorf("ambiguous credentials: supply exactly one of password, vcode, code")
	}

	switch {
	case req.Password != "":
		if identifier == "" {
			return nil, fmt.Errorf("mobile or mail required")
		}
		return auth.PasswordCredential{Identifier: identifier, Password: req.Password}, nil
	case req.VCode != "":
		if identifier == "" {
			return nil, fmt.Errorf("mobile or mail required")
		}
		return auth.CodeCredential{Identifier: identifier, Code: req.VCode}, nil
	case req.Code != "":
		return auth.WechatCredential{Code: req.Code}, nil
	}
	return nil, fmt.Errorf("no credential supplied")
}

// Login handles POST /v1/authorize/login.  The requesting application
// identifies itself through the appid header; the body selects the
// strategy.  On success the response carries the signed token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	cred, err := req.credential()
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, err := h.Auth.Authenticate(ctx, c.Request().Header.Get("appid"), cred)
	if err != nil {
		code := auth.HTTPStatus(err)
		if code == http.StatusInternalServerError {
			log.Printf("login failed: %v", err)
			return fail(c, code, "login failed")
		}
		return fail(c, code, err.Error())
	}
	return ok(c, echo.Map{"token": token})
}

type vcodeReq struct {
	Mobile string `json:"mobile"`
	Mail   string `json:"mail"`
}

// RequestVCode handles POST /v1/authorize/vcode: generate a six-digit
// code, cache it under the identifier for the configured TTL, and hand
// delivery to the gateway worker.  Re-requesting overwrites the pending
// code.  Dispatch failures are logged, not surfaced: the code is
// already pending and a broker hiccup must not reveal it.
func (h *AuthHandler) RequestVCode(c echo.Context) error {
	var req vcodeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	identifier := strings.TrimSpace(req.Mobile)
	channel := "sms"
	if identifier == "" {
		identifier = strings.ToLower(strings.TrimSpace(req.Mail))
		channel = "mail"
	}
	if identifier == "" {
		return fail(c, http.StatusBadRequest, "mobile or mail required")
	}

	code, err := sixDigits()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "code generation failed")
	}

	ttl := time.Duration(h.Cfg.VCodeTTLSec) * time.Second
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Codes.Put(ctx, identifier, code, ttl); err != nil {
		return fail(c, http.StatusInternalServerError, "code storage failed")
	}

	if h.Publish != nil {
		ev := queue.VCodeIssuedEvent{
			Identifier: identifier,
			Channel:    channel,
			Code:       code,
			TTLSeconds: h.Cfg.VCodeTTLSec,
			IssuedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("vcode dispatch failed for %s: %v", identifier, err)
		}
	}
	return ok(c, nil)
}

type registerReq struct {
	Mobile   string `json:"mobile"`
	Mail     string `json:"mail"`
	NickName string `json:"nickName"`
	Password string `json:"password"`
}

// Register handles POST /v1/authorize/register: create an account with a
// password credential.  At least one contact identifier is required so
// the account can log in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	mobile := strings.TrimSpace(req.Mobile)
	mail := strings.ToLower(strings.TrimSpace(req.Mail))
	if mobile == "" && mail == "" {
		return fail(c, http.StatusBadRequest, "mobile or mail required")
	}
	if len(req.Password) < 6 {
		return fail(c, http.StatusBadRequest, "password must be at least 6 characters")
	}

	digest, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "registration failed")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := model.User{Mobile: mobile, Mail: mail, NickName: req.NickName, Password: digest}
	if _, err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusConflict, "identifier already registered")
		}
		return fail(c, http.StatusInternalServerError, "registration failed")
	}
	return created(c, u)
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles PUT /v1/password (guarded).  The old password
// must verify against the stored digest; an account without one (wechat
// or vcode registrations) sets its first password with an empty
// oldPassword.  The new digest is always bcrypt, migrating legacy rows
// off the md5 scheme as a side effect.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if len(req.NewPassword) < 6 {
		return fail(c, http.StatusBadRequest, "password must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if u.Password != "" && !auth.VerifyPassword(u.Password, req.OldPassword, h.Cfg.PasswordSalt) {
		return fail(c, http.StatusUnauthorized, auth.ErrInvalidCredential.Error())
	}

	digest, err := auth.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	if err := h.Users.SetPassword(ctx, uid, digest); err != nil {
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return ok(c, nil)
}

// sixDigits returns a uniformly random "000000".."999999" code.
func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
