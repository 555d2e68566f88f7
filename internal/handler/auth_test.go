package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfeicloud/cashbook-api/internal/auth"
	"github.com/perfeicloud/cashbook-api/internal/config"
	"github.com/perfeicloud/cashbook-api/internal/model"
	"github.com/perfeicloud/cashbook-api/internal/queue"
	"github.com/perfeicloud/cashbook-api/internal/vcode"
)

type fakeAppStore map[string]model.Application

func (s fakeAppStore) GetByAppID(_ context.Context, appID string) (model.Application, error) {
	app, ok := s[appID]
	if !ok {
		return model.Application{}, sql.ErrNoRows
	}
	return app, nil
}

type fakeUserStore map[string]model.User

func (s fakeUserStore) GetByMobile(_ context.Context, mobile string) (model.User, error) {
	u, ok := s[mobile]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s fakeUserStore) GetByMail(ctx context.Context, mail string) (model.User, error) {
	return s.GetByMobile(ctx, mail)
}

func (s fakeUserStore) GetByOpenID(ctx context.Context, openid string) (model.User, error) {
	return s.GetByMobile(ctx, openid)
}

func newAuthHandler(t *testing.T) (*AuthHandler, *vcode.MemoryStore) {
	t.Helper()
	const salt = "perfei#md5"

	codes := vcode.NewMemoryStore()
	app := model.Application{
		ID:         1,
		AppID:      "wx-cashbook",
		SecretKey:  "super-secret",
		ExpiryDate: time.Now().Add(time.Hour),
	}
	users := fakeUserStore{
		"13800000001": {ID: 1, Mobile: "13800000001", Password: auth.LegacyDigest(salt, "hunter2")},
	}
	a := &auth.Authorizer{
		Apps:  fakeAppStore{app.AppID: app},
		Users: users,
		Codes: codes,
		Salt:  salt,
	}
	cfg := config.Config{VCodeTTLSec: 300}
	h := &AuthHandler{Cfg: cfg, Auth: a, Codes: codes}
	return h, codes
}

func postJSON(e *echo.Echo, path, appID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if appID != "" {
		req.Header.Set("appid", appID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newAuthEcho(h *AuthHandler) *echo.Echo {
	e := echo.New()
	e.POST("/v1/authorize/login", h.Login)
	e.POST("/v1/authorize/vcode", h.RequestVCode)
	return e
}

func TestLoginPassword(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/login", "wx-cashbook",
		`{"mobile":"13800000001","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Code int `json:"code"`
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Code)
	assert.NotEmpty(t, body.Data.Token)
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/login", "wx-cashbook",
		`{"mobile":"13800000001","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.ErrInvalidCredential.Error())
}

func TestLoginUnknownUser(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/login", "wx-cashbook",
		`{"mobile":"13899999999","password":"hunter2"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginUnknownApplication(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/login", "rogue-client",
		`{"mobile":"13800000001","password":"hunter2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.ErrUnauthorizedClient.Error())
}

func TestLoginAmbiguousBody(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/login", "wx-cashbook",
		`{"mobile":"13800000001","password":"hunter2","vcode":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(e, "/v1/authorize/login", "wx-cashbook",
		`{"mobile":"13800000001","mail":"a@b.c","password":"hunter2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(e, "/v1/authorize/login", "wx-cashbook", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginVCode(t *testing.T) {
	h, codes := newAuthHandler(t)
	e := newAuthEcho(h)
	require.NoError(t, codes.Put(context.Background(), "13800000001", "123456", time.Minute))

	rec := postJSON(e, "/v1/authorize/login", "wx-cashbook",
		`{"mobile":"13800000001","vcode":"123456"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(e, "/v1/authorize/login", "wx-cashbook",
		`{"mobile":"13800000001","vcode":"000000"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.ErrCodeMismatch.Error())
}

func TestRequestVCode(t *testing.T) {
	h, codes := newAuthHandler(t)
	var published []queue.VCodeIssuedEvent
	h.Publish = func(_ context.Context, ev queue.VCodeIssuedEvent) error {
		published = append(published, ev)
		return nil
	}
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/vcode", "wx-cashbook", `{"mobile":"13800000001"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	code, err := codes.Get(context.Background(), "13800000001")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	require.Len(t, published, 1)
	assert.Equal(t, "13800000001", published[0].Identifier)
	assert.Equal(t, "sms", published[0].Channel)
	assert.Equal(t, code, published[0].Code)
	assert.Equal(t, 300, published[0].TTLSeconds)

	// The response never echoes the code.
	assert.NotContains(t, rec.Body.String(), code)
}

func TestRequestVCodeMailChannel(t *testing.T) {
	h, _ := newAuthHandler(t)
	var published []queue.VCodeIssuedEvent
	h.Publish = func(_ context.Context, ev queue.VCodeIssuedEvent) error {
		published = append(published, ev)
		return nil
	}
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/vcode", "wx-cashbook", `{"mail":"Bob@Example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, published, 1)
	assert.Equal(t, "bob@example.com", published[0].Identifier)
	assert.Equal(t, "mail", published[0].Channel)
}

func TestRequestVCodeDispatchFailureStillOK(t *testing.T) {
	h, codes := newAuthHandler(t)
	h.Publish = func(context.Context, queue.VCodeIssuedEvent) error {
		return errors.New("broker down")
	}
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/vcode", "wx-cashbook", `{"mobile":"13800000001"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := codes.Get(context.Background(), "13800000001")
	assert.NoError(t, err, "the code is pending even when dispatch fails")
}

func TestRequestVCodeMissingIdentifier(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := newAuthEcho(h)

	rec := postJSON(e, "/v1/authorize/vcode", "wx-cashbook", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
