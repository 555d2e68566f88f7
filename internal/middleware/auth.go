package middleware // middleware provides shared request processing for handlers

import (
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/perfeicloud/cashbook-api/internal/auth"
)

// userIDKey is the context key the guard stores the authenticated user
// id under.
const userIDKey = "user_id"

// TokenGuard returns an Echo middleware adapter around auth.Verifier.
// It reads the application id from the `appid` header and the login
// token from the Authorization header, verifies both, and stores the
// authenticated user id in the request context for handlers to read via
// UserID().  Any verification failure answers with the domain error's
// status and message in the response envelope.
func TokenGuard(v *auth.Verifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            appID := c.Request().Header.Get("appid")

            raw := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(raw, "Bearer ") {
                return respondError(c, auth.ErrInvalidToken)
            }
            raw = strings.TrimPrefix(raw, "Bearer ")

            uid, err := v.Verify(c.Request().Context(), appID, raw)
            if err != nil {
                return respondError(c, err)
            }

            c.Set(userIDKey, uid)
            return next(c)
        }
    }
}

// UserID returns the authenticated user id stored by TokenGuard.  The
// second result is false on routes the guard does not wrap.
func UserID(c echo.Context) (uint64, bool) {
    uid, ok := c.Get(userIDKey).(uint64)
    return uid, ok
}

// respondError renders a domain error in the {code,msg} envelope shared
// with the handlers.
func respondError(c echo.Context, err error) error {
    code := auth.HTTPStatus(err)
    return c.JSON(code, echo.Map{"code": code, "msg": err.Error()})
}
