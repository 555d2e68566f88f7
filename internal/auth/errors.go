// Package auth implements the authorization core: multi-strategy login,
// per-application token issuance and the token guard protecting every
// resource route.  It talks to the credential store, the verification
// code cache and the WeChat identity bridge through small interfaces so
// the strategies stay testable without a database.
package auth

import (
	"errors"
	"net/http"

	"github.com/perfeicloud/cashbook-api/internal/wechat"
)

// Domain failures surfaced by Authenticate and Verify.  Handlers map
// them to HTTP statuses with HTTPStatus and pass the message through to
// the client unchanged.
var (
	// ErrUnauthorizedClient means the appid did not resolve to a
	// registered application.  It is checked before any strategy runs.
	ErrUnauthorizedClient = errors.New("unauthorized client")

	// ErrUserNotFound means the supplied identifier matched no user.
	ErrUserNotFound = errors.New("user not registered")

	// ErrInvalidCredential means the password digest did not match.
	ErrInvalidCredential = errors.New("wrong password")

	// ErrCodeExpired means no verification code is pending for the
	// identifier (never issued, expired, or overwritten).
	ErrCodeExpired = errors.New("verification code expired or missing")

	// ErrCodeMismatch means a code is pending but the supplied value
	// differs.
	ErrCodeMismatch = errors.New("wrong verification code")

	// ErrInvalidToken covers every token verification failure that is
	// not an expiry: malformed token, wrong signature, wrong algorithm.
	ErrInvalidToken = errors.New("invalid login token")

	// ErrTokenExpired means the token's exp claim has elapsed.
	ErrTokenExpired = errors.New("login token expired")
)

// HTTPStatus maps a domain error to the status code of the response
// envelope.  Bridge failures keep their human-readable reason but always
// answer 401; anything unrecognized is an internal fault.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorizedClient),
		errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrCodeExpired),
		errors.Is(err, ErrCodeMismatch),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	}
	var bridgeErr *wechat.BridgeError
	if errors.As(err, &bridgeErr) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
