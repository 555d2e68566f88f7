package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// IssueToken mints the signed login token for a resolved (user,
// application) pair.  The claims are exactly {aud, exp}: audience is the
// user id and expiry is the application's fixed expiry instant: every
// token of an application dies at the same moment, regardless of when it
// was issued.  Signing is HS256 keyed with the application's secret.
func IssueToken(userID uint64, app model.Application) (string, error) {
	claims := jwt.MapClaims{
		"aud": userID,
		"exp": app.ExpiryDate.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(app.SecretKey))
}

// Verifier is the access guard.  It is plain Go, not middleware of any
// framework, so it can wrap any operation that needs an authenticated
// user id; the Echo adapter lives in internal/middleware.
type Verifier struct {
	Apps AppStore
	// Now supplies the verification clock; defaults to time.Now.
	Now func() time.Time
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Verify resolves the claimed application, checks the token signature
// against its secret and the expiry claim against the current time, and
// returns the authenticated user id from the audience claim.
//
// The explicit expiry comparison is kept on top of the library's own
// validation: the claim equals the application's expiry date, which may
// already lie in the past at issuance time, and the guard must report
// that case as an expired credential rather than a malformed one.
func (v *Verifier) Verify(ctx context.Context, appID, raw string) (uint64, error) {
	app, err := v.Apps.GetByAppID(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUnauthorizedClient
		}
		return 0, err
	}

	parser := jwt.NewParser(jwt.WithTimeFunc(v.now))
	tok, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(app.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return 0, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, ErrInvalidToken
	}
	if v.now().After(exp.Time) {
		return 0, ErrTokenExpired
	}

	return audience(claims)
}

// audience extracts the user id from the aud claim.  Numbers decode as
// float64 from JSON; a decimal string is accepted as well.
func audience(claims jwt.MapClaims) (uint64, error) {
	switch aud := claims["aud"].(type) {
	case float64:
		return uint64(aud), nil
	case string:
		id, err := strconv.ParseUint(aud, 10, 64)
		if err != nil {
			return 0, ErrInvalidToken
		}
		return id, nil
	}
	return 0, ErrInvalidToken
}
