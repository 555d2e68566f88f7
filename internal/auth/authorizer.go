package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/perfeicloud/cashbook-api/internal/model"
	"github.com/perfeicloud/cashbook-api/internal/vcode"
)

// UserStore is the slice of the credential store the strategies need.
type UserStore interface {
	GetByMobile(ctx context.Context, mobile string) (model.User, error)
	GetByMail(ctx context.Context, mail string) (model.User, error)
	GetByOpenID(ctx context.Context, openid string) (model.User, error)
}

// AppStore resolves client applications by their public app_id.
type AppStore interface {
	GetByAppID(ctx context.Context, appID string) (model.Application, error)
}

// CodeStore reads pending verification codes.  Misses are reported as
// vcode.ErrNotFound.
type CodeStore interface {
	Get(ctx context.Context, identifier string) (string, error)
}

// IdentityExchanger trades a one-time front-end code for a stable
// external identity id, calling on behalf of a specific application.
type IdentityExchanger interface {
	CodeToSession(ctx context.Context, appID, secret, jsCode string) (string, error)
}

// Authorizer orchestrates the three login strategies.  Authenticate is a
// pure pipeline: resolve the application, run the strategy, mint the
// token.  There is no partially-built state between the steps.
type Authorizer struct {
	Apps   AppStore
	Users  UserStore
	Codes  CodeStore
	Bridge IdentityExchanger
	Salt   string // fixed salt of the legacy password digest
}

// Authenticate resolves the application, authenticates the user with the
// supplied credential and returns a signed token bound to the pair.
//
// Application resolution always happens first: an unknown appid is
// rejected with ErrUnauthorizedClient before any strategy logic runs,
// including cache and bridge calls.
func (a *Authorizer) Authenticate(ctx context.Context, appID string, cred Credential) (string, error) {
	app, err := a.Apps.GetByAppID(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUnauthorizedClient
		}
		return "", err
	}

	var user model.User
	switch c := cred.(type) {
	case PasswordCredential:
		user, err = a.checkPassword(ctx, c)
	case CodeCredential:
		user, err = a.checkCode(ctx, c)
	case WechatCredential:
		user, err = a.checkWechat(ctx, app, c)
	default:
		return "", fmt.Errorf("unsupported credential type %T", cred)
	}
	if err != nil {
		return "", err
	}

	return IssueToken(user.ID, app)
}

// checkPassword looks the user up by identifier and compares the stored
// digest.  The NotFound/InvalidCredential distinction is deliberate and
// is the only information the response leaks about the identifier.
func (a *Authorizer) checkPassword(ctx context.Context, c PasswordCredential) (model.User, error) {
	user, err := a.lookup(ctx, c.Identifier)
	if err != nil {
		return model.User{}, err
	}
	if !VerifyPassword(user.Password, c.Password, a.Salt) {
		return model.User{}, ErrInvalidCredential
	}
	return user, nil
}

// checkCode compares the supplied verification code against the pending
// one.  A matched code is left in the cache until its TTL runs out, so
// a flaky client may retry the same login.
func (a *Authorizer) checkCode(ctx context.Context, c CodeCredential) (model.User, error) {
	pending, err := a.Codes.Get(ctx, c.Identifier)
	if err != nil {
		if errors.Is(err, vcode.ErrNotFound) {
			return model.User{}, ErrCodeExpired
		}
		return model.User{}, err
	}
	if pending != c.Code {
		return model.User{}, ErrCodeMismatch
	}
	return a.lookup(ctx, c.Identifier)
}

// checkWechat exchanges the front-end code for an openid through the
// bridge, addressed with the application's own credentials, then maps
// the openid to a user.
func (a *Authorizer) checkWechat(ctx context.Context, app model.Application, c WechatCredential) (model.User, error) {
	openid, err := a.Bridge.CodeToSession(ctx, app.AppID, app.SecretKey, c.Code)
	if err != nil {
		return model.User{}, err
	}
	user, err := a.Users.GetByOpenID(ctx, openid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

// lookup resolves an identifier to a user record.  Identifiers
// containing '@' are mail addresses, anything else is a mobile number;
// both are exact-match lookups against unique columns.
func (a *Authorizer) lookup(ctx context.Context, identifier string) (model.User, error) {
	var (
		user model.User
		err  error
	)
	if strings.ContainsRune(identifier, '@') {
		user, err = a.Users.GetByMail(ctx, identifier)
	} else {
		user, err = a.Users.GetByMobile(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
