package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfeicloud/cashbook-api/internal/model"
)

// fakeAppStore serves applications from a map keyed by app_id.
type fakeAppStore map[string]model.Application

func (s fakeAppStore) GetByAppID(_ context.Context, appID string) (model.Application, error) {
	app, ok := s[appID]
	if !ok {
		return model.Application{}, sql.ErrNoRows
	}
	return app, nil
}

func testApp(expiry time.Time) model.Application {
	return model.Application{
		ID:         1,
		AppID:      "wx-cashbook",
		AppName:    "cashbook",
		SecretKey:  "super-secret",
		ExpiryDate: expiry,
	}
}

func TestIssueTokenClaims(t *testing.T) {
	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	app := testApp(expiry)

	raw, err := IssueToken(42, app)
	require.NoError(t, err)

	tok, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return []byte(app.SecretKey), nil
	})
	require.NoError(t, err)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Len(t, claims, 2, "token must carry exactly aud and exp")
	assert.EqualValues(t, 42, claims["aud"])
	assert.EqualValues(t, expiry.Unix(), claims["exp"])
}

func TestVerifyRoundtrip(t *testing.T) {
	app := testApp(time.Now().Add(time.Hour))
	v := &Verifier{Apps: fakeAppStore{app.AppID: app}}

	raw, err := IssueToken(42, app)
	require.NoError(t, err)

	uid, err := v.Verify(context.Background(), app.AppID, raw)
	require.NoError(t, err)
	assert.EqualValues(t, 42, uid)
}

func TestVerifyUnknownApplication(t *testing.T) {
	app := testApp(time.Now().Add(time.Hour))
	v := &Verifier{Apps: fakeAppStore{}}

	raw, err := IssueToken(42, app)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "nope", raw)
	assert.ErrorIs(t, err, ErrUnauthorizedClient)
}

func TestVerifyWrongSecret(t *testing.T) {
	app := testApp(time.Now().Add(time.Hour))
	other := app
	other.SecretKey = "different-secret"
	v := &Verifier{Apps: fakeAppStore{app.AppID: other}}

	raw, err := IssueToken(42, app)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), app.AppID, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbageToken(t *testing.T) {
	app := testApp(time.Now().Add(time.Hour))
	v := &Verifier{Apps: fakeAppStore{app.AppID: app}}

	_, err := v.Verify(context.Background(), app.AppID, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// Every token of an application expires at the application's expiry
// instant, regardless of when it was issued.
func TestVerifyExpiryBoundary(t *testing.T) {
	expiry := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	app := testApp(expiry)

	raw, err := IssueToken(42, app)
	require.NoError(t, err)

	clock := expiry.Add(-time.Second)
	v := &Verifier{
		Apps: fakeAppStore{app.AppID: app},
		Now:  func() time.Time { return clock },
	}

	uid, err := v.Verify(context.Background(), app.AppID, raw)
	require.NoError(t, err)
	assert.EqualValues(t, 42, uid)

	clock = expiry.Add(time.Second)
	_, err = v.Verify(context.Background(), app.AppID, raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyExpiredAtIssuance(t *testing.T) {
	// An application whose expiry date already passed still issues
	// tokens; the guard must report them as expired, not malformed.
	app := testApp(time.Now().Add(-time.Hour))
	v := &Verifier{Apps: fakeAppStore{app.AppID: app}}

	raw, err := IssueToken(42, app)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), app.AppID, raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssueTokenDeterministic(t *testing.T) {
	// Claims depend only on (user, application), so two logins within
	// the same application yield the same token bytes.
	app := testApp(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	a, err := IssueToken(7, app)
	require.NoError(t, err)
	b, err := IssueToken(7, app)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAudienceClaimShapes(t *testing.T) {
	uid, err := audience(jwt.MapClaims{"aud": float64(99)})
	require.NoError(t, err)
	assert.EqualValues(t, 99, uid)

	uid, err = audience(jwt.MapClaims{"aud": "123"})
	require.NoError(t, err)
	assert.EqualValues(t, 123, uid)

	_, err = audience(jwt.MapClaims{"aud": "abc"})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = audience(jwt.MapClaims{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
