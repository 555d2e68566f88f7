package wechat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := New(server.URL)
	c.HTTP = server.Client()
	return c
}

func TestCodeToSession(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sns/jscode2session", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"appid":      q.Get("appid"),
			"secret":     q.Get("secret"),
			"js_code":    q.Get("js_code"),
			"grant_type": q.Get("grant_type"),
		}
		w.Write([]byte(`{"openid":"o6_bmjrPTlm6_2sgVt7hMZOPfL2M","session_key":"sk","unionid":"u"}`))
	})

	openid, err := c.CodeToSession(context.Background(), "wx-app", "secret", "js-code")
	require.NoError(t, err)
	assert.Equal(t, "o6_bmjrPTlm6_2sgVt7hMZOPfL2M", openid)
	assert.Equal(t, map[string]string{
		"appid":      "wx-app",
		"secret":     "secret",
		"js_code":    "js-code",
		"grant_type": "authorization_code",
	}, gotQuery)
}

func TestCodeToSessionErrcodes(t *testing.T) {
	tests := []struct {
		errcode int
		reason  string
	}{
		{-1, "wechat system busy"},
		{40029, "invalid code"},
		{45011, "rate limited, slow down"},
		{40226, "wechat user restricted"},
		{99999, "wechat verification failed"},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				// The endpoint reports failures in-band with HTTP 200.
				fmt.Fprintf(w, `{"errcode":%d,"errmsg":"upstream message"}`, tt.errcode)
			})

			_, err := c.CodeToSession(context.Background(), "wx-app", "secret", "bad")
			var be *BridgeError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.errcode, be.Code)
			assert.Equal(t, tt.reason, be.Reason)
		})
	}
}

func TestCodeToSessionMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	})

	_, err := c.CodeToSession(context.Background(), "wx-app", "secret", "js-code")
	require.Error(t, err)
	var be *BridgeError
	assert.False(t, errors.As(err, &be), "decode failures are not bridge errors")
}

func TestNewDefaultsToProductionHost(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.Base)
}
