// Package wechat implements the identity bridge to the WeChat
// code2Session API: a one-time front-end js_code is exchanged for the
// user's stable openid, addressed with the calling application's own
// appid and secret.
package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production WeChat API host.
const DefaultBaseURL = "https://api.weixin.qq.com"

// BridgeError is a structured failure reported by the WeChat API.  The
// reason is a human-readable mapping of the known error codes and is
// safe to surface to the client; the numeric code is kept for logs.
type BridgeError struct {
	Code   int
	Reason string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("wechat: %s (errcode %d)", e.Reason, e.Code)
}

// Known errcode values of the code2Session endpoint.  Anything else maps
// to a generic verification failure.
var reasons = map[int]string{
	-1:    "wechat system busy",
	40029: "invalid code",
	45011: "rate limited, slow down",
	40226: "wechat user restricted",
}

func reasonFor(code int) string {
	if r, ok := reasons[code]; ok {
		return r
	}
	return "wechat verification failed"
}

// Client calls the WeChat API.  One outbound request per exchange, no
// retry: a transient network failure surfaces to the caller unchanged.
type Client struct {
	HTTP *http.Client
	Base string
}

// New returns a client against the given base URL; an empty base selects
// the production host.
func New(base string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		HTTP: &http.Client{Timeout: 10 * time.Second},
		Base: base,
	}
}

type sessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// CodeToSession exchanges js_code for the user's openid on behalf of the
// application identified by appID/secret.
func (c *Client) CodeToSession(ctx context.Context, appID, secret, jsCode string) (string, error) {
	q := url.Values{}
	q.Set("appid", appID)
	q.Set("secret", secret)
	q.Set("js_code", jsCode)
	q.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.Base+"/sns/jscode2session?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("wechat: code2session request: %w", err)
	}
	defer resp.Body.Close()

	// The endpoint answers 200 even for errors; failures are carried in
	// the errcode field of the JSON body.
	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("wechat: decode code2session response: %w", err)
	}
	if sr.ErrCode != 0 {
		return "", &BridgeError{Code: sr.ErrCode, Reason: reasonFor(sr.ErrCode)}
	}
	return sr.OpenID, nil
}
