package shopapi

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/talkincode/hexshop/internal/domain"
)

// Signin exchanges admin credentials for a session token.
func (c *Client) Signin(ctx context.Context, creds domain.Credentials) (*domain.SigninResult, error) {
	var res domain.SigninResult
	err := c.do(ctx, Session{}, "signin", request{
		method: http.MethodPost,
		url:    c.rootURL("/admin/signin"),
		json:   creds,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, errors.New("shopapi signin: empty token in response")
	}
	return &res, nil
}

// CheckSession is the lightweight check used to decide whether the token
// in sess is still accepted by the remote API.
func (c *Client) CheckSession(ctx context.Context, sess Session) error {
	if !sess.Authenticated() {
		return &APIError{Op: "check session", Status: http.StatusUnauthorized, Message: "no token"}
	}
	return c.do(ctx, sess, "check session", request{
		method: http.MethodPost,
		url:    c.rootURL("/api/user/check"),
	}, nil)
}

func (c *Client) Logout(ctx context.Context, sess Session) error {
	return c.do(ctx, sess, "logout", request{
		method: http.MethodPost,
		url:    c.rootURL("/logout"),
	}, nil)
}
