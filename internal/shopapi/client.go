// Package shopapi is the client for the remote shop REST API. Every call
// takes an explicit Session; the client itself holds no per-user state.
package shopapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Session is the request context threaded into each call. Token is sent
// as-is in the Authorization header and never validated locally.
type Session struct {
	Token string
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIPath    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the remote shop API. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiPath string
	hc      *http.Client
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiPath: strings.Trim(cfg.APIPath, "/"),
		hc:      hc,
	}
}

// shopURL builds /api/{path}/... URLs.
func (c *Client) shopURL(format string, a ...interface{}) string {
	return c.baseURL + "/api/" + c.apiPath + fmt.Sprintf(format, a...)
}

func (c *Client) rootURL(p string) string {
	return c.baseURL + p
}

type request struct {
	method string
	url    string
	query  gout.H
	json   interface{}
	form   gout.H
}

type envelope struct {
	Success *bool       `json:"success"`
	Message interface{} `json:"message"`
}

func (c *Client) flow(method, url string) *dataflow.DataFlow {
	g := gout.New(c.hc)
	switch method {
	case http.MethodPost:
		return g.POST(url)
	case http.MethodPut:
		return g.PUT(url)
	case http.MethodDelete:
		return g.DELETE(url)
	default:
		return g.GET(url)
	}
}

func (c *Client) do(ctx context.Context, sess Session, op string, req request, out interface{}) error {
	var (
		raw  []byte
		code int
	)
	df := c.flow(req.method, req.url).WithContext(ctx)
	if sess.Token != "" {
		df = df.SetHeader(gout.H{"Authorization": sess.Token})
	}
	if req.query != nil {
		df = df.SetQuery(req.query)
	}
	if req.json != nil {
		df = df.SetJSON(req.json)
	}
	if req.form != nil {
		df = df.SetForm(req.form)
	}

	start := time.Now()
	if err := df.BindBody(&raw).Code(&code).Do(); err != nil {
		zap.L().Error("shop api request failed",
			zap.String("op", op),
			zap.String("method", req.method),
			zap.String("url", req.url),
			zap.Error(err),
		)
		return errors.Wrapf(err, "shopapi %s", op)
	}
	zap.L().Debug("shop api request",
		zap.String("op", op),
		zap.String("method", req.method),
		zap.String("url", req.url),
		zap.Int("status", code),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if code >= http.StatusBadRequest || (decodeErr == nil && env.Success != nil && !*env.Success) {
		apiErr := &APIError{Op: op, Status: code, Message: messageText(env.Message)}
		zap.L().Warn("shop api rejected request",
			zap.String("op", op),
			zap.Int("status", code),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return errors.Wrapf(decodeErr, "shopapi %s: decode response", op)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "shopapi %s: decode response", op)
	}
	return nil
}

// messageText flattens the remote "message" field, which is either a string
// or a list of strings.
func messageText(v interface{}) string {
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		return m
	case []interface{}:
		parts := make([]string, 0, len(m))
		for _, item := range m {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(m)
	}
}
