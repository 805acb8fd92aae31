// Package apptest runs the web console against the fake remote shop API
// for handler tests.
package apptest

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/talkincode/hexshop/config"
	"github.com/talkincode/hexshop/internal/app"
	"github.com/talkincode/hexshop/internal/shopapi/shopapitest"
	"github.com/talkincode/hexshop/internal/webserver"
)

// Console is a running web console with a browser-like client that keeps
// cookies and does not follow redirects.
type Console struct {
	App    *app.Application
	Remote *shopapitest.Server
	Server *httptest.Server
	Client *http.Client
	Config *config.AppConfig
}

// Response is a fully read HTTP response.
type Response struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

// New starts the console. register installs the routes under test.
func New(t testing.TB, register ...func()) *Console {
	t.Helper()
	remote := shopapitest.NewServer("hexshop")
	t.Cleanup(remote.Close)

	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Shop.BaseURL = remote.URL
	cfg.Shop.APIPath = "hexshop"
	cfg.Shop.Timeout = 5

	a := app.NewApplication(cfg)
	webserver.Init(cfg, a)
	for _, fn := range register {
		fn()
	}
	srv := httptest.NewServer(webserver.Echo())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &Console{App: a, Remote: remote, Server: srv, Client: client, Config: cfg}
}

// SetToken puts a token cookie in the client as if a login had happened.
func (c *Console) SetToken(token string) {
	u, _ := url.Parse(c.Server.URL)
	c.Client.Jar.SetCookies(u, []*http.Cookie{{Name: c.Config.Session.CookieName, Value: token, Path: "/"}})
}

// Token returns the token cookie the client currently holds.
func (c *Console) Token() string {
	u, _ := url.Parse(c.Server.URL)
	for _, ck := range c.Client.Jar.Cookies(u) {
		if ck.Name == c.Config.Session.CookieName {
			return ck.Value
		}
	}
	return ""
}

func (c *Console) Get(t testing.TB, path string) Response {
	t.Helper()
	return c.do(t, http.MethodGet, path, "", nil)
}

func (c *Console) PostForm(t testing.TB, path string, form url.Values) Response {
	t.Helper()
	return c.do(t, http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// Upload posts one file in the given multipart field.
func (c *Console) Upload(t testing.TB, path, field, filename string, data []byte) Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("multipart: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	return c.do(t, http.MethodPost, path, mw.FormDataContentType(), &buf)
}

func (c *Console) do(t testing.TB, method, path, contentType string, body io.Reader) Response {
	t.Helper()
	req, err := http.NewRequest(method, c.Server.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := c.Client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	return Response{
		Status:   res.StatusCode,
		Location: res.Header.Get("Location"),
		Header:   res.Header,
		Body:     string(data),
	}
}
