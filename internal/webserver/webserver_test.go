package webserver

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/hexshop/config"
	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/storefront"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	Init(cfg, nil)
	AdminGET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	AdminGET("/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "login")
	})
	return Echo()
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected healthz response %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("request id header missing")
	}
}

func TestRequireToken(t *testing.T) {
	e := newTestServer(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != LoginPath {
		t.Fatalf("anonymous request must go to login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	rec = serve(e, httptest.NewRequest(http.MethodGet, LoginPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("login page must stay reachable, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: "hexToken", Value: "t"})
	rec = serve(e, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("token holder must pass, got %d", rec.Code)
	}
}

func TestErrorHandlerNegotiates(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec := serve(e, req)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Fatalf("expected json 404, got %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "<html") {
		t.Fatalf("expected html 404, got %d", rec.Code)
	}
}

func TestRendererLoadsEveryPage(t *testing.T) {
	r, err := NewRenderer("zh-TW", "NT$")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	for _, name := range []string{"error.html", "products.html", "product.html", "cart.html", "login.html",
		"admin_products.html", "admin_product_form.html", "admin_product_delete.html"} {
		if _, ok := r.pages[name]; !ok {
			t.Errorf("page %s not loaded", name)
		}
	}
	if _, ok := r.pages["layout.html"]; ok {
		t.Errorf("layout must not be a page")
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := TemplateFuncs("en", "NT$")

	if got := funcs["money"].(func(float64) string)(120); got != "NT$ 120" {
		t.Fatalf("money = %q", got)
	}
	if got := funcs["bytes"].(func(int64) string)(3 * 1024 * 1024); !strings.HasSuffix(got, "MB") {
		t.Fatalf("bytes = %q", got)
	}
	if got := funcs["seq"].(func(int) []int)(3); len(got) != 3 || got[2] != 2 {
		t.Fatalf("seq = %v", got)
	}
	dict := funcs["dict"].(func(...interface{}) (map[string]interface{}, error))
	if _, err := dict("a"); err == nil {
		t.Fatalf("odd dict arguments must fail")
	}
	if m, err := dict("a", 1); err != nil || m["a"] != 1 {
		t.Fatalf("dict = %v %v", m, err)
	}
	label := funcs["enabledLabel"].(func(domain.Product) string)
	if label(domain.Product{IsEnabled: 1}) != "enabled" || label(domain.Product{}) != "disabled" {
		t.Fatalf("enabled label wrong")
	}
}

func TestPaginationPartialKeepsQuery(t *testing.T) {
	r, err := NewRenderer("en", "NT$")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	var sb strings.Builder
	err = r.pages["products.html"].ExecuteTemplate(&sb, "pagination", map[string]interface{}{
		"Pager": storefront.RenderPagination(domain.PageInfo{TotalPages: 3, CurrentPage: 1, HasNext: true}),
		"Base":  "/products",
		"Query": template.URL("&category=tea"),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(sb.String(), `href="/products?page=2&amp;category=tea"`) {
		t.Fatalf("query lost in pager links:\n%s", sb.String())
	}
}

func TestPageHrefSkipsDisabledControls(t *testing.T) {
	href := TemplateFuncs("en", "NT$")["pageHref"].(func(storefront.Pagination, storefront.PageControl, string, interface{}) template.URL)
	p := storefront.RenderPagination(domain.PageInfo{TotalPages: 2, CurrentPage: 1, HasNext: true})

	if got := href(p, p.Prev, "/admin/products", ""); got != "" {
		t.Fatalf("disabled control must have no link, got %q", got)
	}
	if got := href(p, p.Next, "/admin/products", ""); got != "/admin/products?page=2" {
		t.Fatalf("next = %q", got)
	}
	if got := href(p, p.Pages[0], "/products", template.URL("&category=tea")); got != "/products?page=1&category=tea" {
		t.Fatalf("page 1 = %q", got)
	}
}
