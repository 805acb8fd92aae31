package webserver

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/bytes"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/storefront"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer keeps one template set per page, each parsed together with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(locale, currency string) (*Renderer, error) {
	funcs := TemplateFuncs(locale, currency)
	entries, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range entries {
		if file == layoutFile {
			continue
		}
		name := path.Base(file)
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// TemplateFuncs are available to every page.
func TemplateFuncs(locale, currency string) template.FuncMap {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag)
	return template.FuncMap{
		"money": func(v float64) string {
			return currency + " " + printer.Sprintf("%.0f", v)
		},
		"number": func(v interface{}) string {
			return printer.Sprint(v)
		},
		"bytes": func(n int64) string {
			return bytes.Format(n)
		},
		"pager": func(info domain.PageInfo) storefront.Pagination {
			return storefront.RenderPagination(info)
		},
		// pageHref is empty for a disabled control. query is a template.URL
		// on the catalog and a plain string elsewhere.
		"pageHref": func(p storefront.Pagination, ctrl storefront.PageControl, base string, query interface{}) template.URL {
			var q string
			switch v := query.(type) {
			case template.URL:
				q = string(v)
			case string:
				q = v
			}
			var href template.URL
			p.Invoke(ctrl, func(page int) {
				href = template.URL(base + "?page=" + strconv.Itoa(page) + q)
			})
			return href
		},
		"cartView": storefront.RenderCart,
		"qtyOptions": storefront.QtyOptions,
		"enabledLabel": func(p domain.Product) string {
			if p.Enabled() {
				return "enabled"
			}
			return "disabled"
		},
		"join": strings.Join,
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"dict": func(kv ...interface{}) (map[string]interface{}, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]interface{}, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}
}

// Render renders a page with the pending flashes and request id merged
// into data.
func Render(c echo.Context, code int, name string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["Flashes"] = Flashes(c)
	data["RequestID"] = RequestID(c)
	data["Path"] = c.Request().URL.Path
	return c.Render(code, name, data)
}
