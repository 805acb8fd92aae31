// Package webserver owns the echo instance of the shop console: middleware,
// sessions, template rendering and the route registration helpers the
// handler packages call from their init functions.
package webserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/config"
)

const (
	AdminPrefix   = "/admin"
	LoginPath     = "/admin/login"
	appContextKey = "appctx"
)

type WebServer struct {
	config *config.AppConfig
	root   *echo.Echo
	admin  *echo.Group
}

var server *WebServer

// Init builds the global server. appCtx is stored on every request and
// read back by the handler packages.
func Init(cfg *config.AppConfig, appCtx interface{}) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug

	r, err := NewRenderer(cfg.Web.Locale, cfg.Web.Currency)
	if err != nil {
		zap.S().Fatalf("load templates: %v", err)
	}
	e.Renderer = r
	e.Validator = NewValidator()
	e.HTTPErrorHandler = errorHandler

	store := sessions.NewCookieStore([]byte(cfg.Web.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionIdleTimeout().Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool { return c.Request().URL.Path == "/" },
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: newRequestID,
	}))
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("8M"))
	e.Use(session.Middleware(store))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appCtx)
			return next(c)
		}
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	server = &WebServer{
		config: cfg,
		root:   e,
		admin:  e.Group(AdminPrefix, requireToken(cfg.Session.CookieName)),
	}
	return server
}

// Echo returns the underlying echo instance; tests drive it with ServeHTTP.
func Echo() *echo.Echo {
	return server.root
}

// GetAppContext returns the value passed to Init.
func GetAppContext(c echo.Context) interface{} {
	return c.Get(appContextKey)
}

func GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET(path, h, m...)
}

func POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.POST(path, h, m...)
}

// AdminGET registers path below /admin. Requests without a session token
// are redirected to the login page.
func AdminGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.GET(path, h, m...)
}

func AdminPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.POST(path, h, m...)
}

// Listen serves until ctx is done, then shuts down gracefully.
func Listen(ctx context.Context) error {
	addr := server.config.ListenAddr()
	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("web console listening on %s", addr)
		errCh <- server.root.Start(addr)
	}()
	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zap.S().Info("web console shutting down")
		return server.root.Shutdown(sctx)
	}
}

// requireToken sends anonymous requests to the login page. The token is
// only checked for presence; the remote session check decides validity.
func requireToken(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := c.Request().URL.Path
			if p == LoginPath || strings.HasPrefix(p, LoginPath+"/") {
				return next(c)
			}
			if cookie, err := c.Cookie(cookieName); err != nil || cookie.Value == "" {
				AddFlash(c, FlashError, "please sign in")
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}
			return next(c)
		}
	}
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.Request().URL.Path),
			zap.String("request_id", RequestID(c)),
			zap.Error(err),
		)
	}
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		_ = c.JSON(code, echo.Map{"success": false, "message": msg})
		return
	}
	if rerr := c.Render(code, "error.html", echo.Map{"Code": code, "Message": msg}); rerr != nil {
		_ = c.String(code, msg)
	}
}
