package webserver

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/storefront"
)

const (
	sessionName    = "hexshop"
	workspaceIDKey = "wsid"

	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash is a one-shot alert shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func getSession(c echo.Context) (*sessions.Session, error) {
	return session.Get(sessionName, c)
}

func saveSession(c echo.Context, sess *sessions.Session) {
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		zap.L().Warn("save session failed", zap.Error(err))
	}
}

// AddFlash queues an alert for the next page.
func AddFlash(c echo.Context, kind, msg string) {
	sess, err := getSession(c)
	if err != nil {
		zap.L().Warn("load session failed", zap.Error(err))
		return
	}
	sess.AddFlash(msg, kind)
	saveSession(c, sess)
}

// Flashes pops all queued alerts.
func Flashes(c echo.Context) []Flash {
	sess, err := getSession(c)
	if err != nil {
		return nil
	}
	var out []Flash
	for _, kind := range []string{FlashError, FlashSuccess} {
		for _, v := range sess.Flashes(kind) {
			if s, ok := v.(string); ok {
				out = append(out, Flash{Kind: kind, Message: s})
			}
		}
	}
	if len(out) > 0 {
		saveSession(c, sess)
	}
	return out
}

func tokenCookieName(c echo.Context) string {
	if server != nil && server.config.Session.CookieName != "" {
		return server.config.Session.CookieName
	}
	return "hexToken"
}

// SetToken stores the admin token in its own cookie, expiring with the
// remote session.
func SetToken(c echo.Context, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     tokenCookieName(c),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
	if server != nil {
		cookie.Secure = server.config.Session.Secure
	}
	c.SetCookie(cookie)
}

// ClearToken expires the token cookie.
func ClearToken(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName(c),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// ShopSession returns the request context for remote calls. The token is
// attached as is and never validated here.
func ShopSession(c echo.Context) shopapi.Session {
	cookie, err := c.Cookie(tokenCookieName(c))
	if err != nil {
		return shopapi.Session{}
	}
	return shopapi.Session{Token: cookie.Value}
}

// Workspace returns the workspace bound to this browser session, creating
// one on first use.
func Workspace(c echo.Context, reg *storefront.Registry) *storefront.Workspace {
	sess, err := getSession(c)
	if err != nil {
		zap.L().Warn("load session failed", zap.Error(err))
		return reg.Acquire("")
	}
	id, _ := sess.Values[workspaceIDKey].(string)
	ws := reg.Acquire(id)
	if ws.ID != id {
		sess.Values[workspaceIDKey] = ws.ID
		saveSession(c, sess)
	}
	return ws
}

// DropWorkspace forgets the workspace of this browser session.
func DropWorkspace(c echo.Context, reg *storefront.Registry) {
	sess, err := getSession(c)
	if err != nil {
		return
	}
	if id, ok := sess.Values[workspaceIDKey].(string); ok {
		reg.Drop(id)
	}
	delete(sess.Values, workspaceIDKey)
	saveSession(c, sess)
}
