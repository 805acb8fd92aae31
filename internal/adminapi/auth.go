package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/storefront"
	"github.com/talkincode/hexshop/internal/webserver"
)

type loginForm struct {
	Username string `form:"username" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func registerAuthRoutes() {
	webserver.AdminGET("/login", loginPage)
	webserver.AdminPOST("/login", login)
	webserver.AdminPOST("/logout", logout)
}

func loginPage(c echo.Context) error {
	return webserver.Render(c, http.StatusOK, "login.html", echo.Map{
		"Username": "",
		"Errors":   map[string]string{},
	})
}

func login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return alert(c, webserver.LoginPath, "invalid sign in request", err)
	}
	form.Username = strings.TrimSpace(form.Username)
	if err := c.Validate(&form); err != nil {
		var verr *storefront.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		return webserver.Render(c, http.StatusUnprocessableEntity, "login.html", echo.Map{
			"Username": form.Username,
			"Errors":   verr.Fields,
		})
	}

	res, err := GetAppContext(c).ShopAPI().Signin(c.Request().Context(), domain.Credentials{
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		return alert(c, webserver.LoginPath, "sign in failed", err)
	}

	expires := parseExpiry(res.Expired)
	webserver.SetToken(c, res.Token, expires)
	workspace(c).Products.Unmount()
	zap.L().Info("admin signed in",
		zap.String("username", form.Username),
		zap.Time("expires", expires),
	)
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

// parseExpiry reads the remote expiry, unix milliseconds or a date string.
// The zero time makes the token cookie a session cookie.
func parseExpiry(v interface{}) time.Time {
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		zap.L().Warn("unparsable token expiry", zap.String("expired", s), zap.Error(err))
		return time.Time{}
	}
	return t
}

func logout(c echo.Context) error {
	sess := webserver.ShopSession(c)
	if err := GetAppContext(c).ShopAPI().Logout(c.Request().Context(), sess); err != nil {
		zap.L().Warn("remote logout failed", zap.Error(err))
	}
	webserver.ClearToken(c)
	webserver.DropWorkspace(c, GetAppContext(c).Workspaces())
	return notice(c, webserver.LoginPath, "signed out")
}
