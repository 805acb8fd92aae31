// Package frontapi serves the shopper pages: catalog, product detail, cart
// and checkout, plus a server-sent event stream of cart snapshots.
package frontapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/app"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/storefront"
	"github.com/talkincode/hexshop/internal/webserver"
)

// Init registers every shopper route on the global web server.
func Init() {
	webserver.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/products")
	})
	registerCatalogRoutes()
	registerCartRoutes()
}

// GetAppContext returns the application context stored by the web server.
func GetAppContext(c echo.Context) app.AppContext {
	return webserver.GetAppContext(c).(app.AppContext)
}

func workspace(c echo.Context) *storefront.Workspace {
	return webserver.Workspace(c, GetAppContext(c).Workspaces())
}

func parsePage(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// alert flashes msg, logs err and redirects to target.
func alert(c echo.Context, target, msg string, err error) error {
	if err != nil {
		zap.L().Warn(msg,
			zap.String("request_id", webserver.RequestID(c)),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		if remote := shopapi.PublicMessage(err); remote != "" {
			msg = msg + ": " + remote
		}
	}
	webserver.AddFlash(c, webserver.FlashError, msg)
	return c.Redirect(http.StatusSeeOther, target)
}

func notice(c echo.Context, target, msg string) error {
	webserver.AddFlash(c, webserver.FlashSuccess, msg)
	return c.Redirect(http.StatusSeeOther, target)
}
