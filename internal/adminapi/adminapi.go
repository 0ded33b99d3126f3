// Package adminapi serves the /admin routes. Every route requires an ADMIN
// session.
package adminapi

import (
	"fmt"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/events"
	"github.com/ecomkit/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

// Register mounts the admin routes on srv.
func Register(srv *webserver.Server) {
	g := srv.Group("/admin", webserver.RequireAdmin)
	g.GET("/check", checkAdmin)
	registerProductRoutes(g)
	registerOprLogRoutes(g)
}

func checkAdmin(c echo.Context) error {
	return webserver.OK(c, "Admin Detail Fetched", map[string]interface{}{
		"admin": webserver.CurrentUser(c),
	})
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := cast.ToInt64E(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.BadRequest, "Invalid product id")
	}
	return id, nil
}

// audit publishes an admin action for the operation log.
func audit(c echo.Context, action string, format string, args ...interface{}) {
	webserver.GetAppContext(c).Events().PublishAdminAction(events.AdminAction{
		Operator: webserver.CurrentUser(c).Email,
		IP:       c.RealIP(),
		Action:   action,
		Detail:   fmt.Sprintf(format, args...),
	})
}
