package adminapi

import (
	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/catalog"
	"github.com/ecomkit/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

func registerOprLogRoutes(g *echo.Group) {
	g.GET("/oprlog/all", listOprLogs)
}

func listOprLogs(c echo.Context) error {
	page := cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size := cast.ToInt(c.QueryParam("limit"))
	if size < 1 || size > 100 {
		size = 20
	}
	logs, total, err := webserver.GetAppContext(c).OprLogs().List(c.Request().Context(), c.QueryParam("keyword"), page, size)
	if err != nil {
		return apperr.Wrap(err, "Failed to fetch operation logs")
	}
	return webserver.OK(c, "Operation logs retrieved successfully", map[string]interface{}{
		"logs":       logs,
		"pagination": catalog.NewPagination(page, size, total),
	})
}
