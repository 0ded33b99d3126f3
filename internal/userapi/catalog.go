package userapi

import (
	"github.com/ecomkit/storefront/internal/catalog"
	"github.com/ecomkit/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerCatalogRoutes(srv *webserver.Server) {
	g := srv.Group("/user")
	g.GET("/product/all", listProducts)
	g.GET("/check", checkUser, webserver.RequireUser)
}

// listProducts is the public catalog; only active products are listed.
func listProducts(c echo.Context) error {
	raw, err := webserver.BindMap(c)
	if err != nil {
		return err
	}
	filters, err := catalog.ParseFilters(raw)
	if err != nil {
		return err
	}
	page, err := webserver.GetAppContext(c).Catalog().List(c.Request().Context(), filters, catalog.Public)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Products retrieved successfully", page)
}
