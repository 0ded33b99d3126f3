package adminapi

import (
	"github.com/ecomkit/storefront/internal/catalog"
	"github.com/ecomkit/storefront/internal/events"
	"github.com/ecomkit/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerProductRoutes(g *echo.Group) {
	g.GET("/product/all", listProducts)
	g.POST("/product/all", listProducts)
	g.GET("/product/export", exportProducts)
	g.GET("/product/get/:id", getProduct)
	g.POST("/product/new", createProduct)
	g.PUT("/product/edit/:id", editProduct)
	g.DELETE("/product/delete/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	raw, err := webserver.BindMap(c)
	if err != nil {
		return err
	}
	filters, err := catalog.ParseFilters(raw)
	if err != nil {
		return err
	}
	page, err := webserver.GetAppContext(c).Catalog().List(c.Request().Context(), filters, catalog.Admin)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Products retrieved successfully", page)
}

func getProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	product, err := webserver.GetAppContext(c).Catalog().Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Product retrieved successfully", map[string]interface{}{
		"admin":   webserver.CurrentUser(c),
		"product": product,
	})
}

func createProduct(c echo.Context) error {
	raw, err := webserver.BindMap(c)
	if err != nil {
		return err
	}
	in, err := catalog.ParseProductInput(raw, "Invalid Inputs for Creating Product")
	if err != nil {
		return err
	}
	product, err := webserver.GetAppContext(c).Catalog().Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	audit(c, events.ActionProductCreate, "create product %d %s", product.ID, product.Name)
	return webserver.Created(c, "Product created successfully", map[string]interface{}{
		"admin":   webserver.CurrentUser(c),
		"product": product,
	})
}

func editProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := webserver.BindMap(c)
	if err != nil {
		return err
	}
	in, err := catalog.ParseProductInput(raw, "Invalid Inputs for Update Product")
	if err != nil {
		return err
	}
	product, err := webserver.GetAppContext(c).Catalog().Edit(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	audit(c, events.ActionProductEdit, "edit product %d %s", product.ID, product.Name)
	return webserver.OK(c, "Product updated successfully", map[string]interface{}{
		"admin":   webserver.CurrentUser(c),
		"product": product,
	})
}

func deleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	product, err := webserver.GetAppContext(c).Catalog().Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	audit(c, events.ActionProductDelete, "delete product %d %s", product.ID, product.Name)
	return webserver.OK(c, "Product deleted successfully", map[string]interface{}{
		"admin":          webserver.CurrentUser(c),
		"deletedProduct": product,
	})
}
