package userapi

import (
	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/cart"
	"github.com/ecomkit/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

func registerCartRoutes(srv *webserver.Server) {
	g := srv.Group("/user", webserver.RequireUser)
	g.GET("/cart", viewCart)
	g.POST("/product/add", addItem)
	g.DELETE("/product/remove", removeItem)
	g.POST("/product/increment", incrementItem)
	g.POST("/product/decrement", decrementItem)
}

// productID reads productId from the body or the query string.
func productID(c echo.Context) (int64, error) {
	raw, err := webserver.BindMap(c)
	if err != nil {
		return 0, err
	}
	v, ok := raw["productId"]
	if !ok || v == "" {
		return 0, apperr.New(apperr.BadRequest, "Product id is required")
	}
	id, err := cast.ToInt64E(v)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.BadRequest, "Product id is invalid")
	}
	return id, nil
}

type cartOp func(e *cart.Engine, c echo.Context, userID string, productID int64) (*cart.Result, error)

func cartHandler(message string, op cartOp) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := productID(c)
		if err != nil {
			return err
		}
		user := webserver.CurrentUser(c)
		res, err := op(webserver.GetAppContext(c).Cart(), c, user.ID, id)
		if err != nil {
			return err
		}
		return webserver.OK(c, message, res)
	}
}

var (
	removeItem = cartHandler("Item removed from cart", func(e *cart.Engine, c echo.Context, userID string, productID int64) (*cart.Result, error) {
		return e.RemoveItem(c.Request().Context(), userID, productID)
	})
	incrementItem = cartHandler("Item quantity increased", func(e *cart.Engine, c echo.Context, userID string, productID int64) (*cart.Result, error) {
		return e.IncrementItem(c.Request().Context(), userID, productID)
	})
	decrementItem = cartHandler("Item quantity decreased", func(e *cart.Engine, c echo.Context, userID string, productID int64) (*cart.Result, error) {
		return e.DecrementItem(c.Request().Context(), userID, productID)
	})
)

func addItem(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	res, err := webserver.GetAppContext(c).Cart().AddItem(c.Request().Context(), webserver.CurrentUser(c).ID, id)
	if err != nil {
		return err
	}
	if res.Existing {
		return webserver.OK(c, "Item already in cart", res)
	}
	return webserver.Created(c, "Item added to cart", res)
}

func viewCart(c echo.Context) error {
	res, err := webserver.GetAppContext(c).Cart().View(c.Request().Context(), webserver.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return webserver.OK(c, "Cart fetched", res)
}
