package webserver

import (
	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/labstack/echo/v4"
)

// BindMap collects request parameters into a loose map: query values first,
// then JSON body members on top.
func BindMap(c echo.Context) (map[string]interface{}, error) {
	raw := make(map[string]interface{})
	for k, v := range c.QueryParams() {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}

	body := make(map[string]interface{})
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return nil, apperr.New(apperr.Validation, "Invalid request body").WithDetails(err.Error())
	}
	for k, v := range body {
		raw[k] = v
	}
	return raw, nil
}
