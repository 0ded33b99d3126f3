package webserver

import (
	"fmt"
	"net/http"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every failure as the error envelope. Stacks are only
// attached in development.
func ErrorHandler(development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		resp := buildErrorResponse(err, development)

		req := c.Request()
		fields := []zap.Field{
			zap.String("namespace", "http"),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			zap.L().Error("request failed", fields...)
		} else {
			zap.L().Debug("request rejected", fields...)
		}

		var werr error
		if req.Method == http.MethodHead {
			werr = c.NoContent(resp.StatusCode)
		} else {
			werr = c.JSON(resp.StatusCode, resp)
		}
		if werr != nil {
			zap.L().Error("failed to write error response", zap.Error(werr))
		}
	}
}

func buildErrorResponse(err error, development bool) ErrorResponse {
	resp := ErrorResponse{
		Success:    false,
		Message:    "Something went wrong",
		Error:      "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	if e, ok := apperr.As(err); ok {
		resp.StatusCode = e.Kind.Status()
		resp.Message = e.Message
		switch {
		case e.Details != nil:
			resp.Error = e.Details
		case e.Kind == apperr.Unexpected:
			resp.Error = "Internal server error"
		default:
			resp.Error = e.Kind.String()
		}
		if development && e.Cause != nil {
			resp.Error = e.Cause.Error()
			resp.Stack = fmt.Sprintf("%+v", e.Cause)
		}
		return resp
	}

	if he, ok := err.(*echo.HTTPError); ok {
		resp.StatusCode = he.Code
		resp.Message = fmt.Sprint(he.Message)
		resp.Error = http.StatusText(he.Code)
		if development && he.Internal != nil {
			resp.Stack = fmt.Sprintf("%+v", he.Internal)
		}
		return resp
	}

	if development {
		resp.Error = err.Error()
		resp.Stack = fmt.Sprintf("%+v", err)
	}
	return resp
}
