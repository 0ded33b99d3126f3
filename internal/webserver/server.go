package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ecomkit/storefront/internal/app"
	"github.com/ecomkit/storefront/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
	"go.uber.org/zap"
)

const appCtxKey = "appctx"

type Server struct {
	root   *echo.Echo
	appCtx app.AppContext
}

// NewServer builds the echo instance with the shared middleware stack. Route
// groups are added by the api packages.
func NewServer(appCtx app.AppContext) *Server {
	cfg := appCtx.Config()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JSONSerializer{}
	e.Validator = &Validator{}
	e.HTTPErrorHandler = ErrorHandler(cfg.IsDevelopment())

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	bodyLimit := cfg.Web.BodyLimit
	if _, err := bytes.Parse(bodyLimit); err != nil || bodyLimit == "" {
		zap.S().Warnf("invalid web.body_limit %q, using 2M", bodyLimit)
		bodyLimit = "2M"
	}
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(requestLogger())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appCtxKey, appCtx)
			return next(c)
		}
	})

	e.GET("/ping", func(c echo.Context) error {
		return OK(c, "pong", map[string]interface{}{"time": time.Now()})
	})

	return &Server{root: e, appCtx: appCtx}
}

// Echo exposes the underlying instance, mainly for httptest.
func (s *Server) Echo() *echo.Echo {
	return s.root
}

func (s *Server) Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	return s.root.Group(prefix, m...)
}

func (s *Server) Start() error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("Prepare to start web server at %s", addr)
	err := s.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

// GetAppContext returns the application context bound to the request.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(appCtxKey).(app.AppContext)
}

type Validator struct{}

func (v *Validator) Validate(i interface{}) error {
	return validation.Struct(i)
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			req := c.Request()
			res := c.Response()
			zap.L().Info("http request",
				zap.String("namespace", "http"),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("remote_ip", c.RealIP()))
			return nil
		}
	}
}
