package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "sessionToken"
	userKey           = "user"
)

// SessionToken reads the session cookie, falling back to a Bearer header.
func SessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireUser resolves the request's session and stores the user on the
// context. Unresolved requests never reach next.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := GetAppContext(c).Sessions().Resolve(c.Request().Context(), SessionToken(c))
		if err != nil {
			return err
		}
		c.Set(userKey, user)
		return next(c)
	}
}

// RequireAdmin is RequireUser plus the ADMIN role. A non-admin gets the same
// Unauthenticated failure as a missing session.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireUser(func(c echo.Context) error {
		if !CurrentUser(c).Type.IsAdmin() {
			return apperr.New(apperr.Unauthenticated, "Admin access required")
		}
		return next(c)
	})
}

// CurrentUser returns the user set by RequireUser, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userKey).(*domain.User)
	return user
}

func SetSessionCookie(c echo.Context, session *domain.Session) {
	cfg := GetAppContext(c).Config()
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(GetAppContext(c).Sessions().TTL().Seconds())
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.Web.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearSessionCookie(c echo.Context) {
	cfg := GetAppContext(c).Config()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Web.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
