package userapi

import (
	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/auth"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/webserver"
	"github.com/labstack/echo/v4"
)

type credentialsData struct {
	User         *domain.User `json:"user"`
	SessionToken string       `json:"sessionToken"`
}

func registerAuthRoutes(srv *webserver.Server) {
	g := srv.Group("/auth")
	g.POST("/signup", signup)
	g.POST("/login", signin)
	g.POST("/logout", logout, webserver.RequireUser)
	g.GET("/check", checkIdentity, webserver.RequireUser)
}

// identity is the /auth/check view of a user: the profile without its id.
type identity struct {
	*domain.User
	ID string `json:"id,omitempty"`
}

func signup(c echo.Context) error {
	var in auth.SignupInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body").WithDetails(err.Error())
	}
	creds, err := webserver.GetAppContext(c).Auth().Signup(c.Request().Context(), in)
	if err != nil {
		return err
	}
	webserver.SetSessionCookie(c, creds.Session)
	return webserver.Created(c, "User created successfully", credentialsData{
		User:         creds.User,
		SessionToken: creds.Session.Token,
	})
}

func signin(c echo.Context) error {
	var in auth.SigninInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body").WithDetails(err.Error())
	}
	creds, err := webserver.GetAppContext(c).Auth().Signin(c.Request().Context(), in)
	if err != nil {
		return err
	}
	webserver.SetSessionCookie(c, creds.Session)
	return webserver.OK(c, "Login successful", credentialsData{
		User:         creds.User,
		SessionToken: creds.Session.Token,
	})
}

func logout(c echo.Context) error {
	err := webserver.GetAppContext(c).Auth().Logout(c.Request().Context(), webserver.SessionToken(c))
	if err != nil {
		return err
	}
	webserver.ClearSessionCookie(c)
	return webserver.OK(c, "Logout successful", nil)
}

func checkIdentity(c echo.Context) error {
	return webserver.OK(c, "User Detail Fetched", map[string]interface{}{
		"user": identity{User: webserver.CurrentUser(c)},
	})
}

func checkUser(c echo.Context) error {
	return webserver.OK(c, "User Detail Fetched", map[string]interface{}{
		"user": webserver.CurrentUser(c),
	})
}
