// Package userapi serves the /auth and /user routes.
package userapi

import (
	"github.com/ecomkit/storefront/internal/webserver"
)

// Register mounts the user facing routes on srv.
func Register(srv *webserver.Server) {
	registerAuthRoutes(srv)
	registerCatalogRoutes(srv)
	registerCartRoutes(srv)
}
