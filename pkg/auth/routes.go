package auth

import (
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the login/logout routes and returns the auth
// service so the server can build the middleware from it.
func RegisterRoutes(e *echo.Echo, st *store.Store, jwtSecret string) *Service {
	authService := NewService(st, jwtSecret)

	h := &handler{authService: authService}

	e.POST("/login", h.login)
	e.POST("/logout", h.logout)

	return authService
}
