package auth

import (
	"strings"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/labstack/echo/v4"
)

// CookieName is the name of the session cookie.
const CookieName = "bibliodesk_session"

// Context keys for storing admin data.
const (
	ContextKeyAdminID  = "admin_id"
	ContextKeyUsername = "username"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate extracts and validates the JWT from the session cookie or
// an Authorization bearer header. If not authenticated, it returns 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ""
		if cookie, err := c.Cookie(CookieName); err == nil {
			token = cookie.Value
		}
		if token == "" {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}
		if token == "" {
			return errcodes.Unauthorized("Authentication required")
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		c.Set(ContextKeyAdminID, claims.AdminID)
		c.Set(ContextKeyUsername, claims.Username)

		return next(c)
	}
}
