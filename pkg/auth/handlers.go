package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	authService *Service
}

// login validates the admin credentials. A failed login is still a
// well-formed response; the bridge never surfaces it as an error.
func (h *handler) login(c echo.Context) error {
	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	admin, err := h.authService.Authenticate(params.Username, params.Password)
	if err != nil {
		return c.JSON(http.StatusOK, LoginResponse{
			Success: false,
			Message: "Invalid credentials",
		})
	}

	token, err := h.authService.GenerateToken(admin)
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(TokenExpiry),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
	})
}

// logout clears the session cookie.
func (h *handler) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
