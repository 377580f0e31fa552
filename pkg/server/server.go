package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/auth"
	"github.com/bibliodesk/bibliodesk/pkg/binder"
	"github.com/bibliodesk/bibliodesk/pkg/books"
	"github.com/bibliodesk/bibliodesk/pkg/circulation"
	"github.com/bibliodesk/bibliodesk/pkg/config"
	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/bibliodesk/bibliodesk/pkg/patrons"
	"github.com/bibliodesk/bibliodesk/pkg/reports"
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
)

// New wires up the local UI bridge. Login/logout and health stay open;
// every business route sits behind the session middleware.
func New(cfg *config.Config, st *store.Store) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Register auth routes and get the auth service
	authService := auth.RegisterRoutes(e, st, cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)

	api := e.Group("")
	api.Use(authMiddleware.Authenticate)

	books.RegisterRoutes(api, st)
	patrons.RegisterRoutes(api, st)
	circulation.RegisterRoutes(api, st)
	reports.RegisterRoutes(api, st, cfg.ExportDirectory)

	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}
