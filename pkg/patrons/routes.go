package patrons

import (
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the patron registry routes on the given group.
func RegisterRoutes(g *echo.Group, st *store.Store) {
	patronService := NewService(st)

	h := &handler{
		patronService: patronService,
	}

	g.GET("/patrons", h.list)
	g.POST("/patrons", h.create)
	g.GET("/patrons/:id", h.retrieve)
	g.POST("/patrons/:id", h.update)
	g.DELETE("/patrons/:id", h.delete)
}
