package books

import (
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the book catalog routes on the given group.
func RegisterRoutes(g *echo.Group, st *store.Store) {
	bookService := NewService(st)

	h := &handler{
		bookService: bookService,
	}

	g.GET("/books", h.list)
	g.POST("/books", h.create)
	g.GET("/books/:id", h.retrieve)
	g.POST("/books/:id", h.update)
	g.DELETE("/books/:id", h.delete)
}
