package circulation

import (
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the ledger and reconciler routes on the given
// group.
func RegisterRoutes(g *echo.Group, st *store.Store) {
	circulationService := NewService(st)

	h := &handler{
		circulationService: circulationService,
	}

	g.POST("/circulation/borrow", h.borrow)
	g.POST("/circulation/return", h.returnBook)
	g.GET("/circulation/borrowings", h.listBorrowings)
	g.GET("/circulation/available-books", h.availableBooks)
	g.GET("/circulation/borrowed", h.borrowedBooks)

	g.POST("/maintenance/recalculate", h.recalculate)
	g.GET("/maintenance/availability", h.availability)
}
