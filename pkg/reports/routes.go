package reports

import (
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the dashboard, report, and export routes on the
// given group.
func RegisterRoutes(g *echo.Group, st *store.Store, exportDir string) {
	reportService := NewService(st, exportDir)

	h := &handler{
		reportService: reportService,
	}

	g.GET("/dashboard/stats", h.dashboard)
	g.GET("/reports", h.aggregate)
	g.GET("/reports/patrons/:id", h.patron)
	g.POST("/exports/:type", h.export)
}
