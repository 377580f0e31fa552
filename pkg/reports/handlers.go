package reports

import (
	"net/http"
	"strconv"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	reportService *Service
}

func (h *handler) dashboard(c echo.Context) error {
	stats, err := h.reportService.Dashboard()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, stats))
}

func (h *handler) aggregate(c echo.Context) error {
	report, err := h.reportService.Aggregate()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, report))
}

func (h *handler) patron(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	report, err := h.reportService.Patron(id)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Success bool          `json:"success"`
		Data    *PatronReport `json:"data"`
	}{true, report}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) export(c echo.Context) error {
	result, err := h.reportService.ExportCSV(c.Param("type"))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, result))
}
