package circulation

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	circulationService *Service
}

func (h *handler) borrow(c echo.Context) error {
	// Bind params.
	params := LoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.circulationService.Borrow(params.UserID, params.BookID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]bool{"success": true}))
}

func (h *handler) returnBook(c echo.Context) error {
	// Bind params.
	params := LoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.circulationService.Return(params.UserID, params.BookID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]bool{"success": true}))
}

func (h *handler) listBorrowings(c echo.Context) error {
	borrowings, err := h.circulationService.ListBorrowings()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, borrowings))
}

func (h *handler) availableBooks(c echo.Context) error {
	books, err := h.circulationService.AvailableBooks()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) borrowedBooks(c echo.Context) error {
	// Bind params.
	params := BorrowedBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	borrowed, err := h.circulationService.BorrowedBooks(params.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, borrowed))
}

func (h *handler) recalculate(c echo.Context) error {
	updated, err := h.circulationService.RecalculateAndPersist()
	if err != nil {
		return errors.WithStack(err)
	}

	report, summary, err := h.circulationService.DiagnosticReport()
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Success      bool               `json:"success"`
		UpdatedBooks int                `json:"updatedBooks"`
		Report       []*BookDiagnostic  `json:"report"`
		Summary      *DiagnosticSummary `json:"summary"`
	}{true, updated, report, summary}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) availability(c echo.Context) error {
	report, summary, err := h.circulationService.DiagnosticReport()
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Success bool               `json:"success"`
		Report  []*BookDiagnostic  `json:"report"`
		Summary *DiagnosticSummary `json:"summary"`
	}{true, report, summary}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
