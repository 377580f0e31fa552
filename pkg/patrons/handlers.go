package patrons

import (
	"net/http"
	"strconv"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	patronService *Service
}

func (h *handler) list(c echo.Context) error {
	// Bind params.
	params := ListPatronsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	patrons, err := h.patronService.List(params.Search)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, patrons))
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	patron, err := h.patronService.Retrieve(id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, patron))
}

func (h *handler) create(c echo.Context) error {
	// Bind params.
	params := CreatePatronPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	patron, err := h.patronService.Create(CreateOptions{
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Address: params.Address,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Success bool `json:"success"`
		ID      int  `json:"id"`
	}{true, patron.ID}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	// Bind params.
	params := UpdatePatronPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	err = h.patronService.Update(id, UpdateOptions{
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Address: params.Address,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]bool{"success": true}))
}

func (h *handler) delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	if err := h.patronService.Delete(id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]bool{"success": true}))
}
