package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/bizmap/internal/pkg/constants"
)

func (c *Controller) ListStates(ctx echo.Context) error {
	states, err := c.businessService.ListStates(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, states)
}

func (c *Controller) ListCities(ctx echo.Context) error {
	state := ctx.QueryParams().Get("state")
	if state == "" {
		return constants.ErrBadRequest
	}

	cities, err := c.businessService.ListCities(ctx.Request().Context(), state)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, cities)
}

func (c *Controller) LocationsSummary(ctx echo.Context) error {
	summary, err := c.businessService.LocationsSummary(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, summary)
}
