package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/bizmap/internal/domain/dto"
)

func bindTimelineRequest(ctx echo.Context) (*dto.TimelineRequest, error) {
	req := new(dto.TimelineRequest)
	if err := ctx.Bind(req); err != nil {
		return nil, err
	}
	if err := ctx.Validate(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (c *Controller) BusinessRatingsTimeline(ctx echo.Context) error {
	req, err := bindTimelineRequest(ctx)
	if err != nil {
		return err
	}

	timeline, err := c.analyticsService.BusinessRatingsTimeline(ctx.Request().Context(), ctx.Param("id"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, timeline)
}

func (c *Controller) BusinessSentimentTimeline(ctx echo.Context) error {
	req, err := bindTimelineRequest(ctx)
	if err != nil {
		return err
	}

	timeline, err := c.analyticsService.BusinessSentimentTimeline(ctx.Request().Context(), ctx.Param("id"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, timeline)
}

func (c *Controller) BusinessCityComparison(ctx echo.Context) error {
	req, err := bindTimelineRequest(ctx)
	if err != nil {
		return err
	}

	comparison, err := c.analyticsService.BusinessCityComparison(ctx.Request().Context(), ctx.Param("id"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, comparison)
}

func (c *Controller) BusinessStateComparison(ctx echo.Context) error {
	req, err := bindTimelineRequest(ctx)
	if err != nil {
		return err
	}

	comparison, err := c.analyticsService.BusinessStateComparison(ctx.Request().Context(), ctx.Param("id"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, comparison)
}

func (c *Controller) CityRatingsTimeline(ctx echo.Context) error {
	req, err := bindTimelineRequest(ctx)
	if err != nil {
		return err
	}

	timeline, err := c.analyticsService.CityRatingsTimeline(
		ctx.Request().Context(), ctx.Param("state"), ctx.Param("city"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, timeline)
}

func (c *Controller) StateRatingsTimeline(ctx echo.Context) error {
	req, err := bindTimelineRequest(ctx)
	if err != nil {
		return err
	}

	timeline, err := c.analyticsService.StateRatingsTimeline(ctx.Request().Context(), ctx.Param("state"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, timeline)
}

func (c *Controller) CategoryRatingsTimeline(ctx echo.Context) error {
	req, err := bindTimelineRequest(ctx)
	if err != nil {
		return err
	}

	timeline, err := c.analyticsService.CategoryRatingsTimeline(ctx.Request().Context(), ctx.Param("category"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, timeline)
}
