package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/bizmap/internal/domain/dto"
)

func (c *Controller) ListBusinesses(ctx echo.Context) error {
	req := new(dto.ListBusinessesRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	businesses, err := c.businessService.List(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, businesses)
}

func (c *Controller) ListBusinessesInViewport(ctx echo.Context) error {
	req := new(dto.ViewportRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	businesses, err := c.businessService.ListInViewport(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, businesses)
}

func (c *Controller) SearchBusinesses(ctx echo.Context) error {
	req := new(dto.SearchRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	businesses, err := c.businessService.Search(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, businesses)
}

func (c *Controller) GetBusiness(ctx echo.Context) error {
	b, err := c.businessService.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, b)
}

func (c *Controller) ListReviews(ctx echo.Context) error {
	req := new(dto.ListReviewsRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	reviews, err := c.businessService.ListReviews(ctx.Request().Context(), ctx.Param("business_id"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, reviews)
}
