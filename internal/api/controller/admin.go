package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/ougirez/bizmap/internal/domain/dto"
	"github.com/ougirez/bizmap/internal/pkg/constants"
)

func (c *Controller) AdminLogin(ctx echo.Context) error {
	req := new(dto.AdminLoginRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	token, err := c.authService.AdminLogin(ctx.Request().Context(), req.Secret)
	if err != nil {
		return err
	}

	ctx.SetCookie(&http.Cookie{
		Name:     constants.CookieKeySecretToken,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	return ctx.NoContent(http.StatusNoContent)
}

// Seed imports the configured NDJSON dataset files. Admin-only.
func (c *Controller) Seed(ctx echo.Context) error {
	resp, err := c.businessService.Seed(
		ctx.Request().Context(),
		viper.GetString(constants.ViperSeedBusinessesPath),
		viper.GetString(constants.ViperSeedReviewsPath),
	)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}
