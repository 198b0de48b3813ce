package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/ougirez/bizmap/internal/pkg/constants"
	"github.com/ougirez/bizmap/internal/pkg/utils"
)

// RequestIDMiddleware stamps every request context with an id the
// logger picks up, tying log lines to requests.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		reqCtx := context.WithValue(req.Context(), constants.CtxKeyRequestID, uuid.NewString())
		ctx.SetRequest(req.WithContext(reqCtx))
		return next(ctx)
	}
}

// AdminMiddleware requires a signed token cookie carrying the
// configured secret; it guards the seeding endpoints.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(constants.CookieKeySecretToken)
		if err != nil {
			return constants.ErrMissingAuthCookie
		}

		token, err := utils.ParseAuthToken(cookie.Value)
		if err != nil {
			return err
		}

		if token.Secret != viper.GetString(constants.ViperSecretKey) {
			return constants.ErrUnauthorized
		}

		return next(ctx)
	}
}
