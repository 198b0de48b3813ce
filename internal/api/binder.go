package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/ougirez/bizmap/internal/pkg/constants"
)

// Binder binds path and query params through echo's default binder and
// decodes JSON bodies with sonic.
type Binder struct {
	fallback echo.DefaultBinder
}

func NewBinder() *Binder {
	return &Binder{}
}

func (b *Binder) Bind(i interface{}, c echo.Context) error {
	if err := b.fallback.BindPathParams(c, i); err != nil {
		return constants.NewCodedError(http.StatusBadRequest, err.Error())
	}
	if err := b.fallback.BindQueryParams(c, i); err != nil {
		return constants.NewCodedError(http.StatusBadRequest, err.Error())
	}

	req := c.Request()
	if req.ContentLength == 0 ||
		!strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return constants.NewCodedError(http.StatusBadRequest, err.Error())
	}
	if err := sonic.Unmarshal(body, i); err != nil {
		return constants.NewCodedError(http.StatusBadRequest, err.Error())
	}

	return nil
}
