package pubsite

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// RenderPage renders body inside the site layout, the same way the builder
// writes pages.
func (s *Site) RenderPage(c echo.Context, code int, fallback PageMeta, body templ.Component) error {
	info := s.Info()
	page := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return RenderDocument(ctx, s.Views.Layout, info, fallback, body, w)
	})
	return RenderStatus(c, code, page)
}
