package pubsite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server is the local preview server. It serves the built output directory
// and, when a preview password is configured, a gated draft preview under
// /_drafts. Draft assets live outside the output directory and are only
// reachable through the gated routes.
type Server struct {
	Echo *echo.Echo

	site         *Site
	loginLimiter *LoginLimiter
}

// NewServer wires middleware and routes for previewing the site. The
// limiter's sweeper stops when ctx is done.
func (s *Site) NewServer(ctx context.Context) (*Server, error) {
	if err := s.Views.validate(); err != nil {
		return nil, err
	}
	if s.Config.Preview.Password != "" && (s.Views.Login == nil || s.Views.Drafts == nil) {
		return nil, errors.New("pubsite: ViewFuncs.Login and ViewFuncs.Drafts are required for draft preview")
	}
	if err := s.open(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		Echo:         e,
		site:         s,
		loginLimiter: NewLoginLimiter(ctx, 5, time.Minute),
	}
	srv.setupMiddleware()
	srv.setupRoutes()

	for _, fn := range s.customRoutes {
		fn(srv)
	}
	return srv, nil
}

// Site returns the site the server previews.
func (srv *Server) Site() *Site {
	return srv.site
}

func (srv *Server) setupRoutes() {
	e := srv.Echo

	if srv.site.Config.Preview.Password != "" {
		g := e.Group(draftsPrefix)
		g.GET("", srv.handleDrafts)
		g.GET("/", srv.handleDrafts)
		g.POST("/login", srv.handleLogin)
		g.POST("/logout", handleLogout)
		g.GET("/*", srv.handleDraft)
	}

	// Built pages, feeds and assets. Unknown paths fall through to the
	// router and end in the 404 handler.
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  srv.site.Config.OutputDir,
		Index: "index.html",
		Skipper: func(c echo.Context) bool {
			return isDraftsPath(c.Request().URL.Path)
		},
	}))
}

// Serve starts the server on the configured address and shuts it down
// gracefully when ctx is done.
func (srv *Server) Serve(ctx context.Context) error {
	addr := srv.site.Config.Preview.Addr
	errCh := make(chan error, 1)
	go func() {
		srv.site.log.Info("preview server listening", zap.String("addr", addr))
		if err := srv.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("pubsite: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("pubsite: shutdown: %w", err)
	}
	return <-errCh
}

func (srv *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if errors.Is(err, ErrNotFound) || (ok && he.Code == http.StatusNotFound) {
		_ = srv.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		srv.site.log.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
	}
	srv.Echo.DefaultHTTPErrorHandler(err, c)
}

func (srv *Server) renderNotFound(c echo.Context) error {
	s := srv.site
	meta := PageMeta{Title: "Not Found", OGType: "page"}
	return s.RenderPage(c, http.StatusNotFound, meta, s.Views.NotFound(s.Info()))
}
