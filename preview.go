package pubsite

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

const draftsPrefix = "/_drafts"

func isDraftsPath(p string) bool {
	return p == draftsPrefix || strings.HasPrefix(p, draftsPrefix+"/")
}

// LoginView is the data behind the draft preview login form.
type LoginView struct {
	Site      SiteInfo
	ShowError bool
	CSRFToken string
}

// DraftsView lists drafts and recently published posts for previewers.
type DraftsView struct {
	Site      SiteInfo
	Drafts    []Post
	Published []Post
	CSRFToken string
}

func (srv *Server) handleDrafts(c echo.Context) error {
	s := srv.site
	if !IsPreviewer(c) {
		return srv.renderLogin(c, http.StatusOK, false)
	}
	ctx := c.Request().Context()
	drafts, err := s.Store.ListDrafts(ctx)
	if err != nil {
		return err
	}
	published, err := s.Cache.ListPosts(ctx)
	if err != nil {
		return err
	}
	if len(published) > 10 {
		published = published[:10]
	}
	v := DraftsView{Site: s.Info(), Drafts: drafts, Published: published, CSRFToken: CsrfToken(c)}
	return s.RenderPage(c, http.StatusOK, PageMeta{Title: "Drafts", OGType: "page"}, s.Views.Drafts(v))
}

func (srv *Server) renderLogin(c echo.Context, code int, showError bool) error {
	s := srv.site
	v := LoginView{Site: s.Info(), ShowError: showError, CSRFToken: CsrfToken(c)}
	return s.RenderPage(c, code, PageMeta{Title: "Draft preview", OGType: "page"}, s.Views.Login(v))
}

func (srv *Server) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !srv.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(srv.site.Config.Preview.Password)) == 1 {
		if err := setPreviewSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, draftsPrefix+"/")
	}
	srv.loginLimiter.Record(ip)
	return srv.renderLogin(c, http.StatusUnauthorized, true)
}

func handleLogout(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, draftsPrefix+"/")
}

// handleDraft renders any indexed post straight from the content index.
// Published posts get their siblings; drafts have none. Paths that are not
// posts are served from the drafts directory, which holds draft banners and
// bundle files.
func (srv *Server) handleDraft(c echo.Context) error {
	s := srv.site
	if !IsPreviewer(c) {
		return c.Redirect(http.StatusSeeOther, draftsPrefix+"/")
	}
	ctx := c.Request().Context()
	rel := strings.Trim(path.Clean("/"+c.Param("*")), "/")

	var (
		post       Post
		prev, next *NavEdge
		err        error
	)
	if post, err = s.Cache.GetPost(ctx, rel); err == nil {
		older, newer, err := s.Cache.Siblings(ctx, rel)
		if err != nil {
			return err
		}
		prev, next = NavEdgeOf(older), NavEdgeOf(newer)
	} else if errors.Is(err, ErrNotFound) {
		if post, err = s.Store.GetPostAny(ctx, rel); errors.Is(err, ErrNotFound) {
			return srv.serveDraftFile(c, rel)
		} else if err != nil {
			return err
		}
	} else {
		return err
	}

	st := s.current()
	if st == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "site has not been built yet")
	}
	cats, err := s.Cache.ListCategories(ctx)
	if err != nil {
		return err
	}
	v, err := BuildArticle(s.Info(), s.Config.Ads, post, st.dir, cats, st.banners[post.Slug], prev, next)
	if err != nil {
		return err
	}
	return s.RenderPage(c, http.StatusOK, v.Meta, s.Views.Article(v))
}

// serveDraftFile serves rel from the drafts directory. rel is already
// cleaned and cannot climb out of it.
func (srv *Server) serveDraftFile(c echo.Context, rel string) error {
	if rel == "" {
		return ErrNotFound
	}
	file := filepath.Join(srv.site.Config.DraftsDir, filepath.FromSlash(rel))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return ErrNotFound
	}
	return c.File(file)
}
