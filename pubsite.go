// Package pubsite is a static blog generator built with Go, templ and echo.
// It turns Markdown posts plus author and category records into a complete
// static site: articles, paginated listings, feeds, sitemap and robots.
//
// Users provide their own templ components via the ViewFuncs struct, and
// pubsite handles content loading, indexing, image processing, page planning
// and the preview server.
package pubsite

import (
	"fmt"
	"sync"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// ViewFuncs holds user-provided templ components that the builder and the
// preview server call when rendering pages. Body components publish their
// head metadata with EmitHead; Layout wraps every page.
type ViewFuncs struct {
	Layout     func(v LayoutView) templ.Component
	Article    func(v ArticleView) templ.Component
	Listing    func(v ListingView) templ.Component
	Categories func(v CategoryIndexView) templ.Component
	NotFound   func(site SiteInfo) templ.Component
	Login      func(v LoginView) templ.Component
	Drafts     func(v DraftsView) templ.Component
}

func (v ViewFuncs) validate() error {
	switch {
	case v.Layout == nil:
		return fmt.Errorf("pubsite: ViewFuncs.Layout is required")
	case v.Article == nil:
		return fmt.Errorf("pubsite: ViewFuncs.Article is required")
	case v.Listing == nil:
		return fmt.Errorf("pubsite: ViewFuncs.Listing is required")
	case v.Categories == nil:
		return fmt.Errorf("pubsite: ViewFuncs.Categories is required")
	case v.NotFound == nil:
		return fmt.Errorf("pubsite: ViewFuncs.NotFound is required")
	}
	return nil
}

// Site is the central pubsite application. It wires together the config,
// content index, image pipeline and user-provided templates.
type Site struct {
	Config SiteConfig
	Views  ViewFuncs
	Store  *Store
	Cache  *PostCache

	log          *zap.Logger
	customRoutes []func(*Server)
	drafts       bool
	debounce     time.Duration
	onRebuild    func(BuildReport, error)

	mu    sync.RWMutex
	state *siteState
}

// siteState is what the last successful build knows beyond the index:
// resolved authors and processed banners.
type siteState struct {
	dir     *AuthorDirectory
	banners map[string]Image
}

// New creates a Site with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *Site {
	cfg.setDefaults()

	s := &Site{
		Config: cfg,
		Views:  views,
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Logger returns the logger the site was configured with.
func (s *Site) Logger() *zap.Logger {
	return s.log
}

// Info returns the site-wide data handed to every view.
func (s *Site) Info() SiteInfo {
	return s.Config.siteInfo()
}

// open initializes the content index and post cache on first use.
func (s *Site) open() error {
	if s.Store != nil {
		return nil
	}
	store, err := NewStore(s.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("pubsite: init store: %w", err)
	}
	s.Store = store
	s.Cache = NewPostCache(store, s.Config.Preview.CacheTTL)
	return nil
}

func (s *Site) setState(st *siteState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	if s.Cache != nil {
		s.Cache.Invalidate()
	}
}

func (s *Site) current() *siteState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Close cleans up resources. Call this when the site is shutting down.
func (s *Site) Close() error {
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}
