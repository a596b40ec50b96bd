package pubsite

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// SiteConfig holds all configuration for a pubsite build.
type SiteConfig struct {
	Name          string `mapstructure:"name"`        // Site name (default "Blog")
	Description   string `mapstructure:"description"` // Site description for feeds and meta tags
	Author        string `mapstructure:"author"`      // Site owner for JSON-LD
	Lang          string `mapstructure:"lang"`        // Document language (default "en")
	FacebookAppID string `mapstructure:"fb_app"`

	Env     string                  `mapstructure:"env"` // PUBSITE_ENV
	Target  Target                  `mapstructure:"-"`
	Targets map[string]TargetConfig `mapstructure:"targets"`

	ContentDir   string `mapstructure:"content_dir"`   // default "content"
	DataDir      string `mapstructure:"data_dir"`      // default "data"
	StaticDir    string `mapstructure:"static_dir"`    // default "static"
	OutputDir    string `mapstructure:"output_dir"`    // default "public"
	DatabasePath string `mapstructure:"database_path"` // default ".cache/content.db"
	DraftsDir    string `mapstructure:"drafts_dir"`    // draft assets, default next to the database

	PageSize    int `mapstructure:"page_size"`   // Posts per listing page (default 6)
	Concurrency int `mapstructure:"concurrency"` // Parallel renders (default NumCPU)
	FeedLimit   int `mapstructure:"feed_limit"`  // Items per feed, 0 means all

	Ads            AdsConfig      `mapstructure:"ads"`
	Images         ImageConfig    `mapstructure:"images"`
	Manifest       ManifestConfig `mapstructure:"manifest"`
	SitemapExclude []string       `mapstructure:"sitemap_exclude"`

	Preview PreviewConfig `mapstructure:"preview"`
}

// TargetConfig is the per-deployment-target part of the configuration.
type TargetConfig struct {
	URL         string       `mapstructure:"url"`
	AnalyticsID string       `mapstructure:"analytics_id"`
	Robots      []RobotsRule `mapstructure:"robots"`
}

// RobotsRule is one User-agent group of robots.txt.
type RobotsRule struct {
	UserAgent string   `mapstructure:"user_agent"`
	Allow     []string `mapstructure:"allow"`
	Disallow  []string `mapstructure:"disallow"`
}

// AdsConfig identifies the advertisement unit rendered on article pages.
type AdsConfig struct {
	Client string `mapstructure:"client"`
	Slot   string `mapstructure:"slot"`
}

// ImageConfig controls the banner pipeline.
type ImageConfig struct {
	MaxWidth int   `mapstructure:"max_width"` // default 1000
	Quality  int   `mapstructure:"quality"`   // JPEG quality, default 90
	Widths   []int `mapstructure:"widths"`    // srcset widths, default 250/500/1000
}

// ManifestConfig feeds manifest.webmanifest.
type ManifestConfig struct {
	Name            string `mapstructure:"name"`
	ShortName       string `mapstructure:"short_name"`
	StartURL        string `mapstructure:"start_url"`
	BackgroundColor string `mapstructure:"background_color"`
	ThemeColor      string `mapstructure:"theme_color"`
	Display         string `mapstructure:"display"`
	Icon            string `mapstructure:"icon"` // path relative to the project root
}

// PreviewConfig configures `pubsite serve`.
type PreviewConfig struct {
	Addr          string        `mapstructure:"addr"`           // default ":8000"
	Password      string        `mapstructure:"password"`       // enables /_drafts/ when set
	SessionSecret string        `mapstructure:"session_secret"` // required with Password
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"` // default 1m
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.Lang == "" {
		c.Lang = "en"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = ".cache/content.db"
	}
	if c.DraftsDir == "" {
		c.DraftsDir = filepath.Join(filepath.Dir(c.DatabasePath), "drafts")
	}
	if c.PageSize <= 0 {
		c.PageSize = 6
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if c.Images.MaxWidth <= 0 {
		c.Images.MaxWidth = 1000
	}
	if c.Images.Quality <= 0 || c.Images.Quality > 100 {
		c.Images.Quality = 90
	}
	if len(c.Images.Widths) == 0 {
		c.Images.Widths = []int{c.Images.MaxWidth / 4, c.Images.MaxWidth / 2, c.Images.MaxWidth}
	}
	if c.Manifest.Name == "" {
		c.Manifest.Name = c.Name
	}
	if c.Manifest.ShortName == "" {
		c.Manifest.ShortName = c.Manifest.Name
	}
	if c.Manifest.StartURL == "" {
		c.Manifest.StartURL = "/"
	}
	if c.Manifest.BackgroundColor == "" {
		c.Manifest.BackgroundColor = "#f5f5f5"
	}
	if c.Manifest.ThemeColor == "" {
		c.Manifest.ThemeColor = "#1e88e5"
	}
	if c.Manifest.Display == "" {
		c.Manifest.Display = "minimal-ui"
	}
	if c.SitemapExclude == nil {
		c.SitemapExclude = []string{"/pages/*", "/category", "/category/*", "/author", "/author/*"}
	}
	if c.Preview.Addr == "" {
		c.Preview.Addr = ":8000"
	}
	if c.Preview.CacheTTL == 0 {
		c.Preview.CacheTTL = time.Minute
	}
}

// Deployment returns the resolved settings for the configured target,
// falling back to the target's defaults for anything left empty.
func (c SiteConfig) Deployment() TargetConfig {
	tc := c.Targets[c.Target.String()]
	if tc.URL == "" {
		tc.URL = c.Target.DefaultURL()
	}
	tc.URL = strings.TrimSuffix(tc.URL, "/")
	if len(tc.Robots) == 0 {
		tc.Robots = c.Target.DefaultRobots()
	}
	return tc
}

// URL is the canonical base URL for the configured target.
func (c SiteConfig) URL() string {
	return c.Deployment().URL
}

// Validate checks the settings a build cannot run without.
func (c SiteConfig) Validate() error {
	if c.Preview.Password != "" && c.Preview.SessionSecret == "" {
		return errors.New("pubsite: preview.session_secret is required when preview.password is set")
	}
	for name := range c.Targets {
		if _, err := ParseTarget(name); err != nil {
			return fmt.Errorf("pubsite: targets: %w", err)
		}
	}
	return nil
}

// LoadConfig reads site configuration from path (or ./site.yaml when path is
// empty) and PUBSITE_* environment variables. A missing default config file
// is not an error.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()

	v.SetDefault("env", "development")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("site")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PUBSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows about.
	for _, key := range []string{"output_dir", "preview.addr", "preview.password", "preview.session_secret", "preview.cookie_secure"} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return SiteConfig{}, fmt.Errorf("pubsite: read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("pubsite: decode config: %w", err)
	}
	target, err := ParseTarget(cfg.Env)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("pubsite: %w", err)
	}
	cfg.Target = target
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// Option configures additional Site behavior.
type Option func(*Site)

// WithLogger sets the logger used for build and server output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTarget overrides the deployment target from the config.
func WithTarget(t Target) Option {
	return func(s *Site) {
		s.Config.Target = t
	}
}

// WithCustomRoutes registers additional routes on the preview server.
func WithCustomRoutes(fn func(*Server)) Option {
	return func(s *Site) {
		s.customRoutes = append(s.customRoutes, fn)
	}
}

// WithDrafts processes draft banners and bundle files into DraftsDir so the
// preview server can show them behind the draft login. Drafts never get
// pages or files in the output directory.
func WithDrafts(enabled bool) Option {
	return func(s *Site) {
		s.drafts = enabled
	}
}
