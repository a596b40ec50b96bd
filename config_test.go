package pubsite

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `name: Riffy Blog
description: Personal notes
page_size: 4
ads:
  client: ca-pub-9
  slot: "77"
preview:
  cache_ttl: 30s
targets:
  production:
    url: https://blog.example.com/
    analytics_id: G-1
  staging:
    url: https://staging.example.com
    robots:
      - user_agent: "*"
        allow: ["/"]
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	writeFile(t, path, testConfigYAML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Riffy Blog", cfg.Name)
	assert.Equal(t, 4, cfg.PageSize)
	assert.Equal(t, AdsConfig{Client: "ca-pub-9", Slot: "77"}, cfg.Ads)
	assert.Equal(t, 30*time.Second, cfg.Preview.CacheTTL)
	assert.Equal(t, Development, cfg.Target)
	assert.Equal(t, "http://localhost:8000", cfg.URL())

	// defaults
	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, "public", cfg.OutputDir)
	assert.Equal(t, runtime.NumCPU(), cfg.Concurrency)
	assert.Equal(t, []int{250, 500, 1000}, cfg.Images.Widths)
	assert.Equal(t, "Riffy Blog", cfg.Manifest.ShortName)
	assert.Equal(t, ":8000", cfg.Preview.Addr)
}

func TestLoadConfigEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	writeFile(t, path, testConfigYAML)
	t.Setenv("PUBSITE_ENV", "production")
	t.Setenv("PUBSITE_OUTPUT_DIR", "dist")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Production, cfg.Target)
	assert.Equal(t, "dist", cfg.OutputDir)

	d := cfg.Deployment()
	assert.Equal(t, "https://blog.example.com", d.URL)
	assert.Equal(t, "G-1", d.AnalyticsID)
	assert.Equal(t, Production.DefaultRobots(), d.Robots)

	info := cfg.siteInfo()
	assert.Equal(t, "https://blog.example.com", info.URL)
	assert.Equal(t, Production, info.Target)
}

func TestLoadConfigStagingRobots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	writeFile(t, path, testConfigYAML)
	t.Setenv("PUBSITE_ENV", "staging")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []RobotsRule{{UserAgent: "*", Allow: []string{"/"}}}, cfg.Deployment().Robots)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "env: qa\n")
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, `unknown deployment target "qa"`)

	badTarget := filepath.Join(dir, "target.yaml")
	writeFile(t, badTarget, "targets:\n  moon:\n    url: https://moon\n")
	_, err = LoadConfig(badTarget)
	assert.ErrorContains(t, err, "targets")

	noSecret := filepath.Join(dir, "secret.yaml")
	writeFile(t, noSecret, "preview:\n  password: hunter2\n")
	_, err = LoadConfig(noSecret)
	assert.ErrorContains(t, err, "session_secret")
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, 6, cfg.PageSize)
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := SiteConfig{PageSize: 3, Images: ImageConfig{MaxWidth: 800, Quality: 120}, SitemapExclude: []string{}}
	cfg.setDefaults()
	assert.Equal(t, 3, cfg.PageSize)
	assert.Equal(t, []int{200, 400, 800}, cfg.Images.Widths)
	assert.Equal(t, 90, cfg.Images.Quality)
	assert.Empty(t, cfg.SitemapExclude)
}
