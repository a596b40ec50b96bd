package scaffold_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/scaffold"
	"github.com/eringen/pubsite/views"
)

func testData() scaffold.Data {
	return scaffold.Data{
		ProjectName: "myblog",
		SiteName:    "My Blog",
		Author:      "Jane Doe",
		Date:        "2024-06-01",
	}
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "myblog")
	created, err := scaffold.Generate(dir, testData())
	require.NoError(t, err)

	for _, rel := range []string{
		"site.yaml",
		".env.example",
		".gitignore",
		filepath.Join("data", "authors.yaml"),
		filepath.Join("data", "categories.yaml"),
		filepath.Join("content", "hello-world", "index.md"),
		filepath.Join("content", "hello-world", "banner.png"),
		filepath.Join("static", "favicon.svg"),
		filepath.Join("static", "icon.png"),
	} {
		assert.Contains(t, created, rel)
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.NoError(t, err, rel)
	}

	site, err := os.ReadFile(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(site), `name: "My Blog"`)
	assert.NotContains(t, string(site), "{{")

	authors, err := os.ReadFile(filepath.Join(dir, "data", "authors.yaml"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(authors), "- user: myblog\n"))
}

func TestGenerateRejectsExistingDir(t *testing.T) {
	dir := t.TempDir()
	_, err := scaffold.Generate(dir, testData())
	assert.ErrorContains(t, err, "already exists")
}

func TestGeneratedProjectBuilds(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "myblog")
	_, err := scaffold.Generate(dir, testData())
	require.NoError(t, err)
	t.Chdir(dir)

	cfg, err := pubsite.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "My Blog", cfg.Name)

	site := pubsite.New(cfg, views.Funcs())
	t.Cleanup(func() { site.Close() })
	report, err := site.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Posts)
	assert.Equal(t, 1, report.Images)

	page, err := os.ReadFile(filepath.Join("public", "hello-world", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Hello, world | My Blog</title>")
	assert.Contains(t, string(page), "<pre")

	_, err = os.Stat(filepath.Join("public", "icons", "icon-192x192.png"))
	assert.NoError(t, err)
}
