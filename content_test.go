package pubsite

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadContent(t *testing.T) {
	cfg := newTestProject(t)
	c, err := LoadContent(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"secret", "third", "second", "first"}, slugs(c.Posts))
	assert.Equal(t, []string{"third", "second", "first"}, slugs(c.Published()))
	require.Len(t, c.Authors, 2)
	assert.Equal(t, "rayriffy", c.Authors[0].User)
	require.Len(t, c.Categories, 2)
	assert.Equal(t, "Songs", c.Categories[0].Desc)

	first := c.Posts[3]
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, filepath.Join(cfg.ContentDir, "first", "banner.png"), first.BannerPath)
	assert.Contains(t, first.HTML, "<p>Body of first.</p>")
	assert.Equal(t, "Body of first.", first.Excerpt)
	assert.Equal(t, StatusDraft, c.Posts[0].Status)
	assert.True(t, c.Posts[1].Featured)
}

func TestLoadPostSlugAndTitle(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name      string
		file      string
		front     string
		wantSlug  string
		wantTitle string
	}{
		{"flat file", "hello-world.md", "", "hello-world", "Hello World"},
		{"bundle", "my_trip/index.md", "", "my_trip", "My Trip"},
		{"explicit slug", "x.md", "slug: /custom/\ntitle: Given", "custom", "Given"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, filepath.FromSlash(tt.file))
			writeFile(t, path, "---\nauthor: a\ndate: 2021-05-06\n"+tt.front+"\n---\nText\n")
			p, err := LoadPost(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, p.Slug)
			assert.Equal(t, tt.wantTitle, p.Title)
			assert.Equal(t, StatusPublished, p.Status)
			assert.Equal(t, path, p.Source)
		})
	}
}

func TestLoadPostDates(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2021-05-06", time.Date(2021, 5, 6, 0, 0, 0, 0, time.UTC)},
		{"2021-05-06 10:30:00", time.Date(2021, 5, 6, 10, 30, 0, 0, time.UTC)},
		{"2021-05-06T10:30:00", time.Date(2021, 5, 6, 10, 30, 0, 0, time.UTC)},
		{"2021-05-06T10:30:00+07:00", time.Date(2021, 5, 6, 3, 30, 0, 0, time.UTC)},
	}
	for i, tt := range tests {
		path := filepath.Join(dir, "p"+string(rune('a'+i))+".md")
		writeFile(t, path, "---\nauthor: a\ndate: \""+tt.in+"\"\n---\n")
		p, err := LoadPost(path)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(p.Date), "%s: got %s", tt.in, p.Date)
		assert.Equal(t, time.UTC, p.Date.Location())
	}
}

func TestLoadPostRejectsBadFrontMatter(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"missing author", "---\ndate: 2021-01-01\n---\n", "author is required"},
		{"missing date", "---\nauthor: a\n---\n", "date is required"},
		{"bad date", "---\nauthor: a\ndate: yesterday\n---\n", `date "yesterday"`},
		{"bad status", "---\nauthor: a\ndate: 2021-01-01\nstatus: hidden\n---\n", "status must be one of"},
		{"broken yaml", "---\nauthor: [a\n---\n", "front-matter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".md")
			writeFile(t, path, tt.content)
			_, err := LoadPost(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadPostRejectsUnsafeSlugs(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		slug    string
		wantMsg string
	}{
		{"../escaped", "relative path segment"},
		{"a/../../b", "relative path segment"},
		{"./here", "relative path segment"},
		{"a//b", "empty path segment"},
		{`a\b`, "invalid character"},
		{"pages", "reserved"},
		{"pages/2", "reserved"},
		{"category", "reserved"},
		{"Category/music", "reserved"},
		{"author/x", "reserved"},
		{"_drafts/x", "reserved"},
		{"static", "reserved"},
		{"assets/app.css", "reserved"},
		{"icons", "reserved"},
		{"rss.xml", "generated file"},
		{"404.html", "generated file"},
	}
	for i, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			path := filepath.Join(dir, "p"+string(rune('a'+i))+".md")
			writeFile(t, path, "---\nauthor: a\ndate: 2021-01-01\nslug: '"+tt.slug+"'\n---\n")
			_, err := LoadPost(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadPostAllowsNestedSlugs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.md")
	writeFile(t, path, "---\nauthor: a\ndate: 2021-01-01\nslug: 2021/notes\n---\n")
	p, err := LoadPost(path)
	require.NoError(t, err)
	assert.Equal(t, "2021/notes", p.Slug)
}

func TestLoadContentReportsUnsafeSlug(t *testing.T) {
	cfg := newTestProject(t)
	bad := filepath.Join(cfg.ContentDir, "escape.md")
	writeFile(t, bad, postSource("escape", "rayriffy", "2020-01-01", "music", "slug: ../escaped"))

	_, err := LoadContent(cfg)
	require.Error(t, err)
	var ce *ContentError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, bad, ce.Path)
	assert.NoDirExists(t, filepath.Join(filepath.Dir(cfg.OutputDir), "escaped"))
}

func TestLoadPostTruncatesSubSecondDates(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	writeFile(t, a, "---\nauthor: a\ndate: \"2021-05-06T10:30:00.900Z\"\n---\n")
	writeFile(t, b, "---\nauthor: a\ndate: \"2021-05-06T10:30:00.100Z\"\n---\n")

	pa, err := LoadPost(a)
	require.NoError(t, err)
	pb, err := LoadPost(b)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 5, 6, 10, 30, 0, 0, time.UTC), pa.Date)
	assert.True(t, pa.Date.Equal(pb.Date))

	// Equal seconds fall back to the slug, as the index does.
	posts := []Post{pb, pa}
	SortPosts(posts)
	assert.Equal(t, []string{"a", "b"}, slugs(posts))
}

func TestLoadContentAggregatesErrors(t *testing.T) {
	cfg := newTestProject(t)
	bad1 := filepath.Join(cfg.ContentDir, "broken.md")
	bad2 := filepath.Join(cfg.ContentDir, "orphan.md")
	writeFile(t, bad1, "---\ntitle: no author\n---\n")
	writeFile(t, bad2, postSource("orphan", "ghost", "2020-01-01", "music"))

	_, err := LoadContent(cfg)
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "expected a joined error, got %T", err)
	errs := joined.Unwrap()
	require.Len(t, errs, 2)

	paths := map[string]bool{}
	for _, e := range errs {
		var ce *ContentError
		require.True(t, errors.As(e, &ce))
		paths[ce.Path] = true
	}
	assert.True(t, paths[bad1])
	assert.True(t, paths[bad2])
	assert.True(t, errors.Is(err, ErrAuthorNotFound))
}

func TestLoadContentDuplicateSlug(t *testing.T) {
	cfg := newTestProject(t)
	writeFile(t, filepath.Join(cfg.ContentDir, "again.md"), postSource("again", "rayriffy", "2020-01-01", "music", "slug: second"))

	_, err := LoadContent(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `slug "second" already used`)
}

func TestLoadContentRecordErrors(t *testing.T) {
	t.Run("category without key", func(t *testing.T) {
		cfg := newTestProject(t)
		writeFile(t, filepath.Join(cfg.DataDir, "categories.json"), `[{"name": "Nameless"}]`)
		_, err := LoadContent(cfg)
		assert.ErrorContains(t, err, "has no key")
	})
	t.Run("duplicate author", func(t *testing.T) {
		cfg := newTestProject(t)
		writeFile(t, filepath.Join(cfg.DataDir, "authors.yaml"), "- user: a\n  name: A\n- user: a\n  name: B\n")
		_, err := LoadContent(cfg)
		assert.ErrorContains(t, err, "duplicate author")
	})
	t.Run("malformed records", func(t *testing.T) {
		cfg := newTestProject(t)
		path := filepath.Join(cfg.DataDir, "categories.json")
		writeFile(t, path, `{not json`)
		_, err := LoadContent(cfg)
		var ce *ContentError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, path, ce.Path)
	})
}

func TestLoadRecordsPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "authors.json"), `[{"user": "json", "name": "J"}]`)
	writeFile(t, filepath.Join(dir, "authors.yml"), "- user: yml\n  name: Y\n")

	got, err := loadRecords[Author](dir, "authors")
	require.NoError(t, err)
	assert.Equal(t, []Author{{User: "json", Name: "J"}}, got)

	require.NoError(t, os.Remove(filepath.Join(dir, "authors.json")))
	got, err = loadRecords[Author](dir, "authors")
	require.NoError(t, err)
	assert.Equal(t, []Author{{User: "yml", Name: "Y"}}, got)

	got, err = loadRecords[Author](dir, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSortPostsTieBreaksOnSlug(t *testing.T) {
	posts := []Post{
		{Slug: "b", Date: day("2020-01-01")},
		{Slug: "c", Date: day("2020-01-02")},
		{Slug: "a", Date: day("2020-01-01")},
	}
	SortPosts(posts)
	assert.Equal(t, []string{"c", "a", "b"}, slugs(posts))
}

func TestBundleAssets(t *testing.T) {
	cfg := newTestProject(t)
	c, err := LoadContent(cfg)
	require.NoError(t, err)

	for _, p := range c.Posts {
		files, err := BundleAssets(p)
		require.NoError(t, err)
		if p.Slug == "first" {
			var names []string
			for _, f := range files {
				names = append(names, filepath.Base(f))
			}
			assert.ElementsMatch(t, []string{"banner.png", "notes.txt"}, names)
		} else {
			assert.Empty(t, files, p.Slug)
		}
	}
}
