package pubsite

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/eringen/pubsite/markdown"
)

// Content is everything loaded from the content and data directories.
type Content struct {
	Posts      []Post // every post, drafts included, date descending
	Authors    []Author
	Categories []Category
}

// Published returns the published posts in date-descending order.
func (c *Content) Published() []Post {
	out := make([]Post, 0, len(c.Posts))
	for _, p := range c.Posts {
		if p.Published() {
			out = append(out, p)
		}
	}
	return out
}

type frontMatter struct {
	Slug     string `yaml:"slug" json:"slug"`
	Title    string `yaml:"title" json:"title"`
	Subtitle string `yaml:"subtitle" json:"subtitle"`
	Author   string `yaml:"author" json:"author" validate:"required"`
	Date     string `yaml:"date" json:"date" validate:"required"`
	Category string `yaml:"category" json:"category"`
	Banner   string `yaml:"banner" json:"banner"`
	Featured bool   `yaml:"featured" json:"featured"`
	Status   string `yaml:"status" json:"status" validate:"omitempty,oneof=published draft"`
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	titler   = cases.Title(language.English)

	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// LoadContent reads every post under cfg.ContentDir and the author and
// category records under cfg.DataDir. Every post must resolve to exactly one
// author. All per-file failures are collected and returned together, each
// one a *ContentError naming its file.
func LoadContent(cfg SiteConfig) (*Content, error) {
	authors, err := loadRecords[Author](cfg.DataDir, "authors")
	if err != nil {
		return nil, err
	}
	categories, err := loadRecords[Category](cfg.DataDir, "categories")
	if err != nil {
		return nil, err
	}
	dir, err := NewAuthorDirectory(authors)
	if err != nil {
		return nil, fmt.Errorf("pubsite: authors: %w", err)
	}
	for _, c := range categories {
		if c.Key == "" {
			return nil, fmt.Errorf("pubsite: category %q has no key", c.Name)
		}
	}

	var (
		posts []Post
		errs  []error
		seen  = make(map[string]string)
	)
	walkErr := filepath.WalkDir(cfg.ContentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		p, err := LoadPost(path)
		if err != nil {
			errs = append(errs, contentErr(path, err))
			return nil
		}
		if prev, dup := seen[p.Slug]; dup {
			errs = append(errs, contentErr(path, fmt.Errorf("slug %q already used by %s", p.Slug, prev)))
			return nil
		}
		seen[p.Slug] = path
		if _, err := dir.Resolve(p); err != nil {
			errs = append(errs, contentErr(path, err))
			return nil
		}
		posts = append(posts, p)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("pubsite: walk %s: %w", cfg.ContentDir, walkErr)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	SortPosts(posts)
	return &Content{Posts: posts, Authors: dir.Authors(), Categories: categories}, nil
}

// LoadPost parses one Markdown file with front-matter into a Post.
func LoadPost(path string) (Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Post{}, err
	}
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return Post{}, fmt.Errorf("front-matter: %w", err)
	}
	if err := validate.Struct(fm); err != nil {
		return Post{}, fmt.Errorf("front-matter: %w", describeValidation(err))
	}
	date, err := parseDate(fm.Date)
	if err != nil {
		return Post{}, fmt.Errorf("front-matter: %w", err)
	}

	html, err := markdown.ToHTML(body)
	if err != nil {
		return Post{}, fmt.Errorf("markdown: %w", err)
	}

	slug := strings.Trim(fm.Slug, "/")
	if slug == "" {
		slug = slugFromPath(path)
	}
	if err := validateSlug(slug); err != nil {
		return Post{}, fmt.Errorf("front-matter: %w", err)
	}
	title := fm.Title
	if title == "" {
		title = titler.String(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	}
	status := fm.Status
	if status == "" {
		status = StatusPublished
	}

	p := Post{
		Slug:     slug,
		Title:    title,
		Subtitle: fm.Subtitle,
		Author:   fm.Author,
		Date:     date,
		Category: fm.Category,
		Banner:   fm.Banner,
		Featured: fm.Featured,
		Status:   status,
		HTML:     html,
		Excerpt:  markdown.Excerpt(html, markdown.ExcerptLength),
		Source:   path,
	}
	if fm.Banner != "" {
		p.BannerPath = filepath.Join(filepath.Dir(path), filepath.FromSlash(fm.Banner))
	}
	return p, nil
}

// reservedSlugs are first path segments owned by listings, the preview
// server and generated assets.
var reservedSlugs = map[string]bool{
	"pages":    true,
	"category": true,
	"author":   true,
	"_drafts":  true,
	"static":   true,
	"assets":   true,
	"icons":    true,
}

// siteFiles are generated at the output root and cannot be post slugs.
var siteFiles = map[string]bool{
	"404.html":             true,
	"sitemap.xml":          true,
	"robots.txt":           true,
	"rss.xml":              true,
	"feed.json":            true,
	"manifest.webmanifest": true,
	"_headers":             true,
}

// validateSlug rejects slugs that would leave the output directory or land
// on a path another page owns.
func validateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is empty")
	}
	if strings.ContainsAny(slug, `\?#`) {
		return fmt.Errorf("slug %q contains an invalid character", slug)
	}
	segs := strings.Split(slug, "/")
	for _, seg := range segs {
		switch seg {
		case "":
			return fmt.Errorf("slug %q has an empty path segment", slug)
		case ".", "..":
			return fmt.Errorf("slug %q has a relative path segment", slug)
		}
	}
	if reservedSlugs[strings.ToLower(segs[0])] {
		return fmt.Errorf("slug %q is reserved for %s/", slug, segs[0])
	}
	if len(segs) == 1 && siteFiles[strings.ToLower(slug)] {
		return fmt.Errorf("slug %q clashes with a generated file", slug)
	}
	return nil
}

// slugFromPath names a post after its bundle directory for index.md files,
// otherwise after the file itself.
func slugFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.EqualFold(base, "index") {
		return filepath.Base(filepath.Dir(path))
	}
	return base
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// The index stores whole seconds; listings and siblings must agree.
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: use YYYY-MM-DD or RFC 3339", s)
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// SortPosts orders posts by date descending, newest first. Posts sharing a
// date are ordered by slug so builds are deterministic.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// loadRecords reads dir/name.json, dir/name.yaml or dir/name.yml, in that
// order. A missing file yields no records.
func loadRecords[T any](dir, name string) ([]T, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, contentErr(path, err)
		}
		var out []T
		if ext == ".json" {
			err = json.Unmarshal(raw, &out)
		} else {
			err = yaml.Unmarshal(raw, &out)
		}
		if err != nil {
			return nil, contentErr(path, err)
		}
		return out, nil
	}
	return nil, nil
}

// BundleAssets lists the files that sit next to a bundle post (index.md) and
// are copied beside the rendered page. Flat posts have no bundle.
func BundleAssets(p Post) ([]string, error) {
	if !strings.EqualFold(strings.TrimSuffix(filepath.Base(p.Source), filepath.Ext(p.Source)), "index") {
		return nil, nil
	}
	entries, err := os.ReadDir(filepath.Dir(p.Source))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		out = append(out, filepath.Join(filepath.Dir(p.Source), e.Name()))
	}
	return out, nil
}
