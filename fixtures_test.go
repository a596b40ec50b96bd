package pubsite

import (
	"context"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

// testViews renders minimal, easily inspected markup.
func testViews() ViewFuncs {
	return ViewFuncs{
		Layout: func(v LayoutView) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				if _, err := fmt.Fprintf(w, "<html><head><title>%s</title><link rel=\"canonical\" href=\"%s\"><meta property=\"og:type\" content=\"%s\"></head><body>",
					html.EscapeString(v.Head.Title), v.Head.URL, v.Head.OGType); err != nil {
					return err
				}
				if err := v.Body.Render(ctx, w); err != nil {
					return err
				}
				_, err := io.WriteString(w, "</body></html>")
				return err
			})
		},
		Article: func(v ArticleView) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				EmitHead(ctx, v.Meta)
				fmt.Fprintf(w, "<article data-author=%q data-category=%q><h1>%s</h1>", v.Author.Name, v.Category.Name, html.EscapeString(v.Post.Title))
				if v.Banner.Src != "" {
					fmt.Fprintf(w, "<img src=%q>", v.Banner.Src)
				}
				if v.ShowAd {
					fmt.Fprintf(w, "<ins class=\"ad\" data-slot=%q></ins>", v.Ad.Slot)
				}
				if v.Previous != nil {
					fmt.Fprintf(w, "<a rel=\"prev\" href=%q>%s</a>", v.Previous.Slug, v.Previous.Title)
				}
				if v.Next != nil {
					fmt.Fprintf(w, "<a rel=\"next\" href=%q>%s</a>", v.Next.Slug, v.Next.Title)
				}
				_, err := io.WriteString(w, "</article>")
				return err
			})
		},
		Listing: func(v ListingView) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				EmitHead(ctx, v.Meta)
				fmt.Fprintf(w, "<section data-page=\"%d/%d\">", v.Listing.Page.Current, v.Listing.Page.Total)
				for _, c := range v.Listing.Cards {
					fmt.Fprintf(w, "<a class=\"card\" href=%q>%s</a>", c.Slug, c.Author.Name)
				}
				for _, p := range v.Listing.Pagination.Pages {
					fmt.Fprintf(w, "<a class=\"page\" href=%q>%d</a>", p.Href, p.N)
				}
				_, err := io.WriteString(w, "</section>")
				return err
			})
		},
		Categories: func(v CategoryIndexView) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				EmitHead(ctx, v.Meta)
				for _, c := range v.Categories {
					fmt.Fprintf(w, "<li>%s (%d)</li>", c.Category.Name, c.Posts)
				}
				return nil
			})
		},
		NotFound: func(site SiteInfo) templ.Component {
			return templ.Raw("<h1>Not Found</h1>")
		},
		Login: func(v LoginView) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := fmt.Fprintf(w, "<form data-error=\"%t\"><input name=\"_csrf\" value=%q></form>", v.ShowError, v.CSRFToken)
				return err
			})
		},
		Drafts: func(v DraftsView) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				for _, p := range v.Drafts {
					fmt.Fprintf(w, "<li class=\"draft\">%s</li>", p.Slug)
				}
				_, err := fmt.Fprintf(w, "<form action=\"/_drafts/logout\"><input name=\"_csrf\" value=%q></form>", v.CSRFToken)
				return err
			})
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func postSource(slug, author, date, category string, extra ...string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\nauthor: %s\ndate: %s\ncategory: %s\n", titler.String(slug), author, date, category)
	for _, e := range extra {
		b.WriteString(e + "\n")
	}
	b.WriteString("---\n\nBody of " + slug + ".\n")
	return b.String()
}

// newTestProject lays out a small site in a temp directory and returns its
// config. It has three published posts, one draft, two authors and two
// categories.
func newTestProject(t *testing.T) SiteConfig {
	t.Helper()
	root := t.TempDir()
	content := filepath.Join(root, "content")
	data := filepath.Join(root, "data")
	static := filepath.Join(root, "static")

	writeFile(t, filepath.Join(data, "authors.yaml"), `- user: rayriffy
  name: Phumrapee
  twitter: rayriffy
- user: siriusstars
  name: Sirius
`)
	writeFile(t, filepath.Join(data, "categories.json"), `[
  {"key": "music", "name": "Music", "desc": "Songs"},
  {"key": "programming", "name": "Programming", "desc": "Code"}
]`)

	writeFile(t, filepath.Join(content, "first", "index.md"), postSource("first", "rayriffy", "2020-01-01", "music", "banner: ./banner.png"))
	writePNG(t, filepath.Join(content, "first", "banner.png"), 1200, 600)
	writeFile(t, filepath.Join(content, "first", "notes.txt"), "attached")
	writeFile(t, filepath.Join(content, "second.md"), postSource("second", "siriusstars", "2020-02-01", "programming"))
	writeFile(t, filepath.Join(content, "third.md"), postSource("third", "rayriffy", "2020-03-01", "music", "featured: true"))
	writeFile(t, filepath.Join(content, "secret.md"), postSource("secret", "rayriffy", "2020-04-01", "music", "status: draft"))

	writeFile(t, filepath.Join(static, "favicon.svg"), "<svg/>")

	cfg := SiteConfig{
		Name:         "Test Blog",
		Description:  "A test blog",
		ContentDir:   content,
		DataDir:      data,
		StaticDir:    static,
		OutputDir:    filepath.Join(root, "public"),
		DatabasePath: filepath.Join(root, ".cache", "content.db"),
		PageSize:     2,
		Concurrency:  2,
		Ads:          AdsConfig{Client: "ca-pub-1", Slot: "42"},
	}
	cfg.setDefaults()
	return cfg
}

func readOutput(t *testing.T, cfg SiteConfig, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(b)
}
