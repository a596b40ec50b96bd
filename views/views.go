// Package views provides the default pubsite views. Each view is a
// hand-written templ.Component; body views emit their head metadata with
// pubsite.EmitHead before writing any markup.
package views

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// Funcs returns the default view set.
func Funcs() pubsite.ViewFuncs {
	return pubsite.ViewFuncs{
		Layout:     Layout,
		Article:    Article,
		Listing:    Listing,
		Categories: Categories,
		NotFound:   NotFound,
		Login:      Login,
		Drafts:     Drafts,
	}
}

// Layout wraps a rendered body in the HTML document and its head.
func Layout(v pubsite.LayoutView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<!DOCTYPE html><html lang="` + esc(v.Site.Lang) + `"><head>`)
		writeHead(&buf, v.Site, v.Head)
		buf.WriteString(`</head><body>`)
		buf.WriteString(`<header class="site-header"><a class="site-name" href="/">` + esc(v.Site.Name) + `</a>`)
		buf.WriteString(`<nav><a href="/category">Categories</a><a href="/rss.xml">RSS</a></nav></header>`)
		buf.WriteString(`<main>`)
		if err := v.Body.Render(ctx, &buf); err != nil {
			return err
		}
		buf.WriteString(`</main>`)
		buf.WriteString(`<footer class="site-footer"><span>&copy; ` + esc(v.Site.Name) + `</span></footer>`)
		buf.WriteString(`</body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeHead(buf *bytes.Buffer, site pubsite.SiteInfo, head pubsite.PageMeta) {
	meta := func(attr, key, content string) {
		buf.WriteString(`<meta ` + attr + `="` + key + `" content="` + esc(content) + `">`)
	}

	buf.WriteString(`<meta charset="utf-8">`)
	meta("name", "viewport", "width=device-width, initial-scale=1")
	buf.WriteString(`<title>` + esc(DocTitle(head, site)) + `</title>`)
	if head.Description != "" {
		meta("name", "description", head.Description)
	}
	if head.URL != "" {
		buf.WriteString(`<link rel="canonical" href="` + esc(head.URL) + `">`)
		meta("property", "og:url", head.URL)
	}
	meta("property", "og:title", head.Title)
	meta("property", "og:site_name", site.Name)
	ogType := head.OGType
	if ogType == "" {
		ogType = "website"
	}
	meta("property", "og:type", ogType)
	if head.Description != "" {
		meta("property", "og:description", head.Description)
	}
	if head.Image != "" {
		meta("property", "og:image", head.Image)
		meta("name", "twitter:card", "summary_large_image")
	} else {
		meta("name", "twitter:card", "summary")
	}
	if head.Author.Twitter != "" {
		meta("name", "twitter:creator", "@"+head.Author.Twitter)
	}
	if head.Author.Facebook != "" {
		meta("property", "article:author", "https://www.facebook.com/"+head.Author.Facebook)
	}
	if !head.Published.IsZero() {
		meta("property", "article:published_time", head.Published.Format(time.RFC3339))
	}
	if site.FacebookAppID != "" {
		meta("property", "fb:app_id", site.FacebookAppID)
	}
	if site.ThemeColor != "" {
		meta("name", "theme-color", site.ThemeColor)
	}

	buf.WriteString(`<link rel="manifest" href="/manifest.webmanifest">`)
	buf.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + esc(site.Name) + `" href="/rss.xml">`)
	buf.WriteString(`<link rel="alternate" type="application/feed+json" title="` + esc(site.Name) + `" href="/feed.json">`)
	buf.WriteString(`<link rel="stylesheet" href="/assets/pubsite.css">`)

	// JSON-LD is produced by encoding/json, which escapes <, > and &.
	if head.JSONLD != "" {
		buf.WriteString(`<script type="application/ld+json">` + head.JSONLD + `</script>`)
	}
	if site.AnalyticsID != "" {
		id, _ := json.Marshal(site.AnalyticsID)
		buf.WriteString(`<script async src="https://www.googletagmanager.com/gtag/js?id=` + esc(url.QueryEscape(site.AnalyticsID)) + `"></script>`)
		buf.WriteString(`<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config',` + string(id) + `);</script>`)
	}
}
