package pubsite

import (
	"encoding/xml"
	"io"
	"path"
	"strings"
	"time"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// SitemapEntry is one page offered to the sitemap.
type SitemapEntry struct {
	Path    string
	LastMod time.Time
}

// SitemapExcluded reports whether a site path matches one of the exclusion
// patterns. Patterns use path.Match syntax, so "*" stays within a segment.
func SitemapExcluded(p string, patterns []string) bool {
	clean := "/" + strings.Trim(p, "/")
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, clean); ok {
			return true
		}
	}
	return false
}

// WriteSitemap writes an XML sitemap of every entry not excluded by the
// given patterns.
func WriteSitemap(w io.Writer, base string, entries []SitemapEntry, exclude []string) error {
	urls := make([]sitemapURL, 0, len(entries))
	for _, e := range entries {
		if SitemapExcluded(e.Path, exclude) {
			continue
		}
		u := sitemapURL{Loc: BuildURL(base, e.Path)}
		if e.Path == "/" || e.Path == "" {
			u.Loc = BuildURL(base)
		}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemap)
}
