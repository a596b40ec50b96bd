package pubsite

import (
	"encoding/json"
	"io"
	"time"
)

const jsonFeedVersion = "https://jsonfeed.org/version/1.1"

type jsonFeed struct {
	Version     string           `json:"version"`
	Title       string           `json:"title"`
	HomePageURL string           `json:"home_page_url"`
	FeedURL     string           `json:"feed_url"`
	Description string           `json:"description,omitempty"`
	Language    string           `json:"language,omitempty"`
	Authors     []jsonFeedAuthor `json:"authors,omitempty"`
	Items       []jsonFeedItem   `json:"items"`
}

type jsonFeedAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type jsonFeedItem struct {
	ID            string           `json:"id"`
	URL           string           `json:"url"`
	Title         string           `json:"title"`
	ContentHTML   string           `json:"content_html"`
	Summary       string           `json:"summary,omitempty"`
	Image         string           `json:"image,omitempty"`
	DatePublished string           `json:"date_published"`
	Authors       []jsonFeedAuthor `json:"authors,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
}

// WriteJSONFeed writes a JSON Feed 1.1 document of posts. Banner URLs come
// from banners keyed by post slug.
func WriteJSONFeed(w io.Writer, site SiteInfo, posts []Post, dir *AuthorDirectory, banners map[string]Image) error {
	feed := jsonFeed{
		Version:     jsonFeedVersion,
		Title:       site.Name,
		HomePageURL: BuildURL(site.URL),
		FeedURL:     AbsoluteURL(site.URL, "/feed.json"),
		Description: site.Description,
		Language:    site.Lang,
		Items:       make([]jsonFeedItem, 0, len(posts)),
	}
	if site.Author != "" {
		feed.Authors = []jsonFeedAuthor{{Name: site.Author}}
	}
	for _, p := range posts {
		postURL := BuildURL(site.URL, p.Slug)
		item := jsonFeedItem{
			ID:            postURL,
			URL:           postURL,
			Title:         p.Title,
			ContentHTML:   p.HTML,
			Summary:       p.Subtitle,
			DatePublished: p.Date.Format(time.RFC3339),
		}
		if b, ok := banners[p.Slug]; ok && b.Src != "" {
			item.Image = AbsoluteURL(site.URL, b.Src)
		}
		if a, err := dir.Lookup(p.Author); err == nil {
			item.Authors = []jsonFeedAuthor{{Name: a.Name, URL: AbsoluteURL(site.URL, "/author/"+a.User)}}
		}
		if p.Category != "" {
			item.Tags = []string{p.Category}
		}
		feed.Items = append(feed.Items, item)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(feed)
}
