package pubsite

import "strings"

// AdSlot identifies the advertisement unit placed on an article.
type AdSlot struct {
	Client string
	Slot   string
}

// ArticleView is everything the article template needs. Previous and Next
// are nil when the post has no sibling on that side.
type ArticleView struct {
	Site     SiteInfo
	Post     Post
	Author   Author
	Category Category
	Banner   Image
	Previous *NavEdge
	Next     *NavEdge
	ShowAd   bool
	Ad       AdSlot
	Meta     PageMeta
}

// NavEdgeOf returns the navigation edge for p, or nil when p is nil.
func NavEdgeOf(p *Post) *NavEdge {
	if p == nil {
		return nil
	}
	return &NavEdge{Title: p.Title, Slug: NormalizeSlug(p.Slug)}
}

// BuildArticle resolves the author and category of post and assembles its
// article view. The ad slot is enabled only for targets that show ads.
func BuildArticle(site SiteInfo, ads AdsConfig, post Post, dir *AuthorDirectory, cats []Category, banner Image, prev, next *NavEdge) (ArticleView, error) {
	author, err := dir.Resolve(post)
	if err != nil {
		return ArticleView{}, err
	}
	v := ArticleView{
		Site:     site,
		Post:     post,
		Author:   author,
		Category: CategoryOf(cats, post.Category),
		Banner:   banner,
		Previous: prev,
		Next:     next,
		ShowAd:   site.Target.ShowsAds(),
		Meta:     ArticleMeta(site, post, author, banner),
	}
	if v.ShowAd {
		v.Ad = AdSlot{Client: ads.Client, Slot: ads.Slot}
	}
	return v, nil
}

// CategoryOf returns the category record for key. Keys without a record get
// one named after the key; an empty key yields the zero Category.
func CategoryOf(cats []Category, key string) Category {
	if key == "" {
		return Category{}
	}
	for _, c := range cats {
		if c.Key == key {
			return c
		}
	}
	return Category{Key: key, Name: key}
}

// ArticleMeta builds the head metadata for an article page.
func ArticleMeta(site SiteInfo, post Post, author Author, banner Image) PageMeta {
	desc := post.Subtitle
	if strings.TrimSpace(desc) == "" {
		desc = post.Excerpt
	}
	return PageMeta{
		Title:       post.Title,
		Description: desc,
		URL:         BuildURL(site.URL, post.Slug),
		OGType:      "article",
		Image:       AbsoluteURL(site.URL, banner.Src),
		Author:      author,
		Published:   post.Date,
		JSONLD:      BlogPostingJsonLD(site, post, author, banner),
	}
}
