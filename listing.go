package pubsite

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeSlug returns slug with a leading "/". Already-prefixed slugs are
// returned unchanged, so the function is idempotent.
func NormalizeSlug(slug string) string {
	if strings.HasPrefix(slug, "/") {
		return slug
	}
	return "/" + slug
}

// PageLink is the URL of page n under a pagination prefix.
func PageLink(prefix string, n int) string {
	return strings.TrimSuffix(prefix, "/") + "/" + strconv.Itoa(n)
}

// PageContext describes one page of a paginated listing. Pages are 1-indexed.
type PageContext struct {
	Current int
	Total   int
	Base    string // URL of the listing's first page, e.g. "/category/music"
	Prefix  string // pagination prefix, e.g. "/category/music/pages"
	Offset  int    // index of the first post on this page
	Limit   int    // page size
}

// Path is the canonical URL of this page.
func (p PageContext) Path() string {
	return PageLink(p.Prefix, p.Current)
}

// Paginate splits total posts into pages of pageSize. The page count is
// ceil(total/pageSize), with a minimum of one page so an empty listing still
// renders.
func Paginate(total, pageSize int, base, prefix string) []PageContext {
	if pageSize <= 0 {
		pageSize = 1
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		n = 1
	}
	pages := make([]PageContext, n)
	for i := range pages {
		pages[i] = PageContext{
			Current: i + 1,
			Total:   n,
			Base:    base,
			Prefix:  prefix,
			Offset:  i * pageSize,
			Limit:   pageSize,
		}
	}
	return pages
}

// Card is the summary of one post in a listing.
type Card struct {
	Slug     string
	Title    string
	Subtitle string
	Date     string
	Featured bool
	Author   Author
	Banner   Image
}

// PageLinkItem is one numbered link of the pagination control.
type PageLinkItem struct {
	N       int
	Href    string
	Current bool
}

// Pagination is the control rendered under a listing. Prev and Next are
// empty on the first and last page.
type Pagination struct {
	Current int
	Total   int
	Prev    string
	Next    string
	Pages   []PageLinkItem
}

// BuildPagination computes the pagination control for page.
func BuildPagination(page PageContext) Pagination {
	p := Pagination{Current: page.Current, Total: page.Total}
	if page.Current > 1 {
		p.Prev = PageLink(page.Prefix, page.Current-1)
	}
	if page.Current < page.Total {
		p.Next = PageLink(page.Prefix, page.Current+1)
	}
	p.Pages = make([]PageLinkItem, 0, page.Total)
	for n := 1; n <= page.Total; n++ {
		p.Pages = append(p.Pages, PageLinkItem{
			N:       n,
			Href:    PageLink(page.Prefix, n),
			Current: n == page.Current,
		})
	}
	return p
}

// Listing is an assembled listing page.
type Listing struct {
	Page       PageContext
	Cards      []Card
	Pagination Pagination
}

// AssembleListing joins each post of one page to its author and builds the
// cards in input order. Banners are looked up by post slug. A post whose
// author is missing from dir fails the whole page.
func AssembleListing(posts []Post, dir *AuthorDirectory, banners map[string]Image, page PageContext) (Listing, error) {
	if page.Total < 1 || page.Current < 1 || page.Current > page.Total {
		return Listing{}, fmt.Errorf("page %d out of range [1, %d]", page.Current, page.Total)
	}
	cards := make([]Card, 0, len(posts))
	for _, p := range posts {
		author, err := dir.Resolve(p)
		if err != nil {
			return Listing{}, err
		}
		cards = append(cards, Card{
			Slug:     NormalizeSlug(p.Slug),
			Title:    p.Title,
			Subtitle: p.Subtitle,
			Date:     p.DisplayDate(),
			Featured: p.Featured,
			Author:   author,
			Banner:   banners[p.Slug],
		})
	}
	return Listing{
		Page:       page,
		Cards:      cards,
		Pagination: BuildPagination(page),
	}, nil
}

// ListingKind tells views which kind of listing they render.
type ListingKind string

const (
	ListingHome     ListingKind = "home"
	ListingCategory ListingKind = "category"
	ListingAuthor   ListingKind = "author"
)

// ListingView is everything a listing template needs.
type ListingView struct {
	Site        SiteInfo
	Kind        ListingKind
	Title       string
	Description string
	Listing     Listing
	Meta        PageMeta
}

// CategorySummary is one entry of the category index.
type CategorySummary struct {
	Category Category
	Posts    int
}

// CategoryIndexView is the data behind the /category page.
type CategoryIndexView struct {
	Site       SiteInfo
	Categories []CategorySummary
	Meta       PageMeta
}
