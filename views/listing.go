package views

import (
	"bytes"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// Listing renders one page of post cards with its pagination.
func Listing(v pubsite.ListingView) templ.Component {
	return body(v.Meta, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="listing listing-` + esc(string(v.Kind)) + `">`)
		if v.Kind != pubsite.ListingHome {
			buf.WriteString(`<h1>` + esc(v.Title) + `</h1>`)
			if v.Description != "" {
				buf.WriteString(`<p class="listing-description">` + esc(v.Description) + `</p>`)
			}
		}

		if len(v.Listing.Cards) == 0 {
			buf.WriteString(`<p class="empty">No posts yet.</p>`)
		} else {
			buf.WriteString(`<div class="cards">`)
			for _, c := range v.Listing.Cards {
				writeCard(buf, c)
			}
			buf.WriteString(`</div>`)
		}

		writePagination(buf, v.Listing.Pagination)
		buf.WriteString(`</section>`)
	})
}

func writeCard(buf *bytes.Buffer, c pubsite.Card) {
	class := "card"
	if c.Featured {
		class += " featured"
	}
	buf.WriteString(`<article class="` + class + `"><a class="card-link" href="` + href(c.Slug) + `">`)
	if c.Banner.Src != "" {
		buf.WriteString(`<img src="` + href(c.Banner.Src) + `" srcset="` + esc(c.Banner.SrcSet) + `"`)
		buf.WriteString(` sizes="(max-width: 600px) 100vw, 300px" loading="lazy" alt="` + esc(c.Title) + `">`)
	}
	buf.WriteString(`<div class="card-body"><h2 class="card-title">` + esc(c.Title) + `</h2>`)
	if c.Subtitle != "" {
		buf.WriteString(`<p class="card-subtitle">` + esc(c.Subtitle) + `</p>`)
	}
	buf.WriteString(`</div></a>`)
	buf.WriteString(`<p class="card-meta"><a class="author" href="` + href("/author/"+c.Author.User) + `">` + esc(c.Author.Name) + `</a>`)
	buf.WriteString(` <span class="date">` + esc(c.Date) + `</span></p></article>`)
}

func writePagination(buf *bytes.Buffer, p pubsite.Pagination) {
	if p.Total <= 1 {
		return
	}
	buf.WriteString(`<ul class="pagination">`)
	if p.Prev != "" {
		buf.WriteString(`<li><a class="prev" rel="prev" href="` + href(p.Prev) + `">&laquo;</a></li>`)
	}
	for _, item := range p.Pages {
		n := strconv.Itoa(item.N)
		if item.Current {
			buf.WriteString(`<li><span class="current" aria-current="page">` + n + `</span></li>`)
			continue
		}
		buf.WriteString(`<li><a href="` + href(item.Href) + `">` + n + `</a></li>`)
	}
	if p.Next != "" {
		buf.WriteString(`<li><a class="next" rel="next" href="` + href(p.Next) + `">&raquo;</a></li>`)
	}
	buf.WriteString(`</ul>`)
}

// Categories renders the category index.
func Categories(v pubsite.CategoryIndexView) templ.Component {
	return body(v.Meta, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="categories"><h1>Categories</h1><ul>`)
		for _, s := range v.Categories {
			buf.WriteString(`<li><a href="` + href(s.Category.Link()) + `">` + esc(s.Category.Name) + `</a>`)
			buf.WriteString(` <span class="count">(` + strconv.Itoa(s.Posts) + `)</span>`)
			if s.Category.Desc != "" {
				buf.WriteString(`<p>` + esc(s.Category.Desc) + `</p>`)
			}
			buf.WriteString(`</li>`)
		}
		buf.WriteString(`</ul></section>`)
	})
}
