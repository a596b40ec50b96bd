package views

import (
	"bytes"
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// Article renders one post.
func Article(v pubsite.ArticleView) templ.Component {
	return body(v.Meta, func(buf *bytes.Buffer) {
		post := v.Post
		buf.WriteString(`<article class="post"><h1>` + esc(post.Title) + `</h1>`)
		if post.Subtitle != "" {
			buf.WriteString(`<p class="subtitle">` + esc(post.Subtitle) + `</p>`)
		}

		buf.WriteString(`<p class="article-meta">`)
		buf.WriteString(`<a class="author" href="` + href("/author/"+v.Author.User) + `">` + esc(v.Author.Name) + `</a>`)
		buf.WriteString(`<time datetime="` + post.Date.Format(time.RFC3339) + `">` + esc(post.DisplayDate()) + `</time>`)
		if v.Category.Key != "" {
			buf.WriteString(`<a class="category" href="` + href(v.Category.Link()) + `">` + esc(v.Category.Name) + `</a>`)
		}
		buf.WriteString(`</p>`)

		if b := v.Banner; b.Src != "" {
			buf.WriteString(`<figure class="article-banner"><img src="` + href(b.Src) + `" srcset="` + esc(b.SrcSet) + `"`)
			buf.WriteString(` sizes="(max-width: 1000px) 100vw, 1000px" width="` + strconv.Itoa(b.Width) + `" height="` + strconv.Itoa(b.Height) + `"`)
			buf.WriteString(` alt="` + esc(post.Title) + `"></figure>`)
		}

		// Post bodies are rendered Markdown and written as is.
		buf.WriteString(`<div class="post-body">` + post.HTML + `</div>`)

		if v.ShowAd {
			client := esc(v.Ad.Client)
			buf.WriteString(`<div class="ad-slot">`)
			buf.WriteString(`<script async src="https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js?client=` + esc(url.QueryEscape(v.Ad.Client)) + `" crossorigin="anonymous"></script>`)
			buf.WriteString(`<ins class="adsbygoogle" style="display:block" data-ad-client="` + client + `" data-ad-slot="` + esc(v.Ad.Slot) + `" data-ad-format="auto" data-full-width-responsive="true"></ins>`)
			buf.WriteString(`<script>(adsbygoogle = window.adsbygoogle || []).push({});</script>`)
			buf.WriteString(`</div>`)
		}

		if v.Previous != nil || v.Next != nil {
			buf.WriteString(`<nav class="post-nav">`)
			if p := v.Previous; p != nil {
				buf.WriteString(`<a class="previous" rel="prev" href="` + href(p.Slug) + `">&larr; ` + esc(p.Title) + `</a>`)
			}
			if n := v.Next; n != nil {
				buf.WriteString(`<a class="next" rel="next" href="` + href(n.Slug) + `">` + esc(n.Title) + ` &rarr;</a>`)
			}
			buf.WriteString(`</nav>`)
		}
		buf.WriteString(`</article>`)
	})
}
