package views

import (
	"bytes"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// NotFound renders the 404 page.
func NotFound(site pubsite.SiteInfo) templ.Component {
	return body(pubsite.PageMeta{Title: "Not Found", OGType: "page"}, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="not-found"><h1>Not Found</h1>`)
		buf.WriteString(`<p>The page you were looking for does not exist. <a href="/">Back to ` + esc(site.Name) + `</a>.</p>`)
		buf.WriteString(`</section>`)
	})
}

// Login renders the draft preview login form.
func Login(v pubsite.LoginView) templ.Component {
	return body(pubsite.PageMeta{Title: "Draft preview", OGType: "page"}, func(buf *bytes.Buffer) {
		buf.WriteString(`<form class="login-form" method="post" action="/_drafts/login"><h1>Draft preview</h1>`)
		if v.ShowError {
			buf.WriteString(`<p class="error">Wrong password.</p>`)
		}
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(v.CSRFToken) + `">`)
		buf.WriteString(`<input type="password" name="password" placeholder="Password" autofocus required>`)
		buf.WriteString(`<button type="submit">Sign in</button></form>`)
	})
}

// Drafts renders the draft list. Links end in a slash so relative links to
// bundled files resolve under the draft.
func Drafts(v pubsite.DraftsView) templ.Component {
	return body(pubsite.PageMeta{Title: "Drafts", OGType: "page"}, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="drafts"><h1>Drafts</h1>`)
		if len(v.Drafts) == 0 {
			buf.WriteString(`<p class="empty">No drafts.</p>`)
		} else {
			buf.WriteString(`<ul>`)
			for _, p := range v.Drafts {
				buf.WriteString(`<li><a href="` + href(draftLink(p)) + `">` + esc(p.Title) + `</a>`)
				buf.WriteString(` <span class="date">` + esc(p.DisplayDate()) + `</span></li>`)
			}
			buf.WriteString(`</ul>`)
		}
		if len(v.Published) > 0 {
			buf.WriteString(`<h2>Recently published</h2><ul>`)
			for _, p := range v.Published {
				buf.WriteString(`<li><a href="` + href(draftLink(p)) + `">` + esc(p.Title) + `</a></li>`)
			}
			buf.WriteString(`</ul>`)
		}
		buf.WriteString(`<form method="post" action="/_drafts/logout">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(v.CSRFToken) + `">`)
		buf.WriteString(`<button type="submit">Sign out</button></form>`)
		buf.WriteString(`</section>`)
	})
}

func draftLink(p pubsite.Post) string {
	return "/_drafts" + p.Link() + "/"
}
