package views

import (
	"bytes"
	"context"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// DocTitle is the <title> text: the page title followed by the site name,
// or the site name alone on pages titled after the site.
func DocTitle(head pubsite.PageMeta, site pubsite.SiteInfo) string {
	if head.Title == "" || head.Title == site.Name {
		return site.Name
	}
	return head.Title + " | " + site.Name
}

// body emits meta to the page head and writes whatever fn puts in the buffer.
func body(meta pubsite.PageMeta, fn func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pubsite.EmitHead(ctx, meta)
		var buf bytes.Buffer
		fn(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func esc(s string) string {
	return html.EscapeString(s)
}

// href escapes a URL for an attribute, replacing unsafe schemes.
func href(u string) string {
	return html.EscapeString(string(templ.URL(u)))
}
