// Package markdown renders post bodies from Markdown to HTML.
package markdown

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ExcerptLength is the default excerpt size in runes.
const ExcerptLength = 140

var (
	// Post bodies are trusted author content and may embed iframes, so raw
	// HTML is passed through.
	converter = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			emoji.Emoji,
			highlighting.NewHighlighting(highlighting.WithStyle("github")),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	textPolicy   = bluemonday.StrictPolicy()
	reWhitespace = regexp.MustCompile(`\s+`)
)

// ToHTML converts md to an HTML string.
func ToHTML(md []byte) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert(md, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText strips every tag from rendered HTML and collapses whitespace.
func PlainText(htmlSrc string) string {
	text := textPolicy.Sanitize(htmlSrc)
	// Sanitize leaves entities encoded; excerpts are re-escaped by templates.
	text = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'").Replace(text)
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// Excerpt returns the first n runes of the plain text of htmlSrc, cut at a
// word boundary and suffixed with an ellipsis when truncated.
func Excerpt(htmlSrc string, n int) string {
	text := PlainText(htmlSrc)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	cut := []rune(text)[:n]
	for i := len(cut) - 1; i > n/2; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRight(string(cut), " ,.;:") + "…"
}
