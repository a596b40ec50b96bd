package pubsite

import (
	"fmt"
	"io"
)

// HeaderRule attaches response headers to a path pattern in _headers.
type HeaderRule struct {
	Path    string
	Headers [][2]string
}

// DefaultHeaders opens the JSON feed to cross-origin readers and marks
// hashed assets immutable.
var DefaultHeaders = []HeaderRule{
	{Path: "/feed.json", Headers: [][2]string{
		{"Access-Control-Allow-Origin", "*"},
		{"Content-Type", "application/feed+json; charset=utf-8"},
	}},
	{Path: "/static/*", Headers: [][2]string{
		{"Cache-Control", "public, max-age=31536000, immutable"},
	}},
}

// WriteHeaders writes a _headers file for static hosts.
func WriteHeaders(w io.Writer, rules []HeaderRule) error {
	for i, r := range rules {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, r.Path); err != nil {
			return err
		}
		for _, h := range r.Headers {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", h[0], h[1]); err != nil {
				return err
			}
		}
	}
	return nil
}
