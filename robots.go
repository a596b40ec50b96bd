package pubsite

import (
	"bufio"
	"io"
)

// WriteRobots writes robots.txt for the given rules, followed by the Host
// and Sitemap lines for base.
func WriteRobots(w io.Writer, base string, rules []RobotsRule) error {
	bw := bufio.NewWriter(w)
	for i, r := range rules {
		if i > 0 {
			bw.WriteString("\n")
		}
		ua := r.UserAgent
		if ua == "" {
			ua = "*"
		}
		bw.WriteString("User-agent: " + ua + "\n")
		for _, a := range r.Allow {
			bw.WriteString("Allow: " + a + "\n")
		}
		for _, d := range r.Disallow {
			bw.WriteString("Disallow: " + d + "\n")
		}
		if len(r.Allow) == 0 && len(r.Disallow) == 0 {
			bw.WriteString("Allow: /\n")
		}
	}
	bw.WriteString("\nHost: " + base + "\n")
	bw.WriteString("Sitemap: " + base + "/sitemap.xml\n")
	return bw.Flush()
}
