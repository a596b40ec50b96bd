package pubsite

import (
	"encoding/json"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.24: What's New?  ", "go-1-24-what-s-new"},
		{"already-slugged", "already-slugged"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"foo"}, "https://example.com/foo/"},
		{"https://example.com/", []string{"/category/music"}, "https://example.com/category/music/"},
		{"https://example.com/blog", []string{"a", "b"}, "https://example.com/blog/a/b/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, p, want string
	}{
		{"https://example.com", "/static/a.jpg", "https://example.com/static/a.jpg"},
		{"https://example.com/", "static/a.jpg", "https://example.com/static/a.jpg"},
		{"https://example.com", "https://cdn.example.net/a.jpg", "https://cdn.example.net/a.jpg"},
		{"https://example.com", "", ""},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.p); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.p, got, tt.want)
		}
	}
}

func TestJsonLDIsValidJSON(t *testing.T) {
	site := SiteInfo{Name: "Blog", URL: "https://example.com", Description: "d", Author: "Ray"}
	post := Post{Slug: "foo", Title: `Quote "this"`, Date: day("2020-01-01"), Category: "music"}

	for name, raw := range map[string]string{
		"website":     WebsiteJsonLD(site),
		"blogposting": BlogPostingJsonLD(site, post, Author{Name: "Phumrapee"}, Image{Src: "/static/x/a.jpg"}),
	} {
		var v map[string]any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("%s: invalid JSON-LD %q: %v", name, raw, err)
		}
		if v["@context"] != "https://schema.org" {
			t.Errorf("%s: @context = %v", name, v["@context"])
		}
	}

	var post2 map[string]any
	_ = json.Unmarshal([]byte(BlogPostingJsonLD(site, post, Author{Name: "Phumrapee"}, Image{Src: "/static/x/a.jpg"})), &post2)
	if post2["image"] != "https://example.com/static/x/a.jpg" {
		t.Errorf("image = %v", post2["image"])
	}
	if post2["articleSection"] != "music" {
		t.Errorf("articleSection = %v", post2["articleSection"])
	}
}
