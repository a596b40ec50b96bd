package pubsite

import "time"

// DisplayDateFormat is how dates appear on cards and article headers.
const DisplayDateFormat = "02 January, 2006"

// Post status values carried in front-matter.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Post is the core content type, produced by the content loader and
// immutable once loaded.
type Post struct {
	Slug       string
	Title      string
	Subtitle   string
	Author     string // user id of the author record
	Date       time.Time
	Category   string
	Banner     string // banner reference as written in front-matter
	BannerPath string // banner source file on disk
	Featured   bool
	Status     string
	HTML       string // rendered body
	Excerpt    string // plain-text summary
	Source     string // content file the post was loaded from
}

// Published reports whether the post is part of the public site.
func (p Post) Published() bool {
	return p.Status != StatusDraft
}

// Link is the site-relative URL of the post.
func (p Post) Link() string {
	return NormalizeSlug(p.Slug)
}

// DisplayDate formats the publish date for cards and headers.
func (p Post) DisplayDate() string {
	return p.Date.Format(DisplayDateFormat)
}

// Author is a record from the author directory.
type Author struct {
	User     string `json:"user" yaml:"user"`
	Name     string `json:"name" yaml:"name"`
	Twitter  string `json:"twitter,omitempty" yaml:"twitter"`
	Facebook string `json:"facebook,omitempty" yaml:"facebook"`
}

// Category is a record from the category list. Key is both the URL segment
// and the value matched against a post's category field.
type Category struct {
	Key    string `json:"key" yaml:"key"`
	Name   string `json:"name" yaml:"name"`
	Desc   string `json:"desc" yaml:"desc"`
	Banner string `json:"banner,omitempty" yaml:"banner"`
}

// Link is the site-relative URL of the category's first listing page.
func (c Category) Link() string {
	return "/category/" + c.Key
}

// NavEdge points at a sibling post for previous/next navigation.
type NavEdge struct {
	Title string
	Slug  string
}

// Image is a processed image ready for an <img> tag.
type Image struct {
	Src         string
	SrcSet      string
	Width       int
	Height      int
	AspectRatio float64
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website", "article" or "page"
	Image       string // absolute image URL
	Author      Author
	Published   time.Time
	JSONLD      string
}

// SiteInfo is the site-wide data every view receives.
type SiteInfo struct {
	Name          string
	Description   string
	URL           string
	Lang          string
	Author        string
	FacebookAppID string
	AnalyticsID   string
	ThemeColor    string
	Target        Target
}

func (c SiteConfig) siteInfo() SiteInfo {
	d := c.Deployment()
	return SiteInfo{
		Name:          c.Name,
		Description:   c.Description,
		URL:           d.URL,
		Lang:          c.Lang,
		Author:        c.Author,
		FacebookAppID: c.FacebookAppID,
		AnalyticsID:   d.AnalyticsID,
		ThemeColor:    c.Manifest.ThemeColor,
		Target:        c.Target,
	}
}
