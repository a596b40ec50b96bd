package pubsite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BuildReport summarizes one build.
type BuildReport struct {
	Posts    int
	Drafts   int
	Pages    int
	Images   int
	Bytes    int64
	Duration time.Duration
}

func (r BuildReport) String() string {
	return fmt.Sprintf("%s pages (%s posts, %s drafts skipped), %s images, %s in %s",
		humanize.Comma(int64(r.Pages)), humanize.Comma(int64(r.Posts)), humanize.Comma(int64(r.Drafts)),
		humanize.Comma(int64(r.Images)), humanize.Bytes(uint64(r.Bytes)), r.Duration.Round(time.Millisecond))
}

// page is one planned HTML output. Pages render independently of each other.
type page struct {
	path    string
	sitemap bool
	lastMod time.Time
	render  func(ctx context.Context, w io.Writer) error
}

// Build loads all content, indexes it and writes the complete static site
// to the output directory. Every build is a full rebuild. Pages are written
// into a staging directory and the index into a transaction; both replace
// the previous site only when everything succeeded, so a failed build leaves
// the last good site in place.
func (s *Site) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	var report BuildReport

	if err := s.Views.validate(); err != nil {
		return report, err
	}
	if err := s.open(); err != nil {
		return report, err
	}

	content, err := LoadContent(s.Config)
	if err != nil {
		return report, err
	}
	published := content.Published()
	report.Posts = len(published)
	report.Drafts = len(content.Posts) - len(published)

	dir, err := NewAuthorDirectory(content.Authors)
	if err != nil {
		return report, err
	}

	out, draftsOut, err := outputDirs(s.Config.OutputDir, s.Config.DraftsDir)
	if err != nil {
		return report, err
	}
	site, err := newStaging(out)
	if err != nil {
		return report, err
	}
	defer site.cleanup()
	drafts, err := newStaging(draftsOut)
	if err != nil {
		return report, err
	}
	defer drafts.cleanup()

	idx, err := s.Store.Stage(ctx, content)
	if err != nil {
		return report, fmt.Errorf("pubsite: index content: %w", err)
	}
	defer idx.Rollback()

	images := NewImagePipeline(site.dir, s.Config.Images)
	draftImages := newImagePipeline(drafts.dir, draftsPrefix+"/"+staticPrefix, s.Config.Images)
	banners, err := s.processBanners(ctx, images, draftImages, content)
	if err != nil {
		return report, err
	}
	report.Images = images.Count() + draftImages.Count()

	pages, err := s.plan(ctx, &idx.reader, dir, content, published, banners)
	if err != nil {
		return report, err
	}
	written, err := s.renderPages(ctx, site.dir, pages)
	if err != nil {
		return report, err
	}
	report.Pages = len(pages)
	report.Bytes += written

	n, err := s.writeSiteFiles(ctx, site.dir, dir, published, pages, banners)
	if err != nil {
		return report, err
	}
	report.Bytes += n

	if err := s.copyAssets(site.dir, drafts.dir, content); err != nil {
		return report, err
	}

	if err := site.commit(); err != nil {
		return report, err
	}
	if err := drafts.commit(); err != nil {
		return report, err
	}
	if err := idx.Commit(); err != nil {
		return report, fmt.Errorf("pubsite: commit index: %w", err)
	}
	s.setState(&siteState{dir: dir, banners: banners})

	report.Duration = time.Since(start)
	s.log.Info("build complete",
		zap.String("target", s.Config.Target.String()),
		zap.String("output", out),
		zap.Int("pages", report.Pages),
		zap.Int("posts", report.Posts),
		zap.Int("drafts", report.Drafts),
		zap.Int("images", report.Images),
		zap.String("size", humanize.Bytes(uint64(report.Bytes))),
		zap.Duration("took", report.Duration),
	)
	return report, nil
}

// outputDirs resolves the output and drafts directories. It refuses the
// working directory, the filesystem root, any ancestor of the working
// directory, and drafts nested inside the public output.
func outputDirs(out, drafts string) (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	var abs [2]string
	for i, d := range []string{out, drafts} {
		a, err := filepath.Abs(d)
		if err != nil {
			return "", "", err
		}
		if a == cwd || a == filepath.Dir(a) || within(cwd, a) {
			return "", "", fmt.Errorf("pubsite: refusing to use %q as output directory", d)
		}
		abs[i] = a
	}
	if abs[0] == abs[1] || within(abs[1], abs[0]) || within(abs[0], abs[1]) {
		return "", "", fmt.Errorf("pubsite: drafts directory %q must be outside output directory %q", drafts, out)
	}
	return abs[0], abs[1], nil
}

// within reports whether p is inside dir.
func within(p, dir string) bool {
	return strings.HasPrefix(p+string(filepath.Separator), dir+string(filepath.Separator)) && p != dir
}

// staging is a scratch directory beside target that replaces it on commit.
type staging struct {
	target string
	dir    string
	done   bool
}

func newStaging(target string) (*staging, error) {
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("pubsite: staging: %w", err)
	}
	dir, err := os.MkdirTemp(parent, "."+filepath.Base(target)+"-build-")
	if err != nil {
		return nil, fmt.Errorf("pubsite: staging: %w", err)
	}
	if err := os.Chmod(dir, 0o755); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("pubsite: staging: %w", err)
	}
	return &staging{target: target, dir: dir}, nil
}

// commit moves the previous target aside, renames the staging directory
// into place and removes the previous target.
func (st *staging) commit() error {
	old := st.dir + ".old"
	hadOld := true
	if err := os.Rename(st.target, old); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("pubsite: replace %s: %w", st.target, err)
		}
		hadOld = false
	}
	if err := os.Rename(st.dir, st.target); err != nil {
		if hadOld {
			_ = os.Rename(old, st.target)
		}
		return fmt.Errorf("pubsite: replace %s: %w", st.target, err)
	}
	st.done = true
	if hadOld {
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("pubsite: remove previous %s: %w", st.target, err)
		}
	}
	return nil
}

func (st *staging) cleanup() {
	if !st.done {
		os.RemoveAll(st.dir)
	}
}

// processBanners resizes every banner in parallel. Draft banners go through
// draftImages and are only processed when drafts are served.
func (s *Site) processBanners(ctx context.Context, images, draftImages *ImagePipeline, content *Content) (map[string]Image, error) {
	type result struct {
		key string
		img Image
	}
	var jobs []func() (result, error)
	for _, p := range content.Posts {
		if p.BannerPath == "" || (!p.Published() && !s.drafts) {
			continue
		}
		p := p
		pipeline := images
		if !p.Published() {
			pipeline = draftImages
		}
		jobs = append(jobs, func() (result, error) {
			img, err := pipeline.Banner(p.BannerPath)
			if err != nil {
				return result{}, contentErr(p.Source, err)
			}
			return result{key: p.Slug, img: img}, nil
		})
	}
	for _, c := range content.Categories {
		if c.Banner == "" {
			continue
		}
		c := c
		jobs = append(jobs, func() (result, error) {
			src := filepath.Join(s.Config.DataDir, filepath.FromSlash(c.Banner))
			img, err := images.Banner(src)
			if err != nil {
				return result{}, fmt.Errorf("category %q: %w", c.Key, err)
			}
			return result{key: categoryBannerKey(c.Key), img: img}, nil
		})
	}

	results := make([]result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Config.Concurrency)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := job()
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	banners := make(map[string]Image, len(results))
	for _, r := range results {
		banners[r.key] = r.img
	}
	return banners, nil
}

func categoryBannerKey(key string) string {
	return "category/" + key
}

// plan lists every HTML page of the site. Planning is sequential and cheap;
// listing posts are queried from idx when the page renders.
func (s *Site) plan(ctx context.Context, idx *reader, dir *AuthorDirectory, content *Content, published []Post, banners map[string]Image) ([]page, error) {
	info := s.Info()
	var pages []page

	for i, p := range published {
		post := p
		var prev, next *NavEdge
		if i+1 < len(published) {
			prev = NavEdgeOf(&published[i+1])
		}
		if i > 0 {
			next = NavEdgeOf(&published[i-1])
		}
		pages = append(pages, page{
			path:    post.Link(),
			sitemap: true,
			lastMod: post.Date,
			render: func(ctx context.Context, w io.Writer) error {
				return s.renderArticle(ctx, w, info, post, dir, content.Categories, banners[post.Slug], prev, next)
			},
		})
	}

	home, err := s.planListing(ctx, idx, listingSpec{
		kind:        ListingHome,
		title:       info.Name,
		description: info.Description,
		base:        "/",
		prefix:      "/pages",
	}, dir, banners)
	if err != nil {
		return nil, err
	}
	pages = append(pages, home...)

	counts := make(map[string]int)
	for _, p := range published {
		counts[p.Category]++
	}
	summaries := make([]CategorySummary, 0, len(content.Categories))
	for _, c := range content.Categories {
		summaries = append(summaries, CategorySummary{Category: c, Posts: counts[c.Key]})
		listing, err := s.planListing(ctx, idx, listingSpec{
			kind:        ListingCategory,
			title:       c.Name,
			description: c.Desc,
			base:        c.Link(),
			prefix:      c.Link() + "/pages",
			filter:      PostFilter{Category: c.Key},
			image:       banners[categoryBannerKey(c.Key)],
		}, dir, banners)
		if err != nil {
			return nil, err
		}
		pages = append(pages, listing...)
	}
	pages = append(pages, page{
		path: "/category",
		render: func(ctx context.Context, w io.Writer) error {
			v := CategoryIndexView{
				Site:       info,
				Categories: summaries,
				Meta: PageMeta{
					Title:       "Categories",
					Description: info.Description,
					URL:         BuildURL(info.URL, "category"),
					OGType:      "website",
				},
			}
			return RenderDocument(ctx, s.Views.Layout, info, v.Meta, s.Views.Categories(v), w)
		},
	})

	authors, err := idx.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	for _, a := range authors {
		listing, err := s.planListing(ctx, idx, listingSpec{
			kind:        ListingAuthor,
			title:       a.Name,
			description: fmt.Sprintf("Posts by %s", a.Name),
			base:        "/author/" + a.User,
			prefix:      "/author/" + a.User + "/pages",
			filter:      PostFilter{Author: a.User},
		}, dir, banners)
		if err != nil {
			return nil, err
		}
		pages = append(pages, listing...)
	}
	return pages, nil
}

type listingSpec struct {
	kind        ListingKind
	title       string
	description string
	base        string
	prefix      string
	filter      PostFilter
	image       Image
}

// planListing plans every page of one listing. The first page is written at
// the listing base and again under the pagination prefix.
func (s *Site) planListing(ctx context.Context, idx *reader, spec listingSpec, dir *AuthorDirectory, banners map[string]Image) ([]page, error) {
	total, err := idx.CountPosts(ctx, spec.filter)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", spec.base, err)
	}
	contexts := Paginate(total, s.Config.PageSize, spec.base, spec.prefix)

	pages := []page{{
		path:    spec.base,
		sitemap: true,
		render:  s.listingRenderer(idx, spec, dir, banners, contexts[0], spec.base),
	}}
	for _, pc := range contexts {
		pages = append(pages, page{
			path:   pc.Path(),
			render: s.listingRenderer(idx, spec, dir, banners, pc, pc.Path()),
		})
	}
	return pages, nil
}

func (s *Site) listingRenderer(idx *reader, spec listingSpec, dir *AuthorDirectory, banners map[string]Image, pc PageContext, canonical string) func(ctx context.Context, w io.Writer) error {
	return func(ctx context.Context, w io.Writer) error {
		posts, err := idx.ListPosts(ctx, spec.filter, pc.Limit, pc.Offset)
		if err != nil {
			return err
		}
		listing, err := AssembleListing(posts, dir, banners, pc)
		if err != nil {
			return err
		}
		info := s.Info()
		v := ListingView{
			Site:        info,
			Kind:        spec.kind,
			Title:       spec.title,
			Description: spec.description,
			Listing:     listing,
			Meta:        listingMeta(info, spec, canonical, pc),
		}
		return RenderDocument(ctx, s.Views.Layout, info, v.Meta, s.Views.Listing(v), w)
	}
}

func listingMeta(info SiteInfo, spec listingSpec, canonical string, pc PageContext) PageMeta {
	title := spec.title
	if pc.Current > 1 {
		title = fmt.Sprintf("%s - Page %d", spec.title, pc.Current)
	}
	m := PageMeta{
		Title:       title,
		Description: spec.description,
		URL:         BuildURL(info.URL, canonical),
		OGType:      "website",
		Image:       AbsoluteURL(info.URL, spec.image.Src),
	}
	if canonical == "/" {
		m.URL = BuildURL(info.URL)
	}
	if spec.kind == ListingHome {
		m.JSONLD = WebsiteJsonLD(info)
	}
	return m
}

func (s *Site) renderArticle(ctx context.Context, w io.Writer, info SiteInfo, post Post, dir *AuthorDirectory, cats []Category, banner Image, prev, next *NavEdge) error {
	v, err := BuildArticle(info, s.Config.Ads, post, dir, cats, banner, prev, next)
	if err != nil {
		return contentErr(post.Source, err)
	}
	return RenderDocument(ctx, s.Views.Layout, info, v.Meta, s.Views.Article(v), w)
}

// renderPages renders every page in parallel, bounded by Concurrency. The
// first failure cancels the rest.
func (s *Site) renderPages(ctx context.Context, out string, pages []page) (int64, error) {
	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Config.Concurrency)
	for _, p := range pages {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := p.render(gctx, &buf); err != nil {
				return fmt.Errorf("render %s: %w", p.path, err)
			}
			n, err := writeOutput(out, pagePath(p.path), buf.Bytes())
			written.Add(n)
			return err
		})
	}
	err := g.Wait()
	return written.Load(), err
}

// pagePath maps a site path to its index.html file.
func pagePath(sitePath string) string {
	return path.Join(strings.Trim(sitePath, "/"), "index.html")
}

func writeOutput(out, rel string, data []byte) (int64, error) {
	dst := filepath.Join(out, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", rel, err)
	}
	return int64(len(data)), nil
}

// writeSiteFiles writes the 404 page, sitemap, robots, feeds, manifest and
// _headers.
func (s *Site) writeSiteFiles(ctx context.Context, out string, dir *AuthorDirectory, published []Post, pages []page, banners map[string]Image) (int64, error) {
	info := s.Info()
	deploy := s.Config.Deployment()

	feedPosts := published
	if s.Config.FeedLimit > 0 && len(feedPosts) > s.Config.FeedLimit {
		feedPosts = feedPosts[:s.Config.FeedLimit]
	}

	var entries []SitemapEntry
	for _, p := range pages {
		if p.sitemap {
			entries = append(entries, SitemapEntry{Path: p.path, LastMod: p.lastMod})
		}
	}

	var icons []Icon
	if s.Config.Manifest.Icon != "" {
		var err error
		icons, err = WriteIcons(s.Config.Manifest.Icon, out, IconSizes)
		if err != nil {
			return 0, err
		}
	}

	files := []struct {
		name  string
		write func(w io.Writer) error
	}{
		{"404.html", func(w io.Writer) error {
			meta := PageMeta{Title: "Not Found", OGType: "page"}
			return RenderDocument(ctx, s.Views.Layout, info, meta, s.Views.NotFound(info), w)
		}},
		{"sitemap.xml", func(w io.Writer) error {
			return WriteSitemap(w, deploy.URL, entries, s.Config.SitemapExclude)
		}},
		{"robots.txt", func(w io.Writer) error {
			return WriteRobots(w, deploy.URL, deploy.Robots)
		}},
		{"rss.xml", func(w io.Writer) error {
			return WriteRSS(w, info, feedPosts, dir)
		}},
		{"feed.json", func(w io.Writer) error {
			return WriteJSONFeed(w, info, feedPosts, dir, banners)
		}},
		{"manifest.webmanifest", func(w io.Writer) error {
			return WriteManifest(w, s.Config.Manifest, s.Config.Lang, icons)
		}},
		{"_headers", func(w io.Writer) error {
			return WriteHeaders(w, DefaultHeaders)
		}},
	}

	var total int64
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.write(&buf); err != nil {
			return total, fmt.Errorf("pubsite: %s: %w", f.name, err)
		}
		n, err := writeOutput(out, f.name, buf.Bytes())
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// copyAssets copies the static directory, the embedded stylesheet and the
// files bundled next to each post. Draft bundles go to draftsOut, which the
// preview server only serves behind the draft login.
func (s *Site) copyAssets(out, draftsOut string, content *Content) error {
	if err := copyTree(os.DirFS(s.Config.StaticDir), ".", out); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("pubsite: copy static: %w", err)
	}
	if err := copyTree(EmbeddedAssets, "embedded", filepath.Join(out, "assets")); err != nil {
		return fmt.Errorf("pubsite: copy embedded assets: %w", err)
	}
	for _, p := range content.Posts {
		if !p.Published() && !s.drafts {
			continue
		}
		assets, err := BundleAssets(p)
		if err != nil {
			return contentErr(p.Source, err)
		}
		root := out
		if !p.Published() {
			root = draftsOut
		}
		for _, a := range assets {
			dst := filepath.Join(root, filepath.FromSlash(p.Slug), filepath.Base(a))
			if err := copyFile(a, dst); err != nil {
				return contentErr(p.Source, err)
			}
		}
	}
	return nil
}

func copyTree(fsys fs.FS, root, dst string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	outFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, in); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
