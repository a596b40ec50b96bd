package pubsite

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// staticPrefix is where processed images live in the output tree.
const staticPrefix = "static"

// ImagePipeline resizes banner images into a srcset of JPEG variants under
// <output>/static/<hash>/. Results are memoized by source path, so a banner
// shared by several pages is processed once.
type ImagePipeline struct {
	outDir   string
	urlBase  string
	widths   []int
	maxWidth int
	quality  int

	mu   sync.Mutex
	done map[string]*imageResult
}

type imageResult struct {
	once sync.Once
	img  Image
	err  error
}

// NewImagePipeline creates a pipeline writing into outDir.
func NewImagePipeline(outDir string, cfg ImageConfig) *ImagePipeline {
	return newImagePipeline(outDir, "/"+staticPrefix, cfg)
}

// newImagePipeline creates a pipeline whose images are served under urlBase.
func newImagePipeline(outDir, urlBase string, cfg ImageConfig) *ImagePipeline {
	widths := make([]int, 0, len(cfg.Widths))
	for _, w := range cfg.Widths {
		if w > 0 && w <= cfg.MaxWidth {
			widths = append(widths, w)
		}
	}
	if len(widths) == 0 {
		widths = []int{cfg.MaxWidth}
	}
	sort.Ints(widths)
	return &ImagePipeline{
		outDir:   outDir,
		urlBase:  urlBase,
		widths:   widths,
		maxWidth: cfg.MaxWidth,
		quality:  cfg.Quality,
		done:     make(map[string]*imageResult),
	}
}

// Banner processes the image at src and returns its largest variant with
// the full srcset.
func (p *ImagePipeline) Banner(src string) (Image, error) {
	p.mu.Lock()
	r, ok := p.done[src]
	if !ok {
		r = &imageResult{}
		p.done[src] = r
	}
	p.mu.Unlock()

	r.once.Do(func() {
		r.img, r.err = p.process(src)
	})
	return r.img, r.err
}

// Count is the number of distinct images processed so far.
func (p *ImagePipeline) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.done)
}

func (p *ImagePipeline) process(src string) (Image, error) {
	raw, err := os.ReadFile(src)
	if err != nil {
		return Image{}, fmt.Errorf("banner: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("banner %s: decode image: %w", filepath.Base(src), err)
	}

	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])[:8]
	name := slugifyFilename(filepath.Base(src))
	if name == "" {
		name = "image"
	}
	dir := filepath.Join(p.outDir, staticPrefix, hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Image{}, err
	}

	origW := img.Bounds().Dx()
	widths := variantWidths(p.widths, origW)

	var (
		srcset []string
		out    Image
	)
	for i, w := range widths {
		data, vw, vh, err := encodeJPEG(img, w, p.quality)
		if err != nil {
			return Image{}, fmt.Errorf("banner %s: %w", filepath.Base(src), err)
		}
		file := name + "-" + strconv.Itoa(w) + ".jpg"
		if i == len(widths)-1 {
			file = name + ".jpg"
		}
		if err := os.WriteFile(filepath.Join(dir, file), data, 0o644); err != nil {
			return Image{}, fmt.Errorf("write image: %w", err)
		}
		url := path.Join(p.urlBase, hash, file)
		srcset = append(srcset, url+" "+strconv.Itoa(vw)+"w")
		out = Image{Src: url, Width: vw, Height: vh}
	}
	out.SrcSet = strings.Join(srcset, ", ")
	if out.Height > 0 {
		out.AspectRatio = float64(out.Width) / float64(out.Height)
	}
	return out, nil
}

// variantWidths keeps the configured widths an image of width orig can fill
// without upscaling. Images narrower than every width get one variant at
// their own size.
func variantWidths(widths []int, orig int) []int {
	var out []int
	for _, w := range widths {
		if w <= orig {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		out = []int{orig}
	}
	return out
}

// resize scales img to width w, keeping the aspect ratio. JPEG has no alpha,
// so the result is flattened onto white.
func resize(img image.Image, w int) image.Image {
	b := img.Bounds()
	h := b.Dy() * w / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if b.Dx() == w {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	}
	return dst
}

// encodeJPEG resizes img to width w and encodes it as JPEG.
func encodeJPEG(img image.Image, w, quality int) ([]byte, int, int, error) {
	scaled := resize(img, w)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	b := scaled.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}

// Icon is one entry of the web manifest icon list.
type Icon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// IconSizes are the square icon sizes written for the web manifest.
var IconSizes = []int{192, 512}

// WriteIcons renders src into square PNG icons under <outDir>/icons.
func WriteIcons(src, outDir string, sizes []int) ([]Icon, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("icon: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("icon %s: decode image: %w", filepath.Base(src), err)
	}

	dir := filepath.Join(outDir, "icons")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	icons := make([]Icon, 0, len(sizes))
	for _, size := range sizes {
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		var buf bytes.Buffer
		if err := png.Encode(&buf, dst); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		name := fmt.Sprintf("icon-%dx%d.png", size, size)
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
		icons = append(icons, Icon{
			Src:   "/icons/" + name,
			Sizes: fmt.Sprintf("%dx%d", size, size),
			Type:  "image/png",
		})
	}
	return icons, nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return Slugify(base)
}
