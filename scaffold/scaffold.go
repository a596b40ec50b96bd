// Package scaffold generates new pubsite projects from embedded templates.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	Author      string
	Date        string
}

// renames maps template names that cannot be embedded or shipped as is.
var renames = map[string]string{
	"dotenv":    ".env.example",
	"gitignore": ".gitignore",
}

// Generate writes a new project into dir, which must not exist yet. It
// returns the created files relative to dir.
func Generate(dir string, data Data) ([]string, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("directory %q already exists", dir)
	}

	const root = "templates"
	var created []string
	err := fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = strings.TrimSuffix(relPath, ".tmpl")
		if to, ok := renames[filepath.Base(relPath)]; ok {
			relPath = filepath.Join(filepath.Dir(relPath), to)
		}
		outPath := filepath.Join(dir, relPath)

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		created = append(created, relPath)
		return nil
	})
	if err != nil {
		return created, err
	}

	images := []struct {
		rel  string
		w, h int
		from color.RGBA
		to   color.RGBA
	}{
		{filepath.Join("content", "hello-world", "banner.png"), 1200, 630, color.RGBA{0x1e, 0x88, 0xe5, 0xff}, color.RGBA{0x8e, 0x24, 0xaa, 0xff}},
		{filepath.Join("static", "icon.png"), 512, 512, color.RGBA{0x1e, 0x88, 0xe5, 0xff}, color.RGBA{0x1e, 0x88, 0xe5, 0xff}},
	}
	for _, img := range images {
		if err := writeGradient(filepath.Join(dir, img.rel), img.w, img.h, img.from, img.to); err != nil {
			return created, err
		}
		created = append(created, img.rel)
	}
	return created, nil
}

// writeGradient writes a horizontal two-color gradient PNG, a placeholder
// banner and icon for fresh projects.
func writeGradient(path string, w, h int, from, to color.RGBA) error {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		t := float64(x) / float64(w-1)
		c := color.RGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: 0xff,
		}
		for y := 0; y < h; y++ {
			img.SetRGBA(x, y, c)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
