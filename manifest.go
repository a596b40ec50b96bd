package pubsite

import (
	"encoding/json"
	"io"
)

type webManifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	StartURL        string `json:"start_url"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
	Display         string `json:"display"`
	Lang            string `json:"lang,omitempty"`
	Icons           []Icon `json:"icons"`
}

// WriteManifest writes manifest.webmanifest.
func WriteManifest(w io.Writer, cfg ManifestConfig, lang string, icons []Icon) error {
	if icons == nil {
		icons = []Icon{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(webManifest{
		Name:            cfg.Name,
		ShortName:       cfg.ShortName,
		StartURL:        cfg.StartURL,
		BackgroundColor: cfg.BackgroundColor,
		ThemeColor:      cfg.ThemeColor,
		Display:         cfg.Display,
		Lang:            lang,
		Icons:           icons,
	})
}
