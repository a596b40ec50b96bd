package pubsite

import "embed"

// EmbeddedAssets contains the default stylesheet shipped with pubsite. Builds
// copy it to /assets/ in the output.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
