package ocrloc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Header-only size probing for the formats the tool accepts. Only
	// image.DecodeConfig is used; no pixel data is ever decoded.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// mimeTypes maps file extensions to MIME types for the data URL sent to
// the model. Unknown extensions fall back to image/jpeg.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
}

// mimeTypeFor returns the MIME type for an image path by extension.
func mimeTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "image/jpeg"
}

// decodeSize reads the pixel dimensions from the image header.
func decodeSize(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// imageDataURL builds the base64 data URL payload for a vision message.
func imageDataURL(path string, data []byte) string {
	return "data:" + mimeTypeFor(path) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
