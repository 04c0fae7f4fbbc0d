package export

import (
	"encoding/base64"
	"fmt"
	"strings"

	"logoden/internal/errors"
)

// ConvertOptions tunes SVG conversion output.
type ConvertOptions struct {
	// Width and Height set the SVG canvas; zero values default to 512
	Width  int
	Height int
}

// Converter turns raster image bytes into an SVG document. Backed by an
// external conversion service in production; EmbedConverter is the local
// fallback.
type Converter interface {
	ConvertToSVG(imageBytes []byte, mimeType string, opts ConvertOptions) (string, error)
}

// EmbedConverter produces an SVG that embeds the raster as a base64 image
// element. Not a trace, but dimension-free and always available.
type EmbedConverter struct{}

// ConvertToSVG wraps the image bytes in an <svg><image> document.
func (EmbedConverter) ConvertToSVG(imageBytes []byte, mimeType string, opts ConvertOptions) (string, error) {
	if len(imageBytes) == 0 {
		return "", errors.NewInvalidRequest("image bytes are empty")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unsupported media type: %s", mimeType))
	}

	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 512
	}
	if h <= 0 {
		h = 512
	}

	encoded := base64.StdEncoding.EncodeToString(imageBytes)
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<image width="%d" height="%d" href="data:%s;base64,%s"/></svg>`,
		w, h, w, h, w, h, mimeType, encoded)
	return svg, nil
}

// DecodeDataURI splits a data URI into its media type and decoded bytes.
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, errors.NewInvalidRequest("not a data URI")
	}
	rest := strings.TrimPrefix(uri, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", nil, errors.NewInvalidRequest("malformed data URI")
	}

	meta := rest[:comma]
	payload := rest[comma+1:]

	mimeType = meta
	isBase64 := false
	if idx := strings.IndexByte(meta, ';'); idx >= 0 {
		mimeType = meta[:idx]
		isBase64 = strings.Contains(meta[idx:], "base64")
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, errors.NewInvalidRequest("invalid base64 payload")
		}
	} else {
		data = []byte(payload)
	}
	return mimeType, data, nil
}

// extensionForMIME maps a media type to a file extension (with dot).
func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}
