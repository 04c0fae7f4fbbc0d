package export

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	mimeType, data, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %s, want image/png", mimeType)
	}
	if string(data) != string(payload) {
		t.Errorf("data = %v, want %v", data, payload)
	}
}

func TestDecodeDataURI_Raw(t *testing.T) {
	mimeType, data, err := DecodeDataURI("data:image/svg+xml,<svg/>")
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if mimeType != "image/svg+xml" {
		t.Errorf("mimeType = %s, want image/svg+xml", mimeType)
	}
	if string(data) != "<svg/>" {
		t.Errorf("data = %q, want <svg/>", data)
	}
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	cases := []string{
		"http://example.com/logo.png",
		"data:image/png;base64",       // no comma
		"data:image/png;base64,!!!!!", // bad base64
	}
	for _, uri := range cases {
		if _, _, err := DecodeDataURI(uri); err == nil {
			t.Errorf("DecodeDataURI(%q) error = nil, want failure", uri)
		}
	}
}

func TestEmbedConverter(t *testing.T) {
	svg, err := EmbedConverter{}.ConvertToSVG([]byte{1, 2, 3}, "image/png", ConvertOptions{})
	if err != nil {
		t.Fatalf("ConvertToSVG() error = %v", err)
	}
	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>") {
		t.Errorf("output is not an svg document: %q", svg)
	}
	if !strings.Contains(svg, "data:image/png;base64,") {
		t.Errorf("output does not embed the raster: %q", svg)
	}
	if !strings.Contains(svg, `width="512"`) {
		t.Errorf("default canvas size missing: %q", svg)
	}
}

func TestEmbedConverter_CustomSize(t *testing.T) {
	svg, err := EmbedConverter{}.ConvertToSVG([]byte{1}, "image/png", ConvertOptions{Width: 64, Height: 32})
	if err != nil {
		t.Fatalf("ConvertToSVG() error = %v", err)
	}
	if !strings.Contains(svg, `width="64"`) || !strings.Contains(svg, `height="32"`) {
		t.Errorf("custom canvas size not applied: %q", svg)
	}
}

func TestEmbedConverter_Rejects(t *testing.T) {
	if _, err := (EmbedConverter{}).ConvertToSVG(nil, "image/png", ConvertOptions{}); err == nil {
		t.Errorf("empty bytes accepted")
	}
	if _, err := (EmbedConverter{}).ConvertToSVG([]byte{1}, "text/html", ConvertOptions{}); err == nil {
		t.Errorf("non-image media type accepted")
	}
}

func TestExtensionForMIME(t *testing.T) {
	tests := map[string]string{
		"image/png":     ".png",
		"image/jpeg":    ".jpg",
		"image/webp":    ".webp",
		"image/gif":     ".gif",
		"image/svg+xml": ".svg",
		"image/unknown": ".png",
	}
	for mime, want := range tests {
		if got := extensionForMIME(mime); got != want {
			t.Errorf("extensionForMIME(%s) = %s, want %s", mime, got, want)
		}
	}
}
