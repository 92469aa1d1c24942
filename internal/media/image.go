// Package media handles the embedded penny images: data-URI encoding and the
// lossy recompression used by the quota degradation chain.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/nfnt/resize"
)

// Recompression targets. Deliberately smaller than the capture-time encoding
// so a second pass always has room to shrink.
const (
	maxDimension = 800
	jpegQuality  = 50
)

// ParseDataURI splits a data URI into its MIME type and decoded bytes.
func ParseDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	mimeType, _, _ := strings.Cut(meta, ";")
	if !strings.Contains(meta, "base64") {
		return "", nil, fmt.Errorf("unsupported data URI encoding")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI payload: %w", err)
	}
	return mimeType, data, nil
}

// EncodeDataURI builds a base64 data URI from raw bytes.
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Recompress re-encodes an embedded image at reduced dimensions and quality,
// returning a JPEG data URI. Inputs that are not decodable data URIs (external
// URLs, unknown formats) are returned with an error so the caller can keep
// the original.
func Recompress(dataURI string) (string, error) {
	_, raw, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	small := resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return EncodeDataURI("image/jpeg", buf.Bytes()), nil
}
