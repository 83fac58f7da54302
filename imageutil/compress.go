package imageutil

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Compress decodes the image at path, downscales it so neither side exceeds
// maxDimension (aspect preserved, never upscales), and re-encodes it as JPEG
// at the given quality. This bounds the upload payload regardless of what the
// camera produced.
func Compress(path string, maxDimension, quality int) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
