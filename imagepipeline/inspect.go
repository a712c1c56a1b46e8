package imagepipeline

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/jmgilman/go/errors"
)

// ImageInfo describes resolved image bytes without decoding the pixels.
type ImageInfo struct {
	Format string
	Width  int
	Height int
	Size   int
}

// Inspect reads the header of data. Formats other than PNG, JPEG and GIF fail
// with errors.CodeInvalidInput.
func Inspect(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, errors.New(errors.CodeInvalidInput, "no image data")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, errors.Wrap(err, errors.CodeInvalidInput, "unrecognised image data")
	}

	return ImageInfo{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   len(data),
	}, nil
}
