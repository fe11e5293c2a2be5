package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"inkwell/internal/models"

	_ "golang.org/x/image/webp"
)

// ImageFormats are the accepted upload formats, as reported by image.Decode.
var ImageFormats = map[string]string{
	"gif":  ".gif",
	"jpeg": ".jpg",
	"png":  ".png",
	"webp": ".webp",
}

// ValidateImage checks that data is a decodable image of an accepted format
// no larger than maxBytes, and returns the file extension to store it under.
func ValidateImage(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", models.NewFieldError("image", "the submitted file is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", models.NewFieldError("image", fmt.Sprintf("image must be at most %d bytes", maxBytes))
	}
	// A readable header is not enough; the pixel data must decode too.
	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", models.NewFieldError("image", "upload a valid image")
	}
	ext, ok := ImageFormats[format]
	if !ok {
		return "", models.NewFieldError("image", fmt.Sprintf("unsupported image format %q", format))
	}
	return ext, nil
}
