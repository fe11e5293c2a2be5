package validation

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.White)
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	ext, err := ValidateImage(encodePNG(t), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewGray(image.Rect(0, 0, 2, 2)), nil))
	ext, err = ValidateImage(jpg.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)
}

func TestValidateImage_Rejects(t *testing.T) {
	_, err := ValidateImage(nil, 0)
	assertFieldError(t, err, "image", "")

	_, err = ValidateImage([]byte("definitely not an image"), 0)
	assertFieldError(t, err, "image", "upload a valid image")

	_, err = ValidateImage([]byte("GIF89a but not really"), 1<<20)
	assertFieldError(t, err, "image", "upload a valid image")

	truncated := encodePNG(t)
	_, err = ValidateImage(truncated[:len(truncated)/2], 1<<20)
	assertFieldError(t, err, "image", "upload a valid image")

	_, err = ValidateImage(encodePNG(t), 10)
	assertFieldError(t, err, "image", "")
}
