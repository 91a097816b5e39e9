package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseDataURI(t *testing.T) {
	t.Run("splits media type and payload", func(t *testing.T) {
		img, err := ParseDataURI("data:image/jpeg;base64,aGVsbG8=")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.MIMEType)
		assert.Equal(t, []byte("hello"), img.Data)
	})

	t.Run("data URI survives encode", func(t *testing.T) {
		src := EncodedImage{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
		img, err := ParseDataURI(src.DataURI())
		require.NoError(t, err)
		assert.Equal(t, src, img)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, uri := range []string{
			"",
			"aGVsbG8=",
			"data:;base64,aGVsbG8=",
			"data:image/png,plain",
			"data:image/png;base64,@@@",
		} {
			_, err := ParseDataURI(uri)
			assert.ErrorIs(t, err, ErrInvalidDataURI, uri)
		}
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		_, err := ParseDataURI("data:image/png;base64,")
		assert.ErrorIs(t, err, ErrEmptyImage)
	})
}

func TestEncodeDataURI_DefaultsToPNG(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,aGk=", EncodeDataURI("", []byte("hi")))
}

func TestDetectImage(t *testing.T) {
	img, err := DetectImage(testPNG(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	_, err = DetectImage([]byte("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedMIME)

	_, err = DetectImage(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestDownscale(t *testing.T) {
	src := EncodedImage{MIMEType: "image/png", Data: testPNG(t, 120, 60)}

	t.Run("large image is shrunk to JPEG", func(t *testing.T) {
		out, err := Downscale(src, 40)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", out.MIMEType)

		decoded, err := DecodeImage(out)
		require.NoError(t, err)
		assert.LessOrEqual(t, decoded.Bounds().Dx(), 40)
		assert.LessOrEqual(t, decoded.Bounds().Dy(), 40)
	})

	t.Run("small image is untouched", func(t *testing.T) {
		out, err := Downscale(src, 500)
		require.NoError(t, err)
		assert.Equal(t, src, out)
	})

	t.Run("zero limit disables", func(t *testing.T) {
		out, err := Downscale(EncodedImage{MIMEType: "image/png", Data: []byte("not decoded")}, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte("not decoded"), out.Data)
	})
}

func TestExtensionFromMIME(t *testing.T) {
	assert.Equal(t, "jpg", ExtensionFromMIME("image/jpeg"))
	assert.Equal(t, "webp", ExtensionFromMIME("image/webp"))
	assert.Equal(t, "png", ExtensionFromMIME("application/octet-stream"))
}
