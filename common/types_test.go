package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeTexture(t *testing.T) {
	data := encodePNG(t, 3, 2, color.NRGBA{G: 255, A: 255})
	tex, err := DecodeTexture(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, uint32(3), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)
	assert.Len(t, tex.Pixels, 3*2*4)
	assert.Equal(t, [4]byte{255, 0, 0, 255}, tex.At(0, 0))
	assert.Equal(t, [4]byte{0, 255, 0, 255}, tex.At(2, 1))
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 4, 4, color.NRGBA{B: 255, A: 255}), 0644))

	tex, err := LoadTexture(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), tex.Width)

	_, err = LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDecodeTextureRejectsGarbage(t *testing.T) {
	_, err := DecodeTexture(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
