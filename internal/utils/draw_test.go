package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawRect(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	red := color.RGBA{255, 0, 0, 255}

	DrawRect(dst, image.Rect(5, 5, 15, 15), red, 1)

	// Corners and edges painted.
	assert.Equal(t, red, dst.RGBAAt(5, 5))
	assert.Equal(t, red, dst.RGBAAt(14, 5))
	assert.Equal(t, red, dst.RGBAAt(5, 14))
	assert.Equal(t, red, dst.RGBAAt(14, 14))
	assert.Equal(t, red, dst.RGBAAt(10, 5))
	assert.Equal(t, red, dst.RGBAAt(5, 10))

	// Interior untouched.
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(10, 10))
	// Outside untouched.
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(0, 0))
}

func TestDrawRect_ClipsToBounds(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	blue := color.RGBA{0, 0, 255, 255}

	// Rect partially outside must not panic and must paint the visible part.
	DrawRect(dst, image.Rect(-5, -5, 5, 5), blue, 2)
	assert.Equal(t, blue, dst.RGBAAt(4, 0))

	// Fully outside is a no-op.
	before := append([]uint8(nil), dst.Pix...)
	DrawRect(dst, image.Rect(50, 50, 60, 60), blue, 1)
	assert.Equal(t, before, dst.Pix)
}
