package testutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPurchaseOrderConfig(t *testing.T) {
	cfg := DefaultPurchaseOrderConfig()

	assert.Equal(t, 1000, cfg.Width)
	assert.Equal(t, 1400, cfg.Height)
	assert.Equal(t, 700, cfg.TotalsBlock.X)
	assert.Equal(t, 1200, cfg.TotalsBlock.Y)
	assert.Equal(t, 250, cfg.TotalsBlock.Width)
	assert.Equal(t, 80, cfg.TotalsBlock.Height)
	assert.Equal(t, "totals", cfg.TotalsBlock.Label)
}

func TestGeneratePurchaseOrder(t *testing.T) {
	cfg := DefaultPurchaseOrderConfig()
	img := GeneratePurchaseOrder(cfg)

	require.NotNil(t, img)
	assert.Equal(t, cfg.Width, img.Bounds().Dx())
	assert.Equal(t, cfg.Height, img.Bounds().Dy())

	// Margins stay background-colored.
	r, g, b, _ := img.At(cfg.Width-1, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)

	// The totals block is solid ink.
	cx := cfg.TotalsBlock.X + cfg.TotalsBlock.Width/2
	cy := cfg.TotalsBlock.Y + cfg.TotalsBlock.Height/2
	r, g, b, _ = img.At(cx, cy).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)

	// The header band carries rendered text.
	inked := false
	for y := 60; y < 100 && !inked; y++ {
		for x := 50; x < 400; x++ {
			if rr, _, _, _ := img.At(x, y).RGBA(); rr < 0x8000 {
				inked = true
				break
			}
		}
	}
	assert.True(t, inked, "expected glyph pixels in the header band")
}

func TestGeneratePurchaseOrder_EmptyTotalsBlock(t *testing.T) {
	cfg := DefaultPurchaseOrderConfig()
	cfg.TotalsBlock.Width = 0
	img := GeneratePurchaseOrder(cfg)

	r, _, _, _ := img.At(825, 1240).RGBA()
	assert.Equal(t, uint32(0xffff), r, "no totals block should be drawn")
}

func TestGenerateBlankPage(t *testing.T) {
	img := GenerateBlankPage(120, 90)

	require.NotNil(t, img)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())
	assert.Zero(t, RegionVariance(img, image.Rect(0, 0, 120, 90)))
}

func TestSaveAndLoadImage(t *testing.T) {
	img := GeneratePurchaseOrder(DefaultPurchaseOrderConfig())
	path := filepath.Join(t.TempDir(), "po.png")

	SaveImage(t, img, path)
	require.True(t, FileExists(path))

	loaded := LoadImage(t, path)
	assert.Equal(t, img.Bounds().Dx(), loaded.Bounds().Dx())
	assert.Equal(t, img.Bounds().Dy(), loaded.Bounds().Dy())
	assert.True(t, CompareImages(img, loaded, 0))
}

func TestCompareImages(t *testing.T) {
	a := GenerateBlankPage(50, 50)
	b := GenerateBlankPage(50, 50)
	assert.True(t, CompareImages(a, b, 0))

	b.Set(10, 10, color.Black)
	assert.False(t, CompareImages(a, b, 0))
	assert.True(t, CompareImages(a, b, 0.01), "one dark pixel stays under a loose tolerance")

	c := GenerateBlankPage(50, 40)
	assert.False(t, CompareImages(a, c, 1.0), "size mismatch never compares equal")
}

func TestDiffWithinAndOutside(t *testing.T) {
	a := GenerateBlankPage(10, 10)
	b := GenerateBlankPage(10, 10)
	b.Set(5, 5, color.Black)

	assert.Equal(t, 1, DiffWithin(a, b, image.Rect(0, 0, 10, 10)))
	assert.Equal(t, 0, DiffWithin(a, b, image.Rect(0, 0, 5, 5)))

	assert.Equal(t, 1, DiffOutside(a, b, nil))
	assert.Equal(t, 0, DiffOutside(a, b, []image.Rectangle{image.Rect(4, 4, 6, 6)}))

	c := GenerateBlankPage(10, 8)
	assert.Equal(t, 100, DiffWithin(a, c, image.Rect(0, 0, 10, 10)), "size mismatch counts every pixel")
}

func TestRegionVariance(t *testing.T) {
	blank := GenerateBlankPage(20, 20)
	assert.Zero(t, RegionVariance(blank, image.Rect(0, 0, 20, 20)))
	assert.Zero(t, RegionVariance(blank, image.Rect(5, 5, 5, 5)), "empty rect scores zero")

	checker := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if (x+y)%2 == 0 {
				checker.Set(x, y, color.White)
			} else {
				checker.Set(x, y, color.Black)
			}
		}
	}
	assert.Greater(t, RegionVariance(checker, image.Rect(0, 0, 20, 20)), 1000.0)
}
