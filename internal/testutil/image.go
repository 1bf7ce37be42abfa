package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/poblur/internal/utils"
)

// PurchaseOrderConfig controls synthetic purchase-order generation.
type PurchaseOrderConfig struct {
	Width  int
	Height int
	// TotalsBlock is rendered as a solid ink rectangle standing in for the
	// totals box of the document.
	TotalsBlock utils.Region
	Background  color.Color
	Ink         color.Color
}

// DefaultPurchaseOrderConfig returns the standard 1000x1400 test document
// with the totals block at (700,1200) sized 250x80.
func DefaultPurchaseOrderConfig() PurchaseOrderConfig {
	return PurchaseOrderConfig{
		Width:       1000,
		Height:      1400,
		TotalsBlock: utils.Region{X: 700, Y: 1200, Width: 250, Height: 80, Label: "totals"},
		Background:  color.White,
		Ink:         color.Black,
	}
}

// ScaledTo returns a copy of the config for a page of the given size, keeping
// the totals block at the same page fractions.
func (c PurchaseOrderConfig) ScaledTo(width, height int) PurchaseOrderConfig {
	out := c
	out.Width = width
	out.Height = height
	out.TotalsBlock = utils.Region{
		X:      c.TotalsBlock.X * width / c.Width,
		Y:      c.TotalsBlock.Y * height / c.Height,
		Width:  c.TotalsBlock.Width * width / c.Width,
		Height: c.TotalsBlock.Height * height / c.Height,
		Label:  c.TotalsBlock.Label,
	}
	return out
}

// poLine positions a text line by page fractions.
type poLine struct {
	fx, fy float64
	text   string
}

// Synthetic document content, placed inside the standard layout areas.
var poLines = []poLine{
	{0.06, 0.057, "PURCHASE ORDER"},
	{0.06, 0.086, "PO-2024-00731    Date: 2024-03-14"},
	{0.06, 0.186, "Bill To: Initech GmbH"},
	{0.06, 0.207, "42 Industrieweg"},
	{0.06, 0.229, "88131 Lindau"},
	{0.52, 0.186, "Ship To: Warehouse 7"},
	{0.52, 0.207, "Dock 3, Gate B"},
	{0.06, 0.379, "Item            Qty    Unit    Amount"},
	{0.06, 0.407, "Widget A          4   19.90     79.60"},
	{0.06, 0.436, "Widget B          2   45.00     90.00"},
	{0.06, 0.464, "Fastener pack    12    0.85     10.20"},
	{0.06, 0.493, "Shipping          1   12.00     12.00"},
	{0.06, 0.964, "Thank you for your business"},
}

// GeneratePurchaseOrder renders a synthetic purchase-order page: header and
// address lines, item rows and a solid totals block, all dark on a light
// background.
func GeneratePurchaseOrder(cfg PurchaseOrderConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{cfg.Ink},
		Face: basicfont.Face7x13,
	}
	for _, line := range poLines {
		drawer.Dot = fixed.P(int(line.fx*float64(cfg.Width)), int(line.fy*float64(cfg.Height)))
		drawer.DrawString(line.text)
	}

	if !cfg.TotalsBlock.Empty() {
		draw.Draw(img, cfg.TotalsBlock.Rect(), &image.Uniform{cfg.Ink}, image.Point{}, draw.Src)
	}
	return img
}

// GenerateBlankPage returns a uniform white page.
func GenerateBlankPage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	return img
}

// SaveImage writes an image for a test, creating parent directories. The
// format follows the file extension.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	require.NoError(t, EnsureDir(filepath.Dir(path)), "Failed to create directory for %s", path)
	require.NoError(t, utils.SaveImage(img, path, utils.SaveOptions{}), "Failed to save image %s", path)
}

// LoadImage reads an image back for a test.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	img, _, err := utils.LoadImage(path)
	require.NoError(t, err, "Failed to load image %s", path)
	return img
}

// CompareImages reports whether two images are pixel-similar: the average
// per-pixel color distance, normalized to [0, 1], stays within tolerance.
func CompareImages(img1, img2 image.Image, tolerance float64) bool {
	bounds1 := img1.Bounds()
	bounds2 := img2.Bounds()
	if bounds1.Dx() != bounds2.Dx() || bounds1.Dy() != bounds2.Dy() {
		return false
	}

	var totalDiff float64
	var pixelCount float64
	for y := 0; y < bounds1.Dy(); y++ {
		for x := 0; x < bounds1.Dx(); x++ {
			r1, g1, b1, a1 := img1.At(bounds1.Min.X+x, bounds1.Min.Y+y).RGBA()
			r2, g2, b2, a2 := img2.At(bounds2.Min.X+x, bounds2.Min.Y+y).RGBA()

			dr := float64(r1) - float64(r2)
			dg := float64(g1) - float64(g2)
			db := float64(b1) - float64(b2)
			da := float64(a1) - float64(a2)
			totalDiff += math.Sqrt(dr*dr + dg*dg + db*db + da*da)
			pixelCount++
		}
	}

	avgDiff := totalDiff / pixelCount
	maxDiff := math.Sqrt(4 * 65535 * 65535)
	return (avgDiff / maxDiff) <= tolerance
}

// DiffWithin counts pixels that differ between two same-sized images inside
// rect. Coordinates are relative to each image's bounds origin.
func DiffWithin(a, b image.Image, rect image.Rectangle) int {
	return diffPixels(a, b, func(x, y int) bool {
		return image.Pt(x, y).In(rect)
	})
}

// DiffOutside counts pixels that differ between two same-sized images
// outside all of the allowed rectangles.
func DiffOutside(a, b image.Image, allowed []image.Rectangle) int {
	return diffPixels(a, b, func(x, y int) bool {
		p := image.Pt(x, y)
		for _, r := range allowed {
			if p.In(r) {
				return false
			}
		}
		return true
	})
}

func diffPixels(a, b image.Image, include func(x, y int) bool) int {
	ab, bb := a.Bounds(), b.Bounds()
	w, h := ab.Dx(), ab.Dy()
	if w != bb.Dx() || h != bb.Dy() {
		return w * h
	}

	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !include(x, y) {
				continue
			}
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				count++
			}
		}
	}
	return count
}

// RegionVariance computes the luminance variance of the pixels inside rect,
// on the 8-bit scale. Uniform regions score zero.
func RegionVariance(img image.Image, rect image.Rectangle) float64 {
	b := img.Bounds()
	var sum, sumSq float64
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257.0
			sum += lum
			sumSq += lum * lum
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}
