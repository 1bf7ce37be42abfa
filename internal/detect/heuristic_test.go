package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/poblur/internal/utils"
)

// newPage creates a white test page.
func newPage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.White)
		}
	}
	return img
}

// fillBar paints a solid black rectangle, the stand-in for a text line.
func fillBar(img *image.RGBA, x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			img.Set(xx, yy, color.Black)
		}
	}
}

func TestHeuristic_DetectsTextLine(t *testing.T) {
	img := newPage(400, 600)
	fillBar(img, 50, 100, 100, 14)

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	assert.Equal(t, utils.Region{X: 50, Y: 100, Width: 100, Height: 14}, regions[0])
	assert.Empty(t, regions[0].Label)
}

func TestHeuristic_MergesWordsOnLine(t *testing.T) {
	// Two words eight pixels apart; the closing kernel bridges the space.
	img := newPage(400, 600)
	fillBar(img, 50, 200, 80, 14)
	fillBar(img, 138, 200, 80, 14)

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	assert.Equal(t, 50, regions[0].X)
	assert.Equal(t, 200, regions[0].Y)
	assert.Equal(t, 168, regions[0].Width)
	assert.Equal(t, 14, regions[0].Height)
}

func TestHeuristic_KeepsLinesSeparate(t *testing.T) {
	img := newPage(400, 600)
	fillBar(img, 50, 100, 100, 14)
	fillBar(img, 50, 150, 100, 14)

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, 100, regions[0].Y)
	assert.Equal(t, 150, regions[1].Y)
}

func TestHeuristic_FiltersSmallComponents(t *testing.T) {
	img := newPage(400, 600)
	fillBar(img, 50, 100, 100, 14) // real text line
	fillBar(img, 200, 300, 20, 6)  // speck

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	assert.Equal(t, 50, regions[0].X)
	assert.Equal(t, 100, regions[0].Y)
}

func TestHeuristic_FiltersPageWideRule(t *testing.T) {
	// A horizontal rule spanning 95% of the page is a border, not text.
	img := newPage(400, 600)
	fillBar(img, 10, 400, 380, 14)

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestHeuristic_FiltersTallBlock(t *testing.T) {
	// A logo-sized solid block is too tall to be a text line.
	img := newPage(400, 600)
	fillBar(img, 50, 450, 100, 80)

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestHeuristic_BlankImage(t *testing.T) {
	img := newPage(400, 600)

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestHeuristic_LowContrastImage(t *testing.T) {
	// Faint scanner noise must not produce regions.
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := range 200 {
		for x := range 200 {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.Gray{Y: 244})
			} else {
				img.Set(x, y, color.Gray{Y: 235})
			}
		}
	}

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestHeuristic_NilImage(t *testing.T) {
	det := NewHeuristic(HeuristicConfig{})
	_, err := det.DetectRegions(nil)
	require.Error(t, err)
}

func TestHeuristic_EmptyImage(t *testing.T) {
	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestHeuristic_Deterministic(t *testing.T) {
	img := newPage(400, 600)
	fillBar(img, 50, 100, 100, 14)
	fillBar(img, 50, 150, 120, 14)
	fillBar(img, 200, 300, 90, 14)

	det := NewHeuristic(HeuristicConfig{})
	first, err := det.DetectRegions(img)
	require.NoError(t, err)
	second, err := det.DetectRegions(img)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHeuristic_SortOrder(t *testing.T) {
	img := newPage(400, 600)
	fillBar(img, 200, 150, 100, 14)
	fillBar(img, 50, 150, 100, 14)
	fillBar(img, 50, 100, 100, 14)

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(img)
	require.NoError(t, err)
	require.Len(t, regions, 3)

	for i := 1; i < len(regions); i++ {
		prev, cur := regions[i-1], regions[i]
		ordered := prev.Y < cur.Y || (prev.Y == cur.Y && prev.X <= cur.X)
		assert.True(t, ordered, "regions %d and %d out of order: %v, %v", i-1, i, prev, cur)
	}
}

func TestHeuristic_SubImageCoordinates(t *testing.T) {
	// Regions are reported relative to the bounds origin, so a sub-image
	// crop yields crop-local coordinates.
	full := newPage(500, 700)
	fillBar(full, 100, 200, 100, 14)
	sub, ok := full.SubImage(image.Rect(50, 100, 450, 700)).(*image.RGBA)
	require.True(t, ok)

	det := NewHeuristic(HeuristicConfig{})
	regions, err := det.DetectRegions(sub)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	assert.Equal(t, utils.Region{X: 50, Y: 100, Width: 100, Height: 14}, regions[0])
}

func TestHeuristic_InputImageUnchanged(t *testing.T) {
	img := newPage(200, 200)
	fillBar(img, 40, 50, 60, 14)
	before := append([]uint8(nil), img.Pix...)

	det := NewHeuristic(HeuristicConfig{})
	_, err := det.DetectRegions(img)
	require.NoError(t, err)

	assert.Equal(t, before, img.Pix)
}

func TestNewHeuristic_ZeroConfigUsesDefaults(t *testing.T) {
	det := NewHeuristic(HeuristicConfig{})
	assert.Equal(t, DefaultHeuristicConfig(), det.cfg)
}

func TestNewHeuristic_PartialConfigKeepsOverrides(t *testing.T) {
	det := NewHeuristic(HeuristicConfig{MinArea: 50, CloseKernelWidth: 11})

	assert.Equal(t, 50, det.cfg.MinArea)
	assert.Equal(t, 11, det.cfg.CloseKernelWidth)
	assert.Equal(t, DefaultHeuristicConfig().MinHeight, det.cfg.MinHeight)
	assert.Equal(t, DefaultHeuristicConfig().MaxWidthFrac, det.cfg.MaxWidthFrac)
}
