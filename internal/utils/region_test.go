package utils

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionRect(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 30, Height: 40}
	assert.Equal(t, image.Rect(10, 20, 40, 60), r.Rect())
}

func TestRegionArea(t *testing.T) {
	tests := []struct {
		name     string
		region   Region
		expected int
	}{
		{name: "normal region", region: Region{X: 0, Y: 0, Width: 10, Height: 5}, expected: 50},
		{name: "zero width", region: Region{X: 5, Y: 5, Width: 0, Height: 10}, expected: 0},
		{name: "zero height", region: Region{X: 5, Y: 5, Width: 10, Height: 0}, expected: 0},
		{name: "negative width", region: Region{X: 0, Y: 0, Width: -3, Height: 10}, expected: 0},
		{name: "single pixel", region: Region{X: 99, Y: 99, Width: 1, Height: 1}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.region.Area())
			assert.Equal(t, tt.expected == 0, tt.region.Empty())
		})
	}
}

func TestRegionClampTo(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	tests := []struct {
		name        string
		region      Region
		expected    Region
		wantChanged bool
	}{
		{
			name:        "fully inside",
			region:      Region{X: 10, Y: 10, Width: 20, Height: 20},
			expected:    Region{X: 10, Y: 10, Width: 20, Height: 20},
			wantChanged: false,
		},
		{
			name:        "extends past right and bottom",
			region:      Region{X: 80, Y: 90, Width: 50, Height: 50},
			expected:    Region{X: 80, Y: 90, Width: 20, Height: 10},
			wantChanged: true,
		},
		{
			name:        "negative origin",
			region:      Region{X: -10, Y: -5, Width: 30, Height: 30},
			expected:    Region{X: 0, Y: 0, Width: 20, Height: 25},
			wantChanged: true,
		},
		{
			name:        "fully outside",
			region:      Region{X: 200, Y: 200, Width: 10, Height: 10},
			expected:    Region{},
			wantChanged: true,
		},
		{
			name:        "zero area stays empty",
			region:      Region{X: 50, Y: 50, Width: 0, Height: 10},
			expected:    Region{},
			wantChanged: true,
		},
		{
			name:        "exact bounds",
			region:      Region{X: 0, Y: 0, Width: 100, Height: 100},
			expected:    Region{X: 0, Y: 0, Width: 100, Height: 100},
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := tt.region.ClampTo(bounds)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestRegionClampTo_PreservesLabel(t *testing.T) {
	r := Region{X: -5, Y: 0, Width: 10, Height: 10, Label: "totals"}
	clamped, changed := r.ClampTo(image.Rect(0, 0, 100, 100))
	assert.True(t, changed)
	assert.Equal(t, "totals", clamped.Label)
}

func TestRegionIntersects(t *testing.T) {
	a := Region{X: 0, Y: 0, Width: 10, Height: 10}

	assert.True(t, a.Intersects(Region{X: 5, Y: 5, Width: 10, Height: 10}))
	assert.False(t, a.Intersects(Region{X: 10, Y: 0, Width: 10, Height: 10}))
	assert.False(t, a.Intersects(Region{X: 20, Y: 20, Width: 5, Height: 5}))
	assert.False(t, a.Intersects(Region{}))
}

func TestRegionFromRect(t *testing.T) {
	r := RegionFromRect(image.Rect(3, 4, 13, 24))
	assert.Equal(t, Region{X: 3, Y: 4, Width: 10, Height: 20}, r)
}

func TestRegionString(t *testing.T) {
	assert.Equal(t, "(1,2 3x4)", Region{X: 1, Y: 2, Width: 3, Height: 4}.String())
	assert.Equal(t, "header(0,0 100x15)", Region{Width: 100, Height: 15, Label: "header"}.String())
}
