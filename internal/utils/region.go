package utils

import (
	"fmt"
	"image"
)

// Region is an axis-aligned rectangular area of an image in pixel coordinates.
// Label is optional; detected regions carry an empty label.
type Region struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label,omitempty"`
}

// NewRegion constructs an unlabeled region.
func NewRegion(x, y, width, height int) Region {
	return Region{X: x, Y: y, Width: width, Height: height}
}

// RegionFromRect converts an image.Rectangle to a Region.
func RegionFromRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns the pixel area. Zero for empty regions.
func (r Region) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ClampTo intersects the region with the given bounds. The returned region may
// be empty when the original lies fully outside bounds. The second return value
// reports whether clamping changed the geometry.
func (r Region) ClampTo(bounds image.Rectangle) (Region, bool) {
	clipped := r.Rect().Intersect(bounds)
	out := Region{Label: r.Label}
	if !clipped.Empty() {
		out.X = clipped.Min.X
		out.Y = clipped.Min.Y
		out.Width = clipped.Dx()
		out.Height = clipped.Dy()
	}
	changed := out.X != r.X || out.Y != r.Y || out.Width != r.Width || out.Height != r.Height
	return out, changed
}

// Intersects reports whether two regions share any pixels.
func (r Region) Intersects(other Region) bool {
	return r.Rect().Overlaps(other.Rect())
}

func (r Region) String() string {
	if r.Label != "" {
		return fmt.Sprintf("%s(%d,%d %dx%d)", r.Label, r.X, r.Y, r.Width, r.Height)
	}
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}
