package redact

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/poblur/internal/utils"
)

// DefaultOverlayPalette maps region sources to outline colors.
func DefaultOverlayPalette() map[RegionSource]color.Color {
	return map[RegionSource]color.Color{
		SourceLayout:   color.RGBA{R: 66, G: 133, B: 244, A: 255}, // blue
		SourceDetected: color.RGBA{R: 52, G: 168, B: 83, A: 255},  // green
		SourceFallback: color.RGBA{R: 251, G: 140, B: 0, A: 255},  // orange
		SourceExplicit: color.RGBA{R: 156, G: 39, B: 176, A: 255}, // purple
	}
}

// RenderOverlay draws region outlines over the image and returns an RGBA
// copy, colored by region source. Dropped regions are skipped. A nil palette
// selects DefaultOverlayPalette.
func RenderOverlay(img image.Image, regions []RegionResult, palette map[RegionSource]color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	if palette == nil {
		palette = DefaultOverlayPalette()
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}

	for _, reg := range regions {
		if reg.Dropped {
			continue
		}
		col, ok := palette[reg.Source]
		if !ok {
			col = color.RGBA{R: 255, A: 255}
		}
		utils.DrawRect(dst, reg.Region.Rect(), col, 2)
	}
	return dst
}
