//go:build blur_bild

package blur

import (
	"image"

	bildblur "github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// gaussian blurs the image with bild's parallel Gaussian convolution. The
// bild radius covers roughly two standard deviations of the default
// backend's kernel.
func gaussian(img image.Image, sigma float64) *image.NRGBA {
	return imaging.Clone(bildblur.Gaussian(img, 2*sigma))
}
