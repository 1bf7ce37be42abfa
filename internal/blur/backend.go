//go:build !blur_bild

package blur

import (
	"image"

	"github.com/disintegration/imaging"
)

// gaussian blurs the image with the imaging package's Gaussian convolution.
func gaussian(img image.Image, sigma float64) *image.NRGBA {
	return imaging.Blur(img, sigma)
}
