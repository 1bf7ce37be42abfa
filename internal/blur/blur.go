package blur

import (
	"errors"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/poblur/internal/utils"
)

// BlurRegions returns a copy of src with each region replaced by a Gaussian
// blur of the original pixels underneath it. Every region is blurred from
// the pristine source, never from already-blurred output, so the result does
// not depend on region order. Regions are interpreted relative to the
// source's bounds origin; parts outside the image are clipped and empty
// regions are skipped. The source image is never modified, and an empty
// region list yields an unmodified copy.
func BlurRegions(src image.Image, regions []utils.Region, strength Strength) (*image.NRGBA, error) {
	if src == nil {
		return nil, errors.New("source image is nil")
	}
	strength, _ = ClampStrength(strength)
	sigma := strength.Sigma()

	srcBounds := src.Bounds()
	frame := image.Rect(0, 0, srcBounds.Dx(), srcBounds.Dy())

	dst := imaging.Clone(src)
	for _, region := range regions {
		r, _ := region.ClampTo(frame)
		if r.Empty() {
			continue
		}
		crop := imaging.Crop(src, r.Rect().Add(srcBounds.Min))
		blurred := gaussian(crop, sigma)
		draw.Draw(dst, r.Rect(), blurred, image.Point{}, draw.Src)
	}
	return dst, nil
}
