package detect

import (
	"image"

	"github.com/MeKo-Tech/poblur/internal/mempool"
)

// inkMap converts an image to a float32 map in [0, 1] where high values mark
// dark (ink-bearing) pixels. The buffer comes from the shared pool; the caller
// must return it via mempool.PutFloat32.
func inkMap(img image.Image) ([]float32, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	ink := mempool.GetFloat32(w * h)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma on 16-bit channel values.
			lum := (0.299*float32(r) + 0.587*float32(g) + 0.114*float32(bl)) / 65535.0
			ink[i] = 1.0 - lum
			i++
		}
	}
	return ink, w, h
}

// inkRange returns the minimum and maximum values of the ink map.
func inkRange(ink []float32) (minV, maxV float32) {
	if len(ink) == 0 {
		return 0, 0
	}
	minV, maxV = ink[0], ink[0]
	for _, v := range ink[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}
