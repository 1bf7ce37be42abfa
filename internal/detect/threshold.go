package detect

// otsuThreshold computes a global binarization threshold for an ink map using
// Otsu's method: the 256-bin histogram split maximizing between-class
// variance. Document ink maps are often hard black-on-white, which makes the
// variance flat across the empty gap between the two modes; the midpoint of
// that plateau is returned so the threshold lands between paper and print.
// The result is in [0, 1]. Callers should guard against near-blank maps
// first; on a degenerate histogram the returned split is meaningless.
func otsuThreshold(ink []float32) float32 {
	if len(ink) == 0 {
		return 0.5
	}

	const bins = 256
	histogram := make([]int, bins)
	totalPixels := len(ink)

	for _, v := range ink {
		bin := int(v * float32(bins-1))
		if bin < 0 {
			bin = 0
		}
		if bin >= bins {
			bin = bins - 1
		}
		histogram[bin]++
	}

	var totalMean float32
	for i := range bins {
		totalMean += float32(i) * float32(histogram[i])
	}
	totalMean /= float32(totalPixels)

	var maxVariance float32
	plateauLow, plateauHigh := 0, 0
	var sumB float32
	wB := 0

	for t := range bins {
		wB += histogram[t]
		if wB == 0 {
			continue
		}

		wF := totalPixels - wB
		if wF == 0 {
			break
		}

		sumB += float32(t) * float32(histogram[t])
		meanB := sumB / float32(wB)
		meanF := (totalMean*float32(totalPixels) - sumB) / float32(wF)

		// Between-class variance
		variance := float32(wB) * float32(wF) * (meanB - meanF) * (meanB - meanF)

		switch {
		case variance > maxVariance:
			maxVariance = variance
			plateauLow, plateauHigh = t, t
		case variance == maxVariance && maxVariance > 0:
			plateauHigh = t
		}
	}

	best := (plateauLow + plateauHigh) / 2
	return float32(best) / float32(bins-1)
}
