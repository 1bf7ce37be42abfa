package detect

// Rectangular morphology on float32 ink maps. Dilation and erosion commute
// with a fixed threshold, so closing the map before binarization equals
// binary closing of the mask.

// closeMap applies morphological closing (dilate then erode) with a
// kernelW x kernelH rectangular structuring element. Kernel dimensions are
// treated as odd; even values extend by one. Returns a new slice.
func closeMap(m []float32, width, height, kernelW, kernelH int) []float32 {
	if kernelW <= 1 && kernelH <= 1 {
		out := make([]float32, len(m))
		copy(out, m)
		return out
	}
	dilated := dilateRect(m, width, height, kernelW, kernelH)
	return erodeRect(dilated, width, height, kernelW, kernelH)
}

// dilateRect expands high-valued regions with a rectangular kernel.
func dilateRect(m []float32, width, height, kernelW, kernelH int) []float32 {
	result := make([]float32, len(m))
	halfW := kernelW / 2
	halfH := kernelH / 2

	for y := range height {
		for x := range width {
			maxVal := float32(0.0)
			for ky := -halfH; ky <= halfH; ky++ {
				ny := y + ky
				if ny < 0 || ny >= height {
					continue
				}
				row := ny * width
				for kx := -halfW; kx <= halfW; kx++ {
					nx := x + kx
					if nx < 0 || nx >= width {
						continue
					}
					if m[row+nx] > maxVal {
						maxVal = m[row+nx]
					}
				}
			}
			result[y*width+x] = maxVal
		}
	}
	return result
}

// erodeRect shrinks high-valued regions with a rectangular kernel.
func erodeRect(m []float32, width, height, kernelW, kernelH int) []float32 {
	result := make([]float32, len(m))
	halfW := kernelW / 2
	halfH := kernelH / 2

	for y := range height {
		for x := range width {
			minVal := float32(1.0)
			for ky := -halfH; ky <= halfH; ky++ {
				ny := y + ky
				if ny < 0 || ny >= height {
					continue
				}
				row := ny * width
				for kx := -halfW; kx <= halfW; kx++ {
					nx := x + kx
					if nx < 0 || nx >= width {
						continue
					}
					if m[row+nx] < minVal {
						minVal = m[row+nx]
					}
				}
			}
			result[y*width+x] = minVal
		}
	}
	return result
}
