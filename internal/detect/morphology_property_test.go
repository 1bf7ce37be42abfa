package detect

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestCloseMap_BoundsPreservation verifies values stay in [0, 1].
func TestCloseMap_BoundsPreservation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("closing preserves value bounds [0, 1]", prop.ForAll(
		func(width, height, kernelW, kernelH int) bool {
			if width < 5 || height < 5 || width > 50 || height > 50 {
				return true
			}
			if kernelW < 1 || kernelW > 9 || kernelH < 1 || kernelH > 5 {
				return true
			}

			ink := make([]float32, width*height)
			for i := range ink {
				ink[i] = float32(i%100) / 100.0
			}

			result := closeMap(ink, width, height, kernelW, kernelH)

			for _, val := range result {
				if val < 0.0 || val > 1.0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(5, 50),
		gen.IntRange(5, 50),
		gen.IntRange(1, 9),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

// TestCloseMap_LengthPreservation verifies output length equals input.
func TestCloseMap_LengthPreservation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("closing preserves map dimensions", prop.ForAll(
		func(width, height int) bool {
			if width < 5 || height < 5 || width > 50 || height > 50 {
				return true
			}

			ink := make([]float32, width*height)
			for i := range ink {
				ink[i] = 0.5
			}

			result := closeMap(ink, width, height, 5, 3)
			return len(result) == len(ink)
		},
		gen.IntRange(5, 50),
		gen.IntRange(5, 50),
	))

	properties.TestingRun(t)
}

// TestDilateRect_MonotonicIncrease verifies dilation never lowers a value.
func TestDilateRect_MonotonicIncrease(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("dilation increases or maintains ink values", prop.ForAll(
		func(width, height int) bool {
			if width < 5 || height < 5 || width > 30 || height > 30 {
				return true
			}

			ink := make([]float32, width*height)
			for i := range ink {
				if i%(width+1) == 0 {
					ink[i] = 0.8
				} else {
					ink[i] = 0.2
				}
			}

			dilated := dilateRect(ink, width, height, 3, 3)

			increased := 0
			for i := range ink {
				if dilated[i] > ink[i] {
					increased++
				}
				if dilated[i] < ink[i] {
					return false
				}
			}
			return increased > 0
		},
		gen.IntRange(5, 30),
		gen.IntRange(5, 30),
	))

	properties.TestingRun(t)
}

// TestErodeRect_MonotonicDecrease verifies erosion never raises a value.
func TestErodeRect_MonotonicDecrease(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("erosion decreases or maintains ink values", prop.ForAll(
		func(width, height int) bool {
			if width < 5 || height < 5 || width > 30 || height > 30 {
				return true
			}

			ink := make([]float32, width*height)
			for i := range ink {
				ink[i] = 0.8
			}
			for i := 0; i < len(ink); i += (width + 1) {
				ink[i] = 0.2
			}

			eroded := erodeRect(ink, width, height, 3, 3)

			decreased := 0
			for i := range ink {
				if eroded[i] < ink[i] {
					decreased++
				}
				if eroded[i] > ink[i] {
					return false
				}
			}
			return decreased > 0
		},
		gen.IntRange(5, 30),
		gen.IntRange(5, 30),
	))

	properties.TestingRun(t)
}

// TestCloseMap_Extensive verifies closing never falls below the input map.
func TestCloseMap_Extensive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("closing is extensive", prop.ForAll(
		func(width, height, kernelW, kernelH int) bool {
			if width < 5 || height < 5 || width > 30 || height > 30 {
				return true
			}
			if kernelW < 1 || kernelW > 9 || kernelH < 1 || kernelH > 5 {
				return true
			}

			ink := make([]float32, width*height)
			for i := range ink {
				ink[i] = float32(i%7) / 7.0
			}

			closed := closeMap(ink, width, height, kernelW, kernelH)

			for i := range ink {
				if closed[i] < ink[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(5, 30),
		gen.IntRange(5, 30),
		gen.IntRange(1, 9),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

// TestCloseMap_Idempotence verifies closing twice equals closing once.
func TestCloseMap_Idempotence(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("morphological closing is idempotent", prop.ForAll(
		func(width, height, kernelW, kernelH int) bool {
			if width < 10 || height < 10 || width > 30 || height > 30 {
				return true
			}
			if kernelW < 1 || kernelW > 7 || kernelH < 1 || kernelH > 5 {
				return true
			}

			ink := make([]float32, width*height)
			for i := range ink {
				ink[i] = float32(i%2) * 0.8
			}

			result1 := closeMap(ink, width, height, kernelW, kernelH)
			result2 := closeMap(result1, width, height, kernelW, kernelH)

			for i := range result1 {
				diff := result1[i] - result2[i]
				if diff < -1e-6 || diff > 1e-6 {
					return false
				}
			}
			return true
		},
		gen.IntRange(10, 30),
		gen.IntRange(10, 30),
		gen.IntRange(1, 7),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

// TestCloseMap_FillsGaps verifies closing fills small dark gaps.
func TestCloseMap_FillsGaps(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("closing fills small dark gaps inside bright regions", prop.ForAll(
		func(width, height int) bool {
			if width < 15 || height < 15 || width > 30 || height > 30 {
				return true
			}

			ink := make([]float32, width*height)
			for y := 5; y < height-5; y++ {
				for x := 5; x < width-5; x++ {
					ink[y*width+x] = 0.9
				}
			}
			ink[7*width+7] = 0.1
			ink[8*width+9] = 0.1

			result := closeMap(ink, width, height, 3, 3)

			filled := 0
			for i := range ink {
				if ink[i] < 0.2 && result[i] > 0.2 {
					filled++
				}
			}
			return filled > 0
		},
		gen.IntRange(15, 30),
		gen.IntRange(15, 30),
	))

	properties.TestingRun(t)
}

// TestKernelWidth_AffectsReach verifies a wider kernel dilates further.
func TestKernelWidth_AffectsReach(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("wider kernels dilate more pixels", prop.ForAll(
		func(width, height int) bool {
			if width < 20 || height < 20 || width > 40 || height > 40 {
				return true
			}

			ink := make([]float32, width*height)
			for y := height/2 - 2; y <= height/2+2; y++ {
				for x := width/2 - 2; x <= width/2+2; x++ {
					ink[y*width+x] = 0.9
				}
			}

			result3 := dilateRect(ink, width, height, 3, 3)
			result7 := dilateRect(ink, width, height, 7, 3)

			count3, count7 := 0, 0
			for i := range ink {
				if result3[i] > 0.5 {
					count3++
				}
				if result7[i] > 0.5 {
					count7++
				}
			}
			return count7 >= count3
		},
		gen.IntRange(20, 40),
		gen.IntRange(20, 40),
	))

	properties.TestingRun(t)
}
