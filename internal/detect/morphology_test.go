package detect

import (
	"testing"
)

// flatMap builds a width*height map filled with a constant value.
func flatMap(width, height int, v float32) []float32 {
	m := make([]float32, width*height)
	for i := range m {
		m[i] = v
	}
	return m
}

func TestDilateRect_ExpandsSinglePixel(t *testing.T) {
	w, h := 7, 7
	m := flatMap(w, h, 0)
	m[3*w+3] = 1.0

	dilated := dilateRect(m, w, h, 3, 3)

	// The 3x3 neighborhood around the seed becomes 1, everything else stays 0.
	for y := range h {
		for x := range w {
			want := float32(0)
			if x >= 2 && x <= 4 && y >= 2 && y <= 4 {
				want = 1
			}
			if got := dilated[y*w+x]; got != want {
				t.Errorf("dilated[%d,%d] = %f, want %f", x, y, got, want)
			}
		}
	}
}

func TestErodeRect_ShrinksBlock(t *testing.T) {
	w, h := 7, 7
	m := flatMap(w, h, 0)
	for y := 2; y <= 4; y++ {
		for x := 2; x <= 4; x++ {
			m[y*w+x] = 1.0
		}
	}

	eroded := erodeRect(m, w, h, 3, 3)

	// Only the block center survives a 3x3 erosion.
	for y := range h {
		for x := range w {
			want := float32(0)
			if x == 3 && y == 3 {
				want = 1
			}
			if got := eroded[y*w+x]; got != want {
				t.Errorf("eroded[%d,%d] = %f, want %f", x, y, got, want)
			}
		}
	}
}

func TestCloseMap_PreservesIsolatedBlock(t *testing.T) {
	w, h := 20, 20
	m := flatMap(w, h, 0)
	for y := 8; y <= 11; y++ {
		for x := 5; x <= 14; x++ {
			m[y*w+x] = 1.0
		}
	}

	closed := closeMap(m, w, h, 3, 3)

	for i := range m {
		if closed[i] != m[i] {
			t.Fatalf("closing changed an isolated solid block at index %d: %f != %f",
				i, closed[i], m[i])
		}
	}
}

func TestCloseMap_BridgesHorizontalGap(t *testing.T) {
	// Two word-like runs on one row, separated by a 4-pixel space.
	w, h := 40, 9
	m := flatMap(w, h, 0)
	for y := 3; y <= 5; y++ {
		for x := 5; x <= 14; x++ {
			m[y*w+x] = 1.0
		}
		for x := 19; x <= 28; x++ {
			m[y*w+x] = 1.0
		}
	}

	closed := closeMap(m, w, h, 11, 1)

	// The gap row segment must be filled by the wide kernel.
	for x := 15; x <= 18; x++ {
		if closed[4*w+x] != 1.0 {
			t.Errorf("gap pixel (%d,4) not bridged: %f", x, closed[4*w+x])
		}
	}
}

func TestCloseMap_TallKernelDoesNotBridgeHorizontally(t *testing.T) {
	w, h := 40, 9
	m := flatMap(w, h, 0)
	for y := 3; y <= 5; y++ {
		for x := 5; x <= 14; x++ {
			m[y*w+x] = 1.0
		}
		for x := 19; x <= 28; x++ {
			m[y*w+x] = 1.0
		}
	}

	closed := closeMap(m, w, h, 1, 7)

	for x := 15; x <= 18; x++ {
		if closed[4*w+x] != 0.0 {
			t.Errorf("tall kernel bridged horizontal gap at (%d,4): %f", x, closed[4*w+x])
		}
	}
}

func TestCloseMap_DoesNotBridgeAcrossLines(t *testing.T) {
	// Two text lines ten rows apart must stay separate under a 21x3 kernel.
	w, h := 60, 30
	m := flatMap(w, h, 0)
	for x := 5; x <= 44; x++ {
		for y := 5; y <= 8; y++ {
			m[y*w+x] = 1.0
		}
		for y := 19; y <= 22; y++ {
			m[y*w+x] = 1.0
		}
	}

	closed := closeMap(m, w, h, 21, 3)

	for x := 5; x <= 44; x++ {
		if closed[13*w+x] != 0.0 {
			t.Fatalf("kernel bridged the inter-line gap at (%d,13): %f", x, closed[13*w+x])
		}
	}
}

func TestCloseMap_TrivialKernelCopies(t *testing.T) {
	m := []float32{0.1, 0.9, 0.4, 0.6}

	closed := closeMap(m, 2, 2, 1, 1)

	for i := range m {
		if closed[i] != m[i] {
			t.Errorf("index %d: got %f, want %f", i, closed[i], m[i])
		}
	}

	// Must be a copy, not the same backing array.
	closed[0] = 0.99
	if m[0] == 0.99 {
		t.Error("closeMap with trivial kernel must not alias its input")
	}
}
