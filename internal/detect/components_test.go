package detect

import (
	"testing"

	"github.com/MeKo-Tech/poblur/internal/mempool"
)

func TestBinarize(t *testing.T) {
	ink := []float32{0.2, 0.6, 0.8, 0.3}
	w, h := 2, 2
	threshold := float32(0.5)

	mask := binarize(ink, w, h, threshold)
	defer mempool.PutBool(mask)

	expected := []bool{false, true, true, false}
	for i, v := range mask {
		if v != expected[i] {
			t.Errorf("expected mask[%d] = %v, got %v", i, expected[i], v)
		}
	}
}

func TestBinarize_ThresholdInclusive(t *testing.T) {
	ink := []float32{0.5, 0.49999}
	mask := binarize(ink, 2, 1, 0.5)
	defer mempool.PutBool(mask)

	if !mask[0] {
		t.Error("value equal to threshold should be marked as ink")
	}
	if mask[1] {
		t.Error("value below threshold should not be marked as ink")
	}
}

func TestConnectedComponents_SimpleCase(t *testing.T) {
	// 3x3 cross shape, one component
	mask := []bool{
		false, true, false,
		true, true, true,
		false, true, false,
	}
	w, h := 3, 3

	comps := connectedComponents(mask, w, h)

	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}

	comp := comps[0]
	if comp.count != 5 {
		t.Errorf("expected component count 5, got %d", comp.count)
	}
	if comp.minX != 0 || comp.maxX != 2 || comp.minY != 0 || comp.maxY != 2 {
		t.Errorf("unexpected bounding box: minX=%d, maxX=%d, minY=%d, maxY=%d",
			comp.minX, comp.maxX, comp.minY, comp.maxY)
	}
	if comp.width() != 3 || comp.height() != 3 {
		t.Errorf("expected 3x3 bounding box, got %dx%d", comp.width(), comp.height())
	}
}

func TestConnectedComponents_MultipleComponents(t *testing.T) {
	// Four isolated corner pixels
	mask := []bool{
		true, false, true,
		false, false, false,
		true, false, true,
	}
	w, h := 3, 3

	comps := connectedComponents(mask, w, h)

	if len(comps) != 4 {
		t.Fatalf("expected 4 components, got %d", len(comps))
	}
	for i, comp := range comps {
		if comp.count != 1 {
			t.Errorf("component %d: expected count 1, got %d", i, comp.count)
		}
		if comp.width() != 1 || comp.height() != 1 {
			t.Errorf("component %d: expected 1x1 box, got %dx%d", i, comp.width(), comp.height())
		}
	}
}

func TestConnectedComponents_DiagonalNotConnected(t *testing.T) {
	// Diagonal pixels share no 4-connected edge
	mask := []bool{
		true, false,
		false, true,
	}

	comps := connectedComponents(mask, 2, 2)

	if len(comps) != 2 {
		t.Fatalf("expected 2 components for diagonal pixels, got %d", len(comps))
	}
}

func TestConnectedComponents_ScanOrder(t *testing.T) {
	// Two bars, lower-left seed scanned after upper-right
	mask := make([]bool, 6*6)
	for x := 3; x < 6; x++ {
		mask[0*6+x] = true // top-right bar
	}
	for x := 0; x < 3; x++ {
		mask[4*6+x] = true // bottom-left bar
	}

	comps := connectedComponents(mask, 6, 6)

	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %d", len(comps))
	}
	if comps[0].minY != 0 {
		t.Errorf("first component should be the top bar, got minY=%d", comps[0].minY)
	}
	if comps[1].minY != 4 {
		t.Errorf("second component should be the bottom bar, got minY=%d", comps[1].minY)
	}
}

func TestConnectedComponents_EmptyMask(t *testing.T) {
	mask := make([]bool, 4*4)

	comps := connectedComponents(mask, 4, 4)

	if len(comps) != 0 {
		t.Errorf("expected no components on an empty mask, got %d", len(comps))
	}
}

func TestComponentBFS_FullRectangle(t *testing.T) {
	// Solid 4x3 block surrounded by background
	w, h := 6, 5
	mask := make([]bool, w*h)
	for y := 1; y < 4; y++ {
		for x := 1; x < 5; x++ {
			mask[y*w+x] = true
		}
	}

	comps := connectedComponents(mask, w, h)

	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}
	comp := comps[0]
	if comp.count != 12 {
		t.Errorf("expected 12 pixels, got %d", comp.count)
	}
	if comp.width() != 4 || comp.height() != 3 {
		t.Errorf("expected 4x3 box, got %dx%d", comp.width(), comp.height())
	}
	if comp.minX != 1 || comp.minY != 1 {
		t.Errorf("expected box anchored at (1,1), got (%d,%d)", comp.minX, comp.minY)
	}
}
