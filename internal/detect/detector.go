package detect

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/poblur/internal/utils"
)

// Detector finds text-bearing regions in an image. Implementations must not
// modify the input image and must be safe for sequential reuse across images.
type Detector interface {
	DetectRegions(img image.Image) ([]utils.Region, error)
}

// NewDetector builds the detector selected by cfg.Variant. An empty variant
// selects the heuristic detector.
func NewDetector(cfg Config) (Detector, error) {
	switch cfg.Variant {
	case "", VariantHeuristic:
		return NewHeuristic(cfg.Heuristic), nil
	default:
		return nil, fmt.Errorf("unknown detector variant %q", cfg.Variant)
	}
}
