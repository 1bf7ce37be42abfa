package detect

import (
	"errors"
	"image"
	"log/slog"
	"sort"

	"github.com/MeKo-Tech/poblur/internal/mempool"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// Heuristic is the default pure-Go text-region detector.
type Heuristic struct {
	cfg HeuristicConfig
}

// NewHeuristic builds a heuristic detector. Zero-valued config fields fall
// back to their defaults.
func NewHeuristic(cfg HeuristicConfig) *Heuristic {
	def := DefaultHeuristicConfig()
	if cfg.MinContrast <= 0 {
		cfg.MinContrast = def.MinContrast
	}
	if cfg.CloseKernelWidth <= 0 {
		cfg.CloseKernelWidth = def.CloseKernelWidth
	}
	if cfg.CloseKernelHeight <= 0 {
		cfg.CloseKernelHeight = def.CloseKernelHeight
	}
	if cfg.MinWidth <= 0 {
		cfg.MinWidth = def.MinWidth
	}
	if cfg.MinHeight <= 0 {
		cfg.MinHeight = def.MinHeight
	}
	if cfg.MaxWidthFrac <= 0 {
		cfg.MaxWidthFrac = def.MaxWidthFrac
	}
	if cfg.MaxHeightFrac <= 0 {
		cfg.MaxHeightFrac = def.MaxHeightFrac
	}
	if cfg.MinArea <= 0 {
		cfg.MinArea = def.MinArea
	}
	return &Heuristic{cfg: cfg}
}

// DetectRegions implements Detector. Regions come back sorted top-to-bottom,
// then left-to-right, with coordinates relative to the image's bounds origin,
// and carry no labels. A blank or near-blank image yields no regions and no
// error.
func (d *Heuristic) DetectRegions(img image.Image) ([]utils.Region, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}

	ink, w, h := inkMap(img)
	defer mempool.PutFloat32(ink)

	minV, maxV := inkRange(ink)
	if maxV-minV < d.cfg.MinContrast {
		slog.Debug("detection skipped: ink contrast below threshold",
			"range", maxV-minV, "min_contrast", d.cfg.MinContrast)
		return nil, nil
	}

	t := otsuThreshold(ink)
	closed := closeMap(ink, w, h, d.cfg.CloseKernelWidth, d.cfg.CloseKernelHeight)

	mask := binarize(closed, w, h, t)
	defer mempool.PutBool(mask)

	comps := connectedComponents(mask, w, h)
	regions := d.filterComponents(comps, w, h)

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Y != regions[j].Y {
			return regions[i].Y < regions[j].Y
		}
		return regions[i].X < regions[j].X
	})

	slog.Debug("heuristic detection finished",
		"components", len(comps), "regions", len(regions), "threshold", t)
	return regions, nil
}

// filterComponents keeps components shaped like text lines: wide enough to be
// words, short enough to be single lines, and not page-spanning artifacts.
func (d *Heuristic) filterComponents(comps []compStats, imgW, imgH int) []utils.Region {
	maxW := int(d.cfg.MaxWidthFrac * float64(imgW))
	maxH := int(d.cfg.MaxHeightFrac * float64(imgH))

	regions := make([]utils.Region, 0, len(comps))
	for _, c := range comps {
		if c.count < d.cfg.MinArea {
			continue
		}
		cw, ch := c.width(), c.height()
		if cw <= d.cfg.MinWidth || ch <= d.cfg.MinHeight {
			continue
		}
		if cw >= maxW || ch >= maxH {
			continue
		}
		regions = append(regions, utils.Region{
			X:      c.minX,
			Y:      c.minY,
			Width:  cw,
			Height: ch,
		})
	}
	return regions
}
