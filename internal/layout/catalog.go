// Package layout provides the predefined region catalogs used to select
// document areas for redaction. Areas are stored as fractions of the image
// size so one catalog applies to purchase orders of any resolution.
package layout

import (
	"fmt"
	"image"
	"math"
	"strings"
	"unicode"

	"github.com/MeKo-Tech/poblur/internal/utils"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Area is a proportional document region. All coordinates are fractions of
// the image width/height in [0, 1].
type Area struct {
	Label  string  `yaml:"label" json:"label"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Catalog is a named set of proportional areas.
type Catalog struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Areas []Area `yaml:"areas" json:"areas"`
}

// Standard purchase-order area labels.
const (
	LabelHeader    = "header"
	LabelAddresses = "addresses"
	LabelItems     = "items"
	LabelTotals    = "totals"
	LabelFooter    = "footer"
)

// Default returns the built-in purchase-order catalog: the full-width header,
// address and footer bands, the items table, and the totals block in the
// lower-right quadrant.
func Default() Catalog {
	return Catalog{
		Name: "purchase-order",
		Areas: []Area{
			{Label: LabelHeader, X: 0, Y: 0, Width: 1, Height: 0.15},
			{Label: LabelAddresses, X: 0, Y: 0.15, Width: 1, Height: 0.25},
			{Label: LabelItems, X: 0, Y: 0.35, Width: 1, Height: 0.45},
			{Label: LabelTotals, X: 0.60, Y: 0.75, Width: 0.40, Height: 0.15},
			{Label: LabelFooter, X: 0, Y: 0.85, Width: 1, Height: 0.15},
		},
	}
}

// Validate checks that every area has a unique non-empty label and fractions
// describing a non-degenerate region inside the unit square.
func (c Catalog) Validate() error {
	if len(c.Areas) == 0 {
		return fmt.Errorf("catalog %q has no areas", c.Name)
	}
	seen := make(map[string]struct{}, len(c.Areas))
	for i, a := range c.Areas {
		if strings.TrimSpace(a.Label) == "" {
			return fmt.Errorf("area %d has an empty label", i)
		}
		key := FoldLabel(a.Label)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate area label %q", a.Label)
		}
		seen[key] = struct{}{}

		if a.X < 0 || a.X > 1 || a.Y < 0 || a.Y > 1 {
			return fmt.Errorf("area %q origin (%g, %g) outside [0, 1]", a.Label, a.X, a.Y)
		}
		if a.Width <= 0 || a.Height <= 0 {
			return fmt.Errorf("area %q has non-positive size %gx%g", a.Label, a.Width, a.Height)
		}
		if a.X+a.Width > 1+1e-9 || a.Y+a.Height > 1+1e-9 {
			return fmt.Errorf("area %q extends past the unit square", a.Label)
		}
	}
	return nil
}

// Labels returns the area labels in catalog order.
func (c Catalog) Labels() []string {
	out := make([]string, len(c.Areas))
	for i, a := range c.Areas {
		out[i] = a.Label
	}
	return out
}

// Filter returns a catalog containing only the areas whose labels match the
// given names. Matching is case- and diacritic-insensitive. Unknown names are
// an error so typos do not silently redact nothing.
func (c Catalog) Filter(names []string) (Catalog, error) {
	if len(names) == 0 {
		return c, nil
	}

	byKey := make(map[string]int, len(c.Areas))
	for i, a := range c.Areas {
		byKey[FoldLabel(a.Label)] = i
	}

	out := Catalog{Name: c.Name}
	picked := make(map[int]struct{}, len(names))
	for _, name := range names {
		idx, ok := byKey[FoldLabel(name)]
		if !ok {
			return Catalog{}, fmt.Errorf("unknown area %q (known: %s)",
				name, strings.Join(c.Labels(), ", "))
		}
		if _, dup := picked[idx]; dup {
			continue
		}
		picked[idx] = struct{}{}
	}
	// Preserve catalog order regardless of the order names were given in.
	for i, a := range c.Areas {
		if _, ok := picked[i]; ok {
			out.Areas = append(out.Areas, a)
		}
	}
	return out, nil
}

// RegionsFor scales the catalog to pixel regions for an image of the given
// size. Regions are clamped to the image bounds; areas that collapse to zero
// pixels are dropped.
func (c Catalog) RegionsFor(width, height int) []utils.Region {
	if width <= 0 || height <= 0 {
		return nil
	}
	bounds := image.Rect(0, 0, width, height)

	regions := make([]utils.Region, 0, len(c.Areas))
	for _, a := range c.Areas {
		r := utils.Region{
			X:      int(math.Round(a.X * float64(width))),
			Y:      int(math.Round(a.Y * float64(height))),
			Width:  int(math.Round(a.Width * float64(width))),
			Height: int(math.Round(a.Height * float64(height))),
			Label:  a.Label,
		}
		clamped, _ := r.ClampTo(bounds)
		if clamped.Empty() {
			continue
		}
		regions = append(regions, clamped)
	}
	return regions
}

var labelFolder = cases.Fold()

// FoldLabel normalizes an area label for matching: Unicode-decomposed,
// combining marks stripped, case-folded, surrounding space removed.
func FoldLabel(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return labelFolder.String(strings.TrimSpace(norm.NFC.String(b.String())))
}
