package redact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// RegionSource identifies where a redaction region came from.
type RegionSource string

const (
	// SourceLayout marks regions taken from the configured layout catalog.
	SourceLayout RegionSource = "layout"
	// SourceDetected marks regions found by automatic detection.
	SourceDetected RegionSource = "detected"
	// SourceFallback marks catalog regions used because detection found nothing.
	SourceFallback RegionSource = "fallback"
	// SourceExplicit marks regions supplied directly by the caller.
	SourceExplicit RegionSource = "explicit"
)

// RegionResult records one candidate region as the pipeline handled it.
// Clamped regions carry their clipped geometry; dropped regions keep the
// original geometry and were not blurred.
type RegionResult struct {
	Region  utils.Region `json:"region"`
	Source  RegionSource `json:"source"`
	Clamped bool         `json:"clamped,omitempty"`
	Dropped bool         `json:"dropped,omitempty"`
}

// Result aggregates a single redaction run.
type Result struct {
	InputPath  string `json:"input_path,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`

	Strength        blur.Strength `json:"strength"`
	StrengthClamped bool          `json:"strength_clamped,omitempty"`

	Regions      []RegionResult `json:"regions"`
	UsedFallback bool           `json:"used_fallback,omitempty"`

	Processing struct {
		LoadNs   int64 `json:"load_ns,omitempty"`
		SelectNs int64 `json:"select_ns"`
		BlurNs   int64 `json:"blur_ns"`
		SaveNs   int64 `json:"save_ns,omitempty"`
		TotalNs  int64 `json:"total_ns"`
	} `json:"processing"`
}

// BlurredCount returns how many regions were actually blurred.
func (r *Result) BlurredCount() int {
	n := 0
	for _, reg := range r.Regions {
		if !reg.Dropped {
			n++
		}
	}
	return n
}

// ToJSON serializes a Result to pretty JSON.
func ToJSON(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToText renders a short human-readable summary of a Result.
func ToText(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var b strings.Builder

	switch {
	case res.InputPath != "" && res.OutputPath != "":
		fmt.Fprintf(&b, "%s -> %s (%dx%d)\n", res.InputPath, res.OutputPath, res.Width, res.Height)
	default:
		fmt.Fprintf(&b, "image %dx%d\n", res.Width, res.Height)
	}

	fmt.Fprintf(&b, "strength %d", res.Strength)
	if res.StrengthClamped {
		b.WriteString(" (clamped)")
	}
	if res.UsedFallback {
		b.WriteString(", detection fell back to layout catalog")
	}
	fmt.Fprintf(&b, "\n%d region(s) blurred\n", res.BlurredCount())

	for _, reg := range res.Regions {
		fmt.Fprintf(&b, "  %s [%s]", reg.Region.String(), reg.Source)
		if reg.Clamped {
			b.WriteString(" clamped")
		}
		if reg.Dropped {
			b.WriteString(" dropped")
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
