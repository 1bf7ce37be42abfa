package redact

import (
	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/detect"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// Config holds configuration for the redaction pipeline and its components.
type Config struct {
	// Strength of the Gaussian blur. Out-of-range values are clamped at
	// build time and flagged on every Result.
	Strength blur.Strength

	// AutoDetect runs the region detector before falling back to the
	// layout catalog. When false the catalog is used directly.
	AutoDetect bool

	// Detector configuration, used when AutoDetect is on.
	Detector detect.Config

	// LayoutsDir overrides where named layout references are resolved.
	// Empty means the environment or the per-user default directory.
	LayoutsDir string

	// Layout references a layout catalog: a bare name resolved inside the
	// layouts directory, or a YAML file path. Empty selects the built-in
	// purchase-order catalog.
	Layout string

	// Areas restricts the catalog to the named areas. Empty keeps all.
	Areas []string

	// JPEGQuality in [1, 100] for JPEG output; zero means the default.
	JPEGQuality int
}

// DefaultConfig returns a redaction config with component defaults.
func DefaultConfig() Config {
	return Config{
		Strength:    blur.DefaultStrength,
		AutoDetect:  true,
		Detector:    detect.DefaultConfig(),
		JPEGQuality: utils.DefaultJPEGQuality,
	}
}
