package batch

import (
	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/redact"
)

// buildRedactor creates a redactor from the batch configuration.
func buildRedactor(config *Config) (*redact.Redactor, error) {
	b := redact.NewBuilder().
		WithStrength(blur.Strength(config.Strength)).
		WithAutoDetection(config.AutoDetect).
		WithDetectorConfig(config.Detector)

	if len(config.Areas) > 0 {
		b = b.WithAreas(config.Areas)
	}
	if config.Layout != "" {
		b = b.WithLayoutPath(config.Layout)
	}
	if config.LayoutsDir != "" {
		b = b.WithLayoutsDir(config.LayoutsDir)
	}
	if config.JPEGQuality > 0 {
		b = b.WithJPEGQuality(config.JPEGQuality)
	}

	return b.Build()
}
