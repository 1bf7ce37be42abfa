package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/detect"
	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// DefaultOutputSuffix is inserted before the extension of batch output files.
const DefaultOutputSuffix = redact.DefaultOutputSuffix

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LayoutsDir: "",
		LogLevel:   "info",
		Verbose:    false,
		Redact: RedactConfig{
			Strength:    int(blur.DefaultStrength),
			AutoDetect:  true,
			JPEGQuality: utils.DefaultJPEGQuality,
		},
		Detector: defaultDetectorConfig(),
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			MaxUploadMB:       50,
			TimeoutSec:        30,
			ShutdownTimeout:   10,
			OverlayEnabled:    true,
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
			MaxRequestsPerDay: 5000,
			MaxDataPerDay:     100 * 1024 * 1024,
		},
		Batch: BatchConfig{
			Workers:         4,
			Suffix:          DefaultOutputSuffix,
			ContinueOnError: false,
		},
	}
}

// defaultDetectorConfig mirrors the detect package defaults.
func defaultDetectorConfig() DetectorConfig {
	cfg := detect.DefaultHeuristicConfig()
	return DetectorConfig{
		Variant:           detect.VariantHeuristic,
		MinContrast:       float64(cfg.MinContrast),
		CloseKernelWidth:  cfg.CloseKernelWidth,
		CloseKernelHeight: cfg.CloseKernelHeight,
		MinWidth:          cfg.MinWidth,
		MinHeight:         cfg.MinHeight,
		MaxWidthFrac:      cfg.MaxWidthFrac,
		MaxHeightFrac:     cfg.MaxHeightFrac,
		MinArea:           cfg.MinArea,
	}
}

// Validate validates the configuration and returns any errors. Blur strength
// is deliberately not checked here; out-of-range values are clamped when the
// redactor is built.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Detector.Variant != "" && c.Detector.Variant != detect.VariantHeuristic {
		return fmt.Errorf("invalid detector variant: %s", c.Detector.Variant)
	}
	if err := validateFraction(c.Detector.MinContrast, "detector.min_contrast"); err != nil {
		return err
	}
	if err := validateFraction(c.Detector.MaxWidthFrac, "detector.max_width_frac"); err != nil {
		return err
	}
	if err := validateFraction(c.Detector.MaxHeightFrac, "detector.max_height_frac"); err != nil {
		return err
	}

	if c.Redact.JPEGQuality < 0 || c.Redact.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality: %d (must be between 0 and 100)", c.Redact.JPEGQuality)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// ToBuilder converts the configuration into a redactor builder.
func (c *Config) ToBuilder() *redact.Builder {
	return redact.NewBuilder().
		WithStrength(blur.Strength(c.Redact.Strength)).
		WithAutoDetection(c.Redact.AutoDetect).
		WithAreas(c.Redact.Areas).
		WithLayoutPath(c.Redact.Layout).
		WithLayoutsDir(c.LayoutsDir).
		WithDetectorConfig(c.ToDetectorConfig()).
		WithJPEGQuality(c.Redact.JPEGQuality)
}

// ToDetectorConfig converts to detect.Config. Zero-valued tuning fields fall
// back to the detect package defaults when the detector is constructed.
func (c *Config) ToDetectorConfig() detect.Config {
	return detect.Config{
		Variant: c.Detector.Variant,
		Heuristic: detect.HeuristicConfig{
			MinContrast:       float32(c.Detector.MinContrast),
			CloseKernelWidth:  c.Detector.CloseKernelWidth,
			CloseKernelHeight: c.Detector.CloseKernelHeight,
			MinWidth:          c.Detector.MinWidth,
			MinHeight:         c.Detector.MinHeight,
			MaxWidthFrac:      c.Detector.MaxWidthFrac,
			MaxHeightFrac:     c.Detector.MaxHeightFrac,
			MinArea:           c.Detector.MinArea,
		},
	}
}

// validateFraction validates that a value is between 0.0 and 1.0.
func validateFraction(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
