package redact

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/detect"
	"github.com/MeKo-Tech/poblur/internal/layout"
)

// Builder constructs a Redactor with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new redactor builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithStrength sets the blur strength. Out-of-range values are clamped at
// build time.
func (b *Builder) WithStrength(s blur.Strength) *Builder {
	b.cfg.Strength = s
	return b
}

// WithAutoDetection toggles automatic region detection.
func (b *Builder) WithAutoDetection(enabled bool) *Builder {
	b.cfg.AutoDetect = enabled
	return b
}

// WithAreas restricts catalog redaction to the named areas.
func (b *Builder) WithAreas(labels []string) *Builder {
	cleaned := make([]string, 0, len(labels))
	for _, l := range labels {
		if strings.TrimSpace(l) != "" {
			cleaned = append(cleaned, l)
		}
	}
	b.cfg.Areas = cleaned
	return b
}

// WithLayoutPath selects the layout catalog by name or file path.
func (b *Builder) WithLayoutPath(ref string) *Builder {
	if ref != "" {
		b.cfg.Layout = ref
	}
	return b
}

// WithLayoutsDir overrides the directory for named layout references.
func (b *Builder) WithLayoutsDir(dir string) *Builder {
	if dir != "" {
		b.cfg.LayoutsDir = dir
	}
	return b
}

// WithDetectorVariant selects the detector implementation.
func (b *Builder) WithDetectorVariant(variant string) *Builder {
	if variant != "" {
		b.cfg.Detector.Variant = variant
	}
	return b
}

// WithDetectorConfig replaces the whole detector configuration.
func (b *Builder) WithDetectorConfig(cfg detect.Config) *Builder {
	b.cfg.Detector = cfg
	return b
}

// WithJPEGQuality sets the JPEG encoding quality (if >0).
func (b *Builder) WithJPEGQuality(q int) *Builder {
	if q > 0 {
		b.cfg.JPEGQuality = q
	}
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that the configuration looks sane and that a referenced
// layout file exists.
func (b *Builder) Validate() error {
	if b.cfg.JPEGQuality < 0 || b.cfg.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality %d outside [0, 100]", b.cfg.JPEGQuality)
	}
	if b.cfg.Layout != "" {
		path := layout.ResolvePath(layout.GetLayoutsDir(b.cfg.LayoutsDir), b.cfg.Layout)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("layout not found: %s", path)
		}
	}
	return nil
}

// Build resolves the layout catalog, constructs the detector and returns a
// ready Redactor.
func (b *Builder) Build() (*Redactor, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	catalog := layout.Default()
	if b.cfg.Layout != "" {
		path := layout.ResolvePath(layout.GetLayoutsDir(b.cfg.LayoutsDir), b.cfg.Layout)
		loaded, err := layout.Load(path)
		if err != nil {
			return nil, fmt.Errorf("init layout: %w", err)
		}
		catalog = loaded
	}
	if len(b.cfg.Areas) > 0 {
		filtered, err := catalog.Filter(b.cfg.Areas)
		if err != nil {
			return nil, fmt.Errorf("init layout: %w", err)
		}
		catalog = filtered
	}

	det, err := detect.NewDetector(b.cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("init detector: %w", err)
	}

	strength, clamped := blur.ClampStrength(b.cfg.Strength)
	if clamped {
		slog.Warn("blur strength outside supported range, clamped",
			"requested", int(b.cfg.Strength), "using", int(strength))
	}

	return &Redactor{
		cfg:             b.cfg,
		catalog:         catalog,
		detector:        det,
		strength:        strength,
		strengthClamped: clamped,
	}, nil
}
