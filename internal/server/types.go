// Package server exposes the redaction pipeline over HTTP: image and PDF
// uploads, JSON batch requests, a WebSocket stream with progress updates,
// and Prometheus metrics.
package server

import (
	"context"
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/MeKo-Tech/poblur/internal/pdf"
	"github.com/MeKo-Tech/poblur/internal/redact"
)

// redactorInterface defines the methods the handlers need from a redactor.
type redactorInterface interface {
	ProcessImageContext(ctx context.Context, img image.Image) (*image.NRGBA, *redact.Result, error)
	Catalog() layout.Catalog
}

// documentProcessor redacts PDF documents on behalf of the handlers.
type documentProcessor interface {
	ProcessPDF(ctx context.Context, filename, pageRange string, creds *pdf.Credentials) (*pdf.DocumentResult, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	redactor       redactorInterface
	documents      documentProcessor
	baseConfig     redact.Config
	rateLimiter    *RateLimiter
	corsOrigin     string
	maxUploadMB    int64
	timeoutSec     int
	overlayEnabled bool
	version        string
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	Redact         redact.Config
	OverlayEnabled bool
	RateLimit      RateLimitConfig
	Version        string
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// AreaInfo describes one catalog area with page-relative geometry.
type AreaInfo struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type LayoutsResponse struct {
	Name  string     `json:"name"`
	Areas []AreaInfo `json:"areas"`
	Count int        `json:"count"`
}

type RedactResponse struct {
	Success bool           `json:"success"`
	Result  *redact.Result `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// RequestOptions carries per-request redaction overrides.
type RequestOptions struct {
	Strength   int
	Areas      []string
	AutoDetect *bool
}

func (o *RequestOptions) isZero() bool {
	return o == nil || (o.Strength == 0 && len(o.Areas) == 0 && o.AutoDetect == nil)
}

// NewServer creates a redaction server from the given configuration.
func NewServer(config Config) (*Server, error) {
	redactor, err := buildRedactor(config.Redact)
	if err != nil {
		return nil, err
	}

	s := &Server{
		redactor:       redactor,
		documents:      &pdfRedactor{redactor: redactor},
		baseConfig:     config.Redact,
		corsOrigin:     config.CORSOrigin,
		maxUploadMB:    config.MaxUploadMB,
		timeoutSec:     config.TimeoutSec,
		overlayEnabled: config.OverlayEnabled,
		version:        config.Version,
	}

	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(
			config.RateLimit.RequestsPerMinute,
			config.RateLimit.RequestsPerHour,
			config.RateLimit.MaxRequestsPerDay,
			config.RateLimit.MaxDataPerDay,
		)
	}

	return s, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/layouts", s.corsMiddleware(s.layoutsHandler))
	mux.HandleFunc("/redact/image", s.corsMiddleware(s.rateLimitMiddleware(s.redactImageHandler)))
	mux.HandleFunc("/redact/pdf", s.corsMiddleware(s.rateLimitMiddleware(s.redactPdfHandler)))
	mux.HandleFunc("/redact/batch", s.corsMiddleware(s.rateLimitMiddleware(s.redactBatchHandler)))
	mux.HandleFunc("/ws/redact", s.redactStreamHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// buildRedactor assembles a redactor from a full configuration. A zero
// strength means unset and keeps the builder default.
func buildRedactor(cfg redact.Config) (*redact.Redactor, error) {
	b := redact.NewBuilder().
		WithAutoDetection(cfg.AutoDetect).
		WithDetectorConfig(cfg.Detector)
	if cfg.Strength != 0 {
		b = b.WithStrength(cfg.Strength)
	}
	if len(cfg.Areas) > 0 {
		b = b.WithAreas(cfg.Areas)
	}
	if cfg.Layout != "" {
		b = b.WithLayoutPath(cfg.Layout)
	}
	if cfg.LayoutsDir != "" {
		b = b.WithLayoutsDir(cfg.LayoutsDir)
	}
	if cfg.JPEGQuality > 0 {
		b = b.WithJPEGQuality(cfg.JPEGQuality)
	}
	return b.Build()
}

// redactorForRequest returns the shared redactor, or builds a one-off
// redactor when the request carries overrides.
func (s *Server) redactorForRequest(opts *RequestOptions) (redactorInterface, error) {
	if opts.isZero() {
		return s.redactor, nil
	}

	cfg := s.baseConfig
	if opts.Strength > 0 {
		cfg.Strength = blur.Strength(opts.Strength)
	}
	if len(opts.Areas) > 0 {
		cfg.Areas = opts.Areas
	}
	if opts.AutoDetect != nil {
		cfg.AutoDetect = *opts.AutoDetect
	}
	return buildRedactor(cfg)
}

// pdfRedactor adapts the shared redactor to per-request PDF processing.
type pdfRedactor struct {
	redactor *redact.Redactor
}

func (p *pdfRedactor) ProcessPDF(ctx context.Context, filename, pageRange string,
	creds *pdf.Credentials,
) (*pdf.DocumentResult, error) {
	processor := pdf.NewProcessor(p.redactor, &pdf.Config{
		PageRange:   pageRange,
		Credentials: creds,
	})
	return processor.ProcessFile(ctx, filename)
}
