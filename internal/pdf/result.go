package pdf

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/redact"
)

// ImageResult describes the redaction of one extracted page image.
// Error is set when the image could not be redacted or saved; the rest
// of the document still processes.
type ImageResult struct {
	ImageIndex int            `json:"image_index"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	OutputPath string         `json:"output_path,omitempty"`
	Redaction  *redact.Result `json:"redaction,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// PageResult groups the redacted images of a single page.
type PageResult struct {
	PageNumber int           `json:"page_number"`
	Images     []ImageResult `json:"images"`
}

// ProcessingInfo records where the time went for a document run.
type ProcessingInfo struct {
	ExtractionTimeMs int64 `json:"extraction_time_ms"`
	RedactionTimeMs  int64 `json:"redaction_time_ms"`
	TotalTimeMs      int64 `json:"total_time_ms"`
}

// DocumentResult is the outcome of redacting one PDF document. Pages are
// ordered by page number and cover only pages with extracted images.
type DocumentResult struct {
	Filename   string         `json:"filename"`
	OutputDir  string         `json:"output_dir"`
	TotalPages int            `json:"total_pages"`
	Pages      []PageResult   `json:"pages"`
	Processing ProcessingInfo `json:"processing"`
}

// ImageCount returns how many images were extracted across all pages.
func (r *DocumentResult) ImageCount() int {
	count := 0
	for _, page := range r.Pages {
		count += len(page.Images)
	}
	return count
}

// FailedCount returns how many extracted images could not be redacted.
func (r *DocumentResult) FailedCount() int {
	count := 0
	for _, page := range r.Pages {
		for _, img := range page.Images {
			if img.Error != "" {
				count++
			}
		}
	}
	return count
}

// ToJSON renders the document result as indented JSON.
func (r *DocumentResult) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal document result: %w", err)
	}
	return string(data), nil
}

// Summary renders a short human-readable account of the run.
func (r *DocumentResult) Summary() string {
	var b strings.Builder
	redacted := r.ImageCount() - r.FailedCount()
	b.WriteString(fmt.Sprintf("%s: %d page(s), %d image(s) redacted into %s\n",
		r.Filename, r.TotalPages, redacted, r.OutputDir))
	for _, page := range r.Pages {
		for _, img := range page.Images {
			if img.Error != "" {
				b.WriteString(fmt.Sprintf("  page %d image %d: error: %s\n",
					page.PageNumber, img.ImageIndex, img.Error))
				continue
			}
			b.WriteString(fmt.Sprintf("  page %d image %d (%dx%d) -> %s\n",
				page.PageNumber, img.ImageIndex, img.Width, img.Height, img.OutputPath))
		}
	}
	return b.String()
}
