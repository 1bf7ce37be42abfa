package pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// Config controls how a PDF document is redacted.
type Config struct {
	// PageRange selects pages, e.g. "1-5" or "2,4". Empty means all pages.
	PageRange string
	// OutputDir receives the redacted page images. Empty derives
	// "<stem>_blurred" next to the input file.
	OutputDir string
	// Credentials unlock encrypted documents.
	Credentials *Credentials
}

// DefaultConfig returns the default PDF processing configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// Processor redacts the embedded images of PDF documents with a shared
// redactor.
type Processor struct {
	redactor *redact.Redactor
	config   *Config
}

// NewProcessor creates a processor around an existing redactor. A nil
// config selects the defaults.
func NewProcessor(redactor *redact.Redactor, config *Config) *Processor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Processor{redactor: redactor, config: config}
}

// OutputDirFor returns the directory redacted page images of filename are
// written to.
func (p *Processor) OutputDirFor(filename string) string {
	if p.config.OutputDir != "" {
		return p.config.OutputDir
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + redact.DefaultOutputSuffix
}

// ProcessFile extracts the embedded images of a PDF document, redacts
// each one, and writes the blurred pages as PNG files. Failures on
// individual images are recorded in the result instead of aborting the
// document.
func (p *Processor) ProcessFile(ctx context.Context, filename string) (*DocumentResult, error) {
	totalStart := time.Now()

	if p == nil || p.redactor == nil {
		return nil, errors.New("pdf processor not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("PDF file not found: %s", filename)
	}

	readable, cleanup, err := EnsureDecrypted(filename, p.config.Credentials)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	totalPages, err := api.PageCountFile(readable)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	extractStart := time.Now()
	pages, err := ExtractImages(readable, p.config.PageRange)
	if err != nil {
		return nil, err
	}
	extractionMs := time.Since(extractStart).Milliseconds()

	outputDir := p.OutputDirFor(filename)
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	redactStart := time.Now()
	result := &DocumentResult{
		Filename:   filename,
		OutputDir:  outputDir,
		TotalPages: totalPages,
	}
	for _, pageNum := range sortedPageNumbers(pages) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageResult := PageResult{PageNumber: pageNum}
		for i, img := range pages[pageNum] {
			pageResult.Images = append(pageResult.Images,
				p.redactPageImage(ctx, img, pageNum, i+1, outputDir))
		}
		result.Pages = append(result.Pages, pageResult)
	}

	result.Processing.ExtractionTimeMs = extractionMs
	result.Processing.RedactionTimeMs = time.Since(redactStart).Milliseconds()
	result.Processing.TotalTimeMs = time.Since(totalStart).Milliseconds()
	return result, nil
}

// redactPageImage blurs one extracted image and writes it into outputDir.
func (p *Processor) redactPageImage(ctx context.Context, img image.Image,
	pageNum, imageIndex int, outputDir string,
) ImageResult {
	bounds := img.Bounds()
	imageResult := ImageResult{
		ImageIndex: imageIndex,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}

	blurred, res, err := p.redactor.ProcessImageContext(ctx, img)
	if err != nil {
		imageResult.Error = err.Error()
		return imageResult
	}

	outputPath := filepath.Join(outputDir, fmt.Sprintf("page_%d_image_%d.png", pageNum, imageIndex))
	if err := utils.SaveImage(blurred, outputPath, utils.SaveOptions{}); err != nil {
		imageResult.Error = err.Error()
		return imageResult
	}

	imageResult.OutputPath = outputPath
	imageResult.Redaction = res
	return imageResult
}

// sortedPageNumbers orders the extraction map keys so page results come
// out in document order.
func sortedPageNumbers(pages map[int][]image.Image) []int {
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
