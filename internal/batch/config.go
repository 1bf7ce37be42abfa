package batch

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/detect"
	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// Config holds all configuration for batch redaction.
type Config struct {
	// Redaction settings
	Strength    int
	AutoDetect  bool
	Layout      string
	LayoutsDir  string
	Areas       []string
	Detector    detect.Config
	JPEGQuality int

	// Output settings
	OutputDir  string
	Suffix     string
	OverlayDir string
	Format     string
	OutputFile string

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Failure handling
	ContinueOnError bool

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ShowStats        bool
	ProgressInterval time.Duration
}

// DefaultConfig returns batch settings matching the single-file defaults.
func DefaultConfig() *Config {
	return &Config{
		Strength:         int(blur.DefaultStrength),
		AutoDetect:       true,
		Detector:         detect.DefaultConfig(),
		JPEGQuality:      utils.DefaultJPEGQuality,
		Suffix:           redact.DefaultOutputSuffix,
		Format:           "text",
		Workers:          runtime.NumCPU(),
		ShowProgress:     true,
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Result holds the result of batch processing. Results and Errors are
// aligned with ImagePaths; a failed file has a nil result and a non-nil
// error.
type Result struct {
	Results     []*redact.Result
	Errors      []error
	ImagePaths  []string
	Duration    time.Duration
	WorkerCount int
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Results, r.Errors, r.ImagePaths, format)
}

// SaveResults saves the formatted results to a file or stdout.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(os.Stdout, output)
	}

	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(quiet bool) {
	if quiet {
		return
	}
	stats := r.Stats()
	_, _ = fmt.Fprintf(os.Stdout, "\nBatch statistics:\n")
	_, _ = fmt.Fprintf(os.Stdout, "  Total files: %d\n", stats.TotalFiles)
	_, _ = fmt.Fprintf(os.Stdout, "  Processed: %d\n", stats.ProcessedFiles)
	_, _ = fmt.Fprintf(os.Stdout, "  Failed: %d\n", stats.FailedFiles)
	_, _ = fmt.Fprintf(os.Stdout, "  Regions blurred: %d\n", stats.RegionsBlurred)
	_, _ = fmt.Fprintf(os.Stdout, "  Catalog fallbacks: %d\n", stats.FallbackCount)
	_, _ = fmt.Fprintf(os.Stdout, "  Workers: %d\n", stats.WorkerCount)
	_, _ = fmt.Fprintf(os.Stdout, "  Duration: %v\n", stats.TotalDuration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(os.Stdout, "  Avg per file: %v\n", stats.AveragePerFile.Round(time.Millisecond))
	_, _ = fmt.Fprintf(os.Stdout, "  Throughput: %.1f files/sec\n", stats.ThroughputPerSec)
}
