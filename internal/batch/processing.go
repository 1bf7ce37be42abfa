package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// fileJob represents a single file redaction job.
type fileJob struct {
	index int
	path  string
}

// fileResult represents the result of redacting a single file.
type fileResult struct {
	index  int
	result *redact.Result
	err    error
}

// resolveWorkers normalizes the configured worker count.
func resolveWorkers(workers int) int {
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}

// processFiles redacts the given files and returns per-file results and
// errors in input order. With a single file or a single worker it runs
// sequentially, otherwise a worker pool is used.
func processFiles(
	ctx context.Context,
	redactor *redact.Redactor,
	files []string,
	workers int,
	config *Config,
	progress ProgressCallback,
) ([]*redact.Result, []error, error) {
	if len(files) == 0 {
		return nil, nil, errors.New("no files provided")
	}

	if progress != nil {
		progress.OnStart(len(files))
		defer progress.OnComplete()
	}

	if len(files) == 1 || workers == 1 {
		return processFilesSequential(ctx, redactor, files, config, progress)
	}
	return processFilesParallel(ctx, redactor, files, workers, config, progress)
}

// processFilesSequential redacts files one at a time. Without
// ContinueOnError the first failure aborts the run.
func processFilesSequential(
	ctx context.Context,
	redactor *redact.Redactor,
	files []string,
	config *Config,
	progress ProgressCallback,
) ([]*redact.Result, []error, error) {
	ordered := make([]*redact.Result, len(files))
	fileErrors := make([]error, len(files))
	var firstError error

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		result, err := processFile(ctx, redactor, path, config)
		if err != nil {
			fileErrors[i] = fmt.Errorf("%s: %w", path, err)
			if firstError == nil {
				firstError = fileErrors[i]
			}
			if progress != nil {
				progress.OnError(i, err)
			}
			if !config.ContinueOnError {
				return nil, nil, firstError
			}
		} else {
			ordered[i] = result
		}

		if progress != nil {
			progress.OnProgress(i+1, len(files))
		}
	}

	return ordered, fileErrors, nil
}

// processFilesParallel redacts files using a worker pool. All files are
// attempted; without ContinueOnError the first failure is returned after
// the pool drains.
func processFilesParallel(
	ctx context.Context,
	redactor *redact.Redactor,
	files []string,
	workers int,
	config *Config,
	progress ProgressCallback,
) ([]*redact.Result, []error, error) {
	jobs := make(chan fileJob, len(files))
	results := make(chan fileResult, len(files))

	// Start workers
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go worker(ctx, redactor, config, jobs, results, &wg)
	}

	// Send jobs
	go func() {
		defer close(jobs)
		for i, path := range files {
			select {
			case jobs <- fileJob{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close results once all workers are done
	go func() {
		wg.Wait()
		close(results)
	}()

	resultMap := make(map[int]*redact.Result)
	errorMap := make(map[int]error)
	processedCount := 0

	for result := range results {
		resultMap[result.index] = result.result
		errorMap[result.index] = result.err
		processedCount++

		if progress != nil {
			progress.OnProgress(processedCount, len(files))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Build ordered result slice
	ordered := make([]*redact.Result, len(files))
	fileErrors := make([]error, len(files))
	var firstError error

	for i := range files {
		if err := errorMap[i]; err != nil {
			fileErrors[i] = fmt.Errorf("%s: %w", files[i], err)
			if firstError == nil {
				firstError = fileErrors[i]
			}
			if progress != nil {
				progress.OnError(i, err)
			}
			continue
		}
		ordered[i] = resultMap[i]
	}

	if firstError != nil && !config.ContinueOnError {
		return nil, nil, firstError
	}
	return ordered, fileErrors, nil
}

// worker redacts files from the jobs channel until it is closed.
func worker(
	ctx context.Context,
	redactor *redact.Redactor,
	config *Config,
	jobs <-chan fileJob,
	results chan<- fileResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}

			result, err := processFile(ctx, redactor, job.path, config)

			select {
			case results <- fileResult{index: job.index, result: result, err: err}:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// processFile redacts one input file and optionally writes a region overlay
// beside the other overlays.
func processFile(ctx context.Context, redactor *redact.Redactor, path string, config *Config) (*redact.Result, error) {
	result, err := redactor.ProcessFileContext(ctx, path, outputPathFor(path, config))
	if err != nil {
		return nil, err
	}

	if config.OverlayDir != "" {
		if err := saveOverlay(path, result, config.OverlayDir); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// outputPathFor derives the output path for an input file. Without an
// output directory the result is written next to the input; an empty
// suffix falls back to the default so inputs are never overwritten.
func outputPathFor(inputPath string, config *Config) string {
	suffix := config.Suffix
	if suffix == "" && config.OutputDir == "" {
		suffix = redact.DefaultOutputSuffix
	}

	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	name := base + suffix + ext

	if config.OutputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), name)
	}
	return filepath.Join(config.OutputDir, name)
}

// saveOverlay renders the selected regions over the input image and writes
// the visualization as a PNG into overlayDir.
func saveOverlay(inputPath string, result *redact.Result, overlayDir string) error {
	img, _, err := utils.LoadImage(inputPath)
	if err != nil {
		return fmt.Errorf("load for overlay: %w", err)
	}

	overlay := redact.RenderOverlay(img, result.Regions, nil)

	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	outputPath := filepath.Join(overlayDir, base+"_overlay.png")

	if err := utils.SaveImage(overlay, outputPath, utils.SaveOptions{}); err != nil {
		return fmt.Errorf("save overlay: %w", err)
	}
	return nil
}

// Stats holds statistics about a batch run.
type Stats struct {
	TotalFiles       int           `json:"total_files"`
	ProcessedFiles   int           `json:"processed_files"`
	FailedFiles      int           `json:"failed_files"`
	RegionsBlurred   int           `json:"regions_blurred"`
	FallbackCount    int           `json:"fallback_count"`
	WorkerCount      int           `json:"worker_count"`
	TotalDuration    time.Duration `json:"total_duration_ns"`
	AveragePerFile   time.Duration `json:"average_per_file_ns"`
	ThroughputPerSec float64       `json:"throughput_per_sec"`
}

// Stats computes summary statistics for the run.
func (r *Result) Stats() Stats {
	stats := Stats{
		TotalFiles:    len(r.ImagePaths),
		WorkerCount:   r.WorkerCount,
		TotalDuration: r.Duration,
	}

	for _, result := range r.Results {
		if result == nil {
			stats.FailedFiles++
			continue
		}
		stats.ProcessedFiles++
		stats.RegionsBlurred += result.BlurredCount()
		if result.UsedFallback {
			stats.FallbackCount++
		}
	}

	if stats.ProcessedFiles > 0 && r.Duration > 0 {
		stats.AveragePerFile = r.Duration / time.Duration(stats.ProcessedFiles)
		stats.ThroughputPerSec = float64(stats.ProcessedFiles) / r.Duration.Seconds()
	}

	return stats
}
