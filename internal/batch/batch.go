// Package batch redacts many image files in one run. Directory arguments
// are expanded into their image files, work is spread across a worker pool
// and the per-file results are collected in input order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// ProcessBatch redacts a batch of files and directories with the given
// configuration.
func ProcessBatch(paths []string, config *Config) (*Result, error) {
	return ProcessBatchContext(context.Background(), paths, config)
}

// ProcessBatchContext redacts a batch of files with context cancellation
// support.
func ProcessBatchContext(ctx context.Context, paths []string, config *Config) (*Result, error) {
	files, err := discoverImageFiles(paths, config)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	if err := ensureOutputDirs(config); err != nil {
		return nil, err
	}

	var progress ProgressCallback
	if config.ShowProgress && !config.Quiet {
		progress = NewConsoleProgressCallback(
			os.Stdout,
			"Redacting: ",
		).WithUpdateInterval(config.ProgressInterval)
	}

	redactor, err := buildRedactor(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build redactor: %w", err)
	}

	workers := resolveWorkers(config.Workers)

	startTime := time.Now()
	results, fileErrors, err := processFiles(ctx, redactor, files, workers, config, progress)
	duration := time.Since(startTime)

	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	return &Result{
		Results:     results,
		Errors:      fileErrors,
		ImagePaths:  files,
		Duration:    duration,
		WorkerCount: workers,
	}, nil
}

// ensureOutputDirs creates the configured output and overlay directories.
func ensureOutputDirs(config *Config) error {
	for _, dir := range []string{config.OutputDir, config.OverlayDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}
