package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// discoverImageFiles expands the given arguments into a list of image files.
// Directory arguments are scanned for supported image files; explicit file
// arguments are taken as given.
func discoverImageFiles(args []string, config *Config) ([]string, error) {
	var imageFiles []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, config)
			if err != nil {
				return nil, err
			}
			imageFiles = append(imageFiles, files...)
		} else if shouldIncludeFile(arg, config.IncludePatterns, config.ExcludePatterns) {
			imageFiles = append(imageFiles, arg)
		}
	}

	return imageFiles, nil
}

// discoverInDirectory discovers image files in a directory, optionally
// descending into subdirectories. Files carrying the output suffix are
// skipped so rescanning a directory does not redact earlier outputs again.
func discoverInDirectory(dir string, config *Config) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !config.Recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if !utils.IsSupportedImage(path) {
			return nil
		}
		if isRedactedOutput(path, config.Suffix) {
			return nil
		}
		if shouldIncludeFile(path, config.IncludePatterns, config.ExcludePatterns) {
			files = append(files, path)
		}

		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

// isRedactedOutput reports whether path looks like a previously written
// output file.
func isRedactedOutput(path, suffix string) bool {
	if suffix == "" {
		suffix = redact.DefaultOutputSuffix
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	return strings.HasSuffix(stem, suffix)
}

// shouldIncludeFile determines if a file should be included based on include/exclude patterns.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	// Check exclude patterns first
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}

	// If no include patterns, include all (that aren't excluded)
	if len(includePatterns) == 0 {
		return true
	}

	// Otherwise, must match at least one include pattern
	return matchesAnyPattern(path, includePatterns)
}

// matchesAnyPattern checks if a file path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
