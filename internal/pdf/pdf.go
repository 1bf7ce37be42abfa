// Package pdf extracts embedded page images from PDF documents so the
// redaction pipeline can blur them like any other input. Extraction is
// delegated to pdfcpu; the extracted images are decoded and grouped by
// page number.
package pdf

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder for extracted images
	_ "image/png"  // register PNG decoder for extracted images
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractImages pulls the embedded images out of a PDF file, grouped by
// page number. pageRange follows the usual syntax ("1-3", "2,5", empty
// for all pages).
func ExtractImages(filename, pageRange string) (map[int][]image.Image, error) {
	pages, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "poblur-pdf-extract-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var selectedPages []string
	for _, p := range pages {
		selectedPages = append(selectedPages, strconv.Itoa(p))
	}

	if err := api.ExtractImagesFile(filename, tempDir, selectedPages, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	images, err := collectExtractedImages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to process extracted images: %w", err)
	}
	return images, nil
}

// collectExtractedImages walks the extraction directory and decodes every
// image pdfcpu wrote there. Files it cannot attribute to a page or decode
// are skipped.
func collectExtractedImages(dir string) (map[int][]image.Image, error) {
	images := make(map[int][]image.Image)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isImageFile(path) {
			return nil
		}

		pageNum, perr := parsePageFromFilename(filepath.Base(path))
		if perr != nil {
			return nil
		}
		img, lerr := loadImageFile(path)
		if lerr != nil {
			return nil
		}
		images[pageNum] = append(images[pageNum], img)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk extraction directory: %w", err)
	}
	return images, nil
}

// isImageFile reports whether the path carries an extension pdfcpu uses
// for extracted images.
func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// parsePageFromFilename recovers the page number from pdfcpu's extraction
// naming scheme "page_<num>_image_<idx>.<ext>".
func parsePageFromFilename(filename string) (int, error) {
	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return 0, fmt.Errorf("unexpected extracted image name: %s", filename)
	}
	pageNum, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("unexpected page number in %s: %w", filename, err)
	}
	return pageNum, nil
}

// loadImageFile decodes a single extracted image from disk.
func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// parsePageRange expands a page range expression into individual page
// numbers. An empty expression selects all pages (nil slice).
func parsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}

	var pages []int
	for _, token := range strings.Split(pageRange, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		expanded, err := parseRangeToken(token)
		if err != nil {
			return nil, err
		}
		pages = append(pages, expanded...)
	}
	return pages, nil
}

// parseRangeToken expands one comma-separated token, either a single page
// ("3") or a span ("2-5").
func parseRangeToken(token string) ([]int, error) {
	if !strings.Contains(token, "-") {
		page, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q: %w", token, err)
		}
		if page < 1 {
			return nil, fmt.Errorf("page number must be positive: %d", page)
		}
		return []int{page}, nil
	}

	bounds := strings.SplitN(token, "-", 2)
	start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid range start %q: %w", bounds[0], err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid range end %q: %w", bounds[1], err)
	}
	if start < 1 {
		return nil, fmt.Errorf("page number must be positive: %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("invalid page range %d-%d", start, end)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages, nil
}
