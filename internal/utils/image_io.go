package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists supported file extensions for loading and saving.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path        string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	AspectRatio float64
}

// LoadImage opens and decodes an image file, returning the image and metadata.
// A missing file surfaces fs.ErrNotExist through the error chain; an unknown
// extension or undecodable payload surfaces ErrUnsupportedFormat.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		err := &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
		return nil, ImageMetadata{}, err
	}
	if !IsSupportedImage(path) {
		err := &ImageProcessingError{
			Operation: "load",
			Err:       fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path)),
		}
		return nil, ImageMetadata{}, err
	}

	f, err := os.Open(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		err = &ImageProcessingError{Operation: "load", Err: err}
		return nil, ImageMetadata{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing image file: %v\n", err)
		}
	}()

	fi, statErr := f.Stat()
	if statErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: statErr}
	}

	img, format, decErr := image.Decode(f)
	if decErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{
			Operation: "decode",
			Err:       fmt.Errorf("%w: %v", ErrUnsupportedFormat, decErr),
		}
	}

	b := img.Bounds()
	meta := ImageMetadata{
		Path:        path,
		Format:      format,
		SizeBytes:   fi.Size(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		AspectRatio: float64(b.Dx()) / float64(b.Dy()),
	}

	return img, meta, nil
}

// SaveOptions control encoding of saved images.
type SaveOptions struct {
	// JPEGQuality in [1, 100]; zero means the default.
	JPEGQuality int
}

// DefaultJPEGQuality is used when SaveOptions does not specify one.
const DefaultJPEGQuality = 95

// SaveImage encodes img to path, choosing the format by extension. Unknown
// extensions fail with ErrUnsupportedFormat before anything is written.
func SaveImage(img image.Image, path string, opts SaveOptions) error {
	if img == nil {
		return &ImageProcessingError{Operation: "save", Err: errors.New("input image is nil")}
	}
	if !IsSupportedImage(path) {
		return &ImageProcessingError{
			Operation: "save",
			Err:       fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path)),
		}
	}

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	return nil
}
