package utils

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates a file extension or encoding outside the
// supported image formats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageProcessingError provides context about failures during image operations.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Err
}
