package blur

// Package blur applies Gaussian blur to selected regions of an image while
// leaving the rest of the pixels untouched.
//
// The default build blurs with the disintegration/imaging convolution. An
// alternative backend using anthonynsimon/bild can be enabled with the build
// tag `blur_bild`; it trades slightly different edge handling for parallel
// convolution on large regions.
//
// Example:
//   go build -tags=blur_bild ./...
