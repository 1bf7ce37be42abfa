// Package support provides the shared test context and step definitions for
// the CLI integration suite.
package support

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/poblur/internal/testutil"
)

// TestContext holds state shared between godog steps within a scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastError    error
	LastExitCode int
	LastDuration time.Duration

	// File system state
	WorkingDir   string
	TempDir      string
	CreatedFiles []string
	CreatedDirs  []string

	// Server state
	ServerProcess  *exec.Cmd
	ServerPort     int
	ServerHost     string
	HTTPTestServer *httptest.Server

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   []byte
	LastHTTPHeaders    map[string]string

	// Environment
	EnvVars     []string
	ProjectRoot string
}

// NewTestContext creates a new test context with a temporary working directory.
func NewTestContext() (*TestContext, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	projectRoot := wd
	for {
		if _, statErr := os.Stat(filepath.Join(projectRoot, "go.mod")); statErr == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			return nil, fmt.Errorf("could not find project root (no go.mod found)")
		}
		projectRoot = parent
	}

	tempDir, err := os.MkdirTemp("", "poblur-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir:  tempDir,
		TempDir:     tempDir,
		ProjectRoot: projectRoot,
		EnvVars:     []string{},
	}, nil
}

// Reset gives the context a pristine working directory and clears all
// recorded state. Every scenario starts from a Reset context.
func (tc *TestContext) Reset() error {
	if err := tc.Cleanup(); err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "poblur-test-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	tc.TempDir = tempDir
	tc.WorkingDir = tempDir
	tc.CreatedFiles = nil
	tc.CreatedDirs = nil
	tc.EnvVars = nil
	tc.LastCommand = ""
	tc.LastOutput = ""
	tc.LastError = nil
	tc.LastExitCode = 0
	tc.LastDuration = 0
	tc.LastHTTPStatusCode = 0
	tc.LastHTTPResponse = nil
	tc.LastHTTPHeaders = nil
	tc.ServerPort = 0
	tc.ServerHost = ""
	return nil
}

// Cleanup releases every resource tracked by the context.
func (tc *TestContext) Cleanup() error {
	var errs []string

	if tc.ServerProcess != nil {
		if err := tc.StopServerProcess(); err != nil {
			errs = append(errs, fmt.Sprintf("failed to stop server process: %v", err))
		}
	}

	tc.stopTestHTTPServer()

	for _, file := range tc.CreatedFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("failed to remove file %s: %v", file, err))
		}
	}

	for _, dir := range tc.CreatedDirs {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Sprintf("failed to remove directory %s: %v", dir, err))
		}
	}

	if tc.TempDir != "" {
		if err := os.RemoveAll(tc.TempDir); err != nil {
			errs = append(errs, fmt.Sprintf("failed to remove temp directory: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TrackFile registers a file for removal during cleanup.
func (tc *TestContext) TrackFile(path string) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(tc.WorkingDir, path)
	}
	tc.CreatedFiles = append(tc.CreatedFiles, path)
}

// TrackDirectory registers a directory for removal during cleanup.
func (tc *TestContext) TrackDirectory(path string) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(tc.WorkingDir, path)
	}
	tc.CreatedDirs = append(tc.CreatedDirs, path)
}

// ResolvePath expands placeholders and anchors relative paths in the scenario
// working directory.
func (tc *TestContext) ResolvePath(path string) string {
	path = strings.ReplaceAll(path, "{temp_dir}", tc.TempDir)
	path = strings.ReplaceAll(path, "{project_root}", tc.ProjectRoot)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(tc.WorkingDir, path)
}

// GetTempFile returns a unique tracked file path in the temp directory.
func (tc *TestContext) GetTempFile(extension string) string {
	filename := fmt.Sprintf("test-%d%s", len(tc.CreatedFiles), extension)
	path := filepath.Join(tc.TempDir, filename)
	tc.CreatedFiles = append(tc.CreatedFiles, path)
	return path
}

// WritePurchaseOrder renders the synthetic purchase-order fixture to path.
func (tc *TestContext) WritePurchaseOrder(path string) error {
	img := testutil.GeneratePurchaseOrder(testutil.DefaultPurchaseOrderConfig())
	return tc.WriteImage(path, img)
}

// WriteBlankPage writes an all-white image of the given size to path.
func (tc *TestContext) WriteBlankPage(path string, width, height int) error {
	return tc.WriteImage(path, testutil.GenerateBlankPage(width, height))
}

// WriteImage encodes img to path, choosing PNG or JPEG by extension.
func (tc *TestContext) WriteImage(path string, img image.Image) error {
	full := tc.ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	f, err := os.Create(full) //nolint:gosec // G304: test fixture path
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(full)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	tc.CreatedFiles = append(tc.CreatedFiles, full)
	return nil
}

// WriteTextFile writes content to path inside the working directory.
func (tc *TestContext) WriteTextFile(path, content string) error {
	full := tc.ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	tc.CreatedFiles = append(tc.CreatedFiles, full)
	return nil
}

// LoadImageFile decodes the image stored at path.
func (tc *TestContext) LoadImageFile(path string) (image.Image, error) {
	f, err := os.Open(tc.ResolvePath(path)) //nolint:gosec // G304: test fixture path
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}
