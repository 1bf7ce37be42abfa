package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/poblur/internal/redact"
)

func newTestRedactor(t *testing.T) *redact.Redactor {
	t.Helper()
	redactor, err := redact.NewBuilder().Build()
	require.NoError(t, err)
	return redactor
}

func TestNewProcessor_NilConfig(t *testing.T) {
	processor := NewProcessor(newTestRedactor(t), nil)
	require.NotNil(t, processor)
	assert.Equal(t, DefaultConfig(), processor.config)
}

func TestOutputDirFor(t *testing.T) {
	redactor := newTestRedactor(t)

	t.Run("explicit output dir wins", func(t *testing.T) {
		processor := NewProcessor(redactor, &Config{OutputDir: "/tmp/redacted"})
		assert.Equal(t, "/tmp/redacted", processor.OutputDirFor("/data/order.pdf"))
	})

	t.Run("derived from input path", func(t *testing.T) {
		processor := NewProcessor(redactor, nil)
		assert.Equal(t, filepath.Join("/data", "order_blurred"),
			processor.OutputDirFor(filepath.Join("/data", "order.pdf")))
	})
}

func TestProcessFile_NotInitialized(t *testing.T) {
	processor := NewProcessor(nil, nil)
	_, err := processor.ProcessFile(context.Background(), "order.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf processor not initialized")
}

func TestProcessFile_Canceled(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "order.pdf")
	createTestPDF(t, pdfPath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewProcessor(newTestRedactor(t), nil)
	_, err := processor.ProcessFile(ctx, pdfPath)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessFile_MissingFile(t *testing.T) {
	processor := NewProcessor(newTestRedactor(t), nil)
	_, err := processor.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PDF file not found")
}

func TestProcessFile_NotAPDF(t *testing.T) {
	junkPath := filepath.Join(t.TempDir(), "junk.pdf")
	require.NoError(t, os.WriteFile(junkPath, []byte("not a pdf"), 0o600))

	processor := NewProcessor(newTestRedactor(t), nil)
	_, err := processor.ProcessFile(context.Background(), junkPath)
	require.Error(t, err)
}

func TestProcessFile_MinimalPDF(t *testing.T) {
	tempDir := t.TempDir()
	pdfPath := filepath.Join(tempDir, "order.pdf")
	createTestPDF(t, pdfPath)

	outputDir := filepath.Join(tempDir, "out")
	processor := NewProcessor(newTestRedactor(t), &Config{OutputDir: outputDir})

	result, err := processor.ProcessFile(context.Background(), pdfPath)
	if err != nil {
		// pdfcpu may reject the hand-written structure.
		t.Logf("processing failed on minimal PDF: %v", err)
		return
	}

	assert.Equal(t, pdfPath, result.Filename)
	assert.Equal(t, outputDir, result.OutputDir)
	assert.Equal(t, 1, result.TotalPages)
	assert.Zero(t, result.ImageCount())

	info, err := os.Stat(outputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
