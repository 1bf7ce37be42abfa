package pdf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocumentResult() *DocumentResult {
	return &DocumentResult{
		Filename:   "order.pdf",
		OutputDir:  "order_blurred",
		TotalPages: 3,
		Pages: []PageResult{
			{
				PageNumber: 1,
				Images: []ImageResult{
					{ImageIndex: 1, Width: 800, Height: 600, OutputPath: "order_blurred/page_1_image_1.png"},
					{ImageIndex: 2, Width: 400, Height: 300, Error: "image too small for detection"},
				},
			},
			{
				PageNumber: 3,
				Images: []ImageResult{
					{ImageIndex: 1, Width: 800, Height: 600, OutputPath: "order_blurred/page_3_image_1.png"},
				},
			},
		},
		Processing: ProcessingInfo{ExtractionTimeMs: 12, RedactionTimeMs: 40, TotalTimeMs: 55},
	}
}

func TestDocumentResult_Counts(t *testing.T) {
	result := sampleDocumentResult()
	assert.Equal(t, 3, result.ImageCount())
	assert.Equal(t, 1, result.FailedCount())
}

func TestDocumentResult_Counts_Empty(t *testing.T) {
	result := &DocumentResult{Filename: "empty.pdf"}
	assert.Zero(t, result.ImageCount())
	assert.Zero(t, result.FailedCount())
}

func TestDocumentResult_Summary(t *testing.T) {
	summary := sampleDocumentResult().Summary()

	assert.Contains(t, summary, "order.pdf: 3 page(s), 2 image(s) redacted into order_blurred")
	assert.Contains(t, summary, "page 1 image 1 (800x600) -> order_blurred/page_1_image_1.png")
	assert.Contains(t, summary, "page 1 image 2: error: image too small for detection")
	assert.Contains(t, summary, "page 3 image 1")
}

func TestDocumentResult_ToJSON(t *testing.T) {
	output, err := sampleDocumentResult().ToJSON()
	require.NoError(t, err)

	var decoded DocumentResult
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))

	assert.Equal(t, "order.pdf", decoded.Filename)
	assert.Equal(t, 3, decoded.TotalPages)
	require.Len(t, decoded.Pages, 2)
	assert.Equal(t, 1, decoded.Pages[0].PageNumber)
	assert.Equal(t, "image too small for detection", decoded.Pages[0].Images[1].Error)
	assert.Equal(t, int64(55), decoded.Processing.TotalTimeMs)

	assert.Contains(t, output, `"page_number"`)
	assert.Contains(t, output, `"extraction_time_ms"`)
}
