package redact

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/poblur/internal/utils"
)

func sampleResult() *Result {
	res := &Result{
		InputPath:       "in.png",
		OutputPath:      "out.png",
		Width:           100,
		Height:          80,
		Strength:        30,
		StrengthClamped: true,
		UsedFallback:    true,
		Regions: []RegionResult{
			{Region: utils.Region{X: 10, Y: 10, Width: 30, Height: 20, Label: "totals"}, Source: SourceFallback},
			{Region: utils.Region{X: 0, Y: 0, Width: 0, Height: 5}, Source: SourceFallback, Dropped: true},
			{Region: utils.Region{X: 90, Y: 70, Width: 10, Height: 10}, Source: SourceFallback, Clamped: true},
		},
	}
	res.Processing.TotalNs = 1500000
	return res
}

func TestBlurredCount(t *testing.T) {
	res := sampleResult()
	assert.Equal(t, 2, res.BlurredCount())

	assert.Zero(t, (&Result{}).BlurredCount())
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(sampleResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "in.png", decoded["input_path"])
	assert.Equal(t, float64(30), decoded["strength"])
	assert.Equal(t, true, decoded["strength_clamped"])
	assert.Equal(t, true, decoded["used_fallback"])

	regions, ok := decoded["regions"].([]any)
	require.True(t, ok)
	assert.Len(t, regions, 3)
}

func TestToJSON_NilResult(t *testing.T) {
	_, err := ToJSON(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil result")
}

func TestToText(t *testing.T) {
	out, err := ToText(sampleResult())
	require.NoError(t, err)

	assert.Contains(t, out, "in.png -> out.png (100x80)")
	assert.Contains(t, out, "strength 30 (clamped)")
	assert.Contains(t, out, "detection fell back to layout catalog")
	assert.Contains(t, out, "2 region(s) blurred")
	assert.Contains(t, out, "totals(10,10 30x20) [fallback]")
	assert.Contains(t, out, "dropped")
	assert.Contains(t, out, "clamped")
}

func TestToText_WithoutPaths(t *testing.T) {
	res := &Result{Width: 640, Height: 480, Strength: 15}
	out, err := ToText(res)
	require.NoError(t, err)

	assert.Contains(t, out, "image 640x480")
	assert.Contains(t, out, "strength 15")
	assert.Contains(t, out, "0 region(s) blurred")
	assert.NotContains(t, out, "clamped")
	assert.NotContains(t, out, "fell back")
}

func TestToText_NilResult(t *testing.T) {
	_, err := ToText(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil result")
}
