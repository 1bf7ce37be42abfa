package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/poblur/internal/redact"
	"github.com/MeKo-Tech/poblur/internal/testutil"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

func TestRegionsCommand(t *testing.T) {
	assert.NotNil(t, regionsCmd)
	assert.True(t, strings.HasPrefix(regionsCmd.Use, "regions"))
	assert.NotEmpty(t, regionsCmd.Short)
	assert.NotEmpty(t, regionsCmd.Long)
}

func TestRegionsCommandFlags(t *testing.T) {
	flags := regionsCmd.Flags()

	expectedFlags := []string{"format", "output", "auto", "layout", "areas", "overlay-dir"}
	for _, flagName := range expectedFlags {
		assert.NotNil(t, flags.Lookup(flagName), "Expected flag '%s' not found", flagName)
	}
}

func TestRegionsCommandRequiresArgs(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, GetRootCommand(), []string{"regions"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestFormatSelectionText(t *testing.T) {
	sel := selectionReport{
		File:         "order.png",
		Width:        1000,
		Height:       1400,
		UsedFallback: true,
		Regions: []redact.RegionResult{
			{Region: utils.Region{X: 0, Y: 0, Width: 1000, Height: 210, Label: "header"}, Source: redact.SourceFallback},
			{Region: utils.Region{X: 700, Y: 1200, Width: 250, Height: 80, Label: "totals"}, Source: redact.SourceFallback, Clamped: true},
			{Region: utils.Region{X: 10, Y: 10}, Source: redact.SourceExplicit, Dropped: true},
		},
	}

	out := formatSelectionText(sel)
	assert.Contains(t, out, "order.png (1000x1400)")
	assert.Contains(t, out, "detection fell back to layout catalog")
	assert.Contains(t, out, "2 region(s) selected")
	assert.Contains(t, out, "header(0,0 1000x210) [fallback]")
	assert.Contains(t, out, "totals(700,1200 250x80) [fallback] clamped")
	assert.Contains(t, out, "(10,10 0x0) [explicit] dropped")
}

func TestFormatSelectionTextWithoutFile(t *testing.T) {
	sel := selectionReport{Width: 640, Height: 480}

	out := formatSelectionText(sel)
	assert.Contains(t, out, "image 640x480")
	assert.Contains(t, out, "0 region(s) selected")
	assert.NotContains(t, out, "fell back")
}

func TestFormatSelectionsJSON(t *testing.T) {
	single := []selectionReport{{File: "order.png", Width: 100, Height: 100}}
	out, err := formatSelections(single, outputFormatJSON)
	require.NoError(t, err)
	// A single report stays a JSON object, not a one-element array
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"file": "order.png"`)

	double := []selectionReport{
		{File: "a.png", Width: 100, Height: 100},
		{File: "b.png", Width: 200, Height: 200},
	}
	out, err = formatSelections(double, outputFormatJSON)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "["))
	assert.Contains(t, out, `"a.png"`)
	assert.Contains(t, out, `"b.png"`)
}

func TestFormatSelectionsCSV(t *testing.T) {
	sels := []selectionReport{
		{
			File:   "a.png",
			Width:  100,
			Height: 100,
			Regions: []redact.RegionResult{
				{Region: utils.Region{X: 0, Y: 0, Width: 100, Height: 50, Label: "header"}, Source: redact.SourceLayout},
			},
		},
		{
			File:   "b.png",
			Width:  200,
			Height: 200,
			Regions: []redact.RegionResult{
				{Region: utils.Region{X: 10, Y: 20, Width: 30, Height: 40}, Source: redact.SourceDetected, Dropped: true},
			},
		},
	}

	out, err := formatSelections(sels, outputFormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,region_index,label,source,x,y,width,height,dropped,clamped", lines[0])
	assert.Equal(t, "a.png,0,header,layout,0,0,100,50,false,false", lines[1])
	assert.Equal(t, "b.png,0,,detected,10,20,30,40,true,false", lines[2])
}

func TestRegionsCommandGeneratedImage(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "order.png")
	img := testutil.GeneratePurchaseOrder(testutil.DefaultPurchaseOrderConfig())
	testutil.SaveImage(t, img, input)

	buf := new(bytes.Buffer)
	regionsCmd.SetOut(buf)
	regionsCmd.SetErr(buf)

	err := regionsCmd.RunE(regionsCmd, []string{input})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "order.png")
	assert.Contains(t, output, "region(s) selected")
}

func TestRegionsCommandBlankPageFallsBack(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "blank.png")
	testutil.SaveImage(t, testutil.GenerateBlankPage(800, 1000), input)

	buf := new(bytes.Buffer)
	regionsCmd.SetOut(buf)
	regionsCmd.SetErr(buf)

	err := regionsCmd.RunE(regionsCmd, []string{input})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "detection fell back to layout catalog")
	assert.Contains(t, output, "header")
	assert.Contains(t, output, "totals")
}

func TestRegionsCommandJSONOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "order.png")
	img := testutil.GeneratePurchaseOrder(testutil.DefaultPurchaseOrderConfig())
	testutil.SaveImage(t, img, input)

	require.NoError(t, regionsCmd.Flags().Set("format", "json"))
	defer func() { _ = regionsCmd.Flags().Set("format", "text") }()

	buf := new(bytes.Buffer)
	regionsCmd.SetOut(buf)
	regionsCmd.SetErr(buf)

	err := regionsCmd.RunE(regionsCmd, []string{input})
	require.NoError(t, err)

	output := strings.TrimSpace(buf.String())
	assert.True(t, json.Valid([]byte(output)), "Expected valid JSON output, got: %s", output)
	assert.Contains(t, output, `"regions"`)
}

func TestRegionsCommandWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "order.png")
	resultFile := filepath.Join(dir, "regions.txt")
	img := testutil.GeneratePurchaseOrder(testutil.DefaultPurchaseOrderConfig())
	testutil.SaveImage(t, img, input)

	require.NoError(t, regionsCmd.Flags().Set("output", resultFile))
	defer func() { _ = regionsCmd.Flags().Set("output", "") }()

	buf := new(bytes.Buffer)
	regionsCmd.SetOut(buf)
	regionsCmd.SetErr(buf)

	err := regionsCmd.RunE(regionsCmd, []string{input})
	require.NoError(t, err)

	assert.FileExists(t, resultFile)
	assert.Contains(t, buf.String(), "Results written to")
}
